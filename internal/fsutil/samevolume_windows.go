//go:build windows

package fsutil

// SameVolume always reports false on Windows: without a volume serial
// lookup the safe assumption is a cross-volume move, which takes the
// copy path instead of rename.
func SameVolume(a, b string) (bool, error) {
	return false, nil
}
