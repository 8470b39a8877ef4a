//go:build unix

package fsutil

import (
	"os"
	"syscall"
)

// SameVolume reports whether both paths live on the same storage device,
// in which case a rename is atomic and instant.
func SameVolume(a, b string) (bool, error) {
	infoA, err := os.Stat(a)
	if err != nil {
		return false, err
	}
	infoB, err := os.Stat(b)
	if err != nil {
		return false, err
	}
	statA, okA := infoA.Sys().(*syscall.Stat_t)
	statB, okB := infoB.Sys().(*syscall.Stat_t)
	if !okA || !okB {
		return false, nil
	}
	return statA.Dev == statB.Dev, nil
}
