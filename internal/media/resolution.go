package media

// StandardResolutions is the fixed ladder of display tiers a measured
// resolution is normalized onto.
var StandardResolutions = [...]uint64{480, 720, 1080, 1440, 2160, 4320}

// ClassifyResolution maps a frame size onto the nearest standard tier.
// The effective vertical resolution is max(width*9/16, height), which
// guards against swapped or anamorphic dimensions. Values below the lowest
// tier or above the highest pass through unchanged; an exact midpoint
// between two tiers resolves to the lower one.
func ClassifyResolution(width, height uint64) uint64 {
	effective := max(width*9/16, height)
	for i := 1; i < len(StandardResolutions); i++ {
		lower := StandardResolutions[i-1]
		higher := StandardResolutions[i]
		if effective < lower || effective > higher {
			continue
		}
		if effective-lower > higher-effective {
			return higher
		}
		return lower
	}
	return effective
}

// Resolution returns the standard display tier for this metadata.
func (m Metadata) Resolution() uint64 {
	return ClassifyResolution(m.Width, m.Height)
}
