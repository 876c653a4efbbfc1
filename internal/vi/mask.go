package vi

// Sen2Cor SCL classes that always invalidate a pixel: cloud shadow (3),
// cloud medium probability (8), cloud high probability (9), cirrus (10).
var invalidSceneClasses = map[int]bool{3: true, 8: true, 9: true, 10: true}

// MaskOptions control how the quality bands are interpreted.
type MaskOptions struct {
	// CloudProbThreshold is the CLD band value (0-100) above which a pixel
	// is considered cloud contaminated.
	CloudProbThreshold float64
}

// BuildMask derives a per-pixel validity mask from the scene's quality
// bands. A pixel is usable when its cloud probability is at or below the
// threshold, its scene class is not a cloud/shadow/cirrus class, and the
// quality bands themselves carry data there. A fully invalid mask is a
// legitimate result: disposition of such scenes is decided downstream,
// not here.
func BuildMask(scene *Scene, opts MaskOptions) []bool {
	width, height := scene.Grid()
	mask := make([]bool, width*height)

	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			mask[row*width+col] = pixelUsable(scene, col, row, opts)
		}
	}
	return mask
}

func pixelUsable(scene *Scene, col, row int, opts MaskOptions) bool {
	if scene.CloudProb != nil {
		cld, ok := scene.CloudProb.At(col, row)
		if !ok || cld > opts.CloudProbThreshold {
			return false
		}
	}
	if scene.SceneClass != nil {
		scl, ok := scene.SceneClass.At(col, row)
		if !ok || invalidSceneClasses[int(scl)] {
			return false
		}
	}
	return true
}
