package common

const (
	BaseWidth  = 1280
	BaseHeight = 720

	// PixelsPerUnit scales world units to screen pixels in the viewer.
	PixelsPerUnit = 48.0
)

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// WorldToScreen maps a world XY point to screen pixels for a camera centred
// on (camX, camY). Screen Y grows downwards.
func WorldToScreen(x, y, camX, camY float64) (float64, float64) {
	sx := BaseWidth/2 + (x-camX)*PixelsPerUnit
	sy := BaseHeight/2 - (y-camY)*PixelsPerUnit
	return sx, sy
}
