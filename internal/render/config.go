package render

import "image/color"

// Canvas sizes. Card positions are stored in export canvas pixels; the
// preview is a downscale of the export canvas.
const (
	DefaultCanvasSize  = 1200
	DefaultPreviewSize = 800
)

// PreviewBackground fills the area around a card on preview surfaces
// that cannot show transparency.
var PreviewBackground = color.RGBA{R: 0xF2, G: 0xF2, B: 0xF2, A: 0xFF}
