package ports

import (
	"image"
	"image/color"
)

// Renderer abstracts image drawing and encoding operations.
type Renderer interface {
	// DrawLabel returns a copy of img with text drawn in a box at the top-left corner.
	DrawLabel(img image.Image, text string, style LabelStyle) image.Image

	// EncodeImage encodes an image to the specified format.
	EncodeImage(img image.Image, format ImageFormat, quality int) ([]byte, error)
}

// LabelStyle defines how a label is drawn on a frame.
type LabelStyle struct {
	TextColor       color.Color
	BackgroundColor color.Color
	Padding         int
}

// DefaultLabelStyle returns white text on a translucent black box.
func DefaultLabelStyle() LabelStyle {
	return LabelStyle{
		TextColor:       color.White,
		BackgroundColor: color.RGBA{A: 160},
		Padding:         4,
	}
}

// ImageFormat specifies image encoding format.
type ImageFormat int

const (
	FormatJPEG ImageFormat = iota
	FormatPNG
)
