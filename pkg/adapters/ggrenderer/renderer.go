// Package ggrenderer provides a renderer implementation using the gg library.
package ggrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/font/basicfont"

	"github.com/user/bag2mp4/pkg/ports"
)

// Renderer implements ports.Renderer using the gg library.
type Renderer struct{}

// New creates a new Renderer.
func New() *Renderer {
	return &Renderer{}
}

// DrawLabel draws text in a filled box anchored at the top-left corner.
// The input image is not modified.
func (r *Renderer) DrawLabel(img image.Image, text string, style ports.LabelStyle) image.Image {
	dc := gg.NewContextForImage(img)
	dc.SetFontFace(basicfont.Face7x13)

	b := img.Bounds()
	pad := float64(style.Padding)
	tw, th := dc.MeasureString(text)
	boxW := tw + 2*pad
	boxH := th + 2*pad
	if boxW > float64(b.Dx()) {
		boxW = float64(b.Dx())
	}
	if boxH > float64(b.Dy()) {
		boxH = float64(b.Dy())
	}

	dc.SetColor(style.BackgroundColor)
	dc.DrawRectangle(0, 0, boxW, boxH)
	dc.Fill()

	dc.SetColor(style.TextColor)
	dc.DrawStringAnchored(text, pad, pad+th/2, 0, 0.5)
	return dc.Image()
}

// EncodeImage encodes an image to the specified format.
func (r *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case ports.FormatJPEG:
		opts := &jpeg.Options{Quality: quality}
		if err := jpeg.Encode(&buf, toRGBA(img), opts); err != nil {
			return nil, fmt.Errorf("encode JPEG: %w", err)
		}
	case ports.FormatPNG:
		if err := png.Encode(&buf, toRGBA(img)); err != nil {
			return nil, fmt.Errorf("encode PNG: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %d", format)
	}

	return buf.Bytes(), nil
}

// toRGBA gives the stdlib encoders their fast path.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// Ensure Renderer implements ports.Renderer
var _ ports.Renderer = (*Renderer)(nil)
