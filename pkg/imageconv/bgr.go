// Package imageconv converts ROS image messages into 8-bit BGR frames.
package imageconv

import (
	"image"
	"image/color"
)

// BGR is an in-memory image whose pixels are packed B, G, R octets.
// It is the layout handed to the video encoder.
type BGR struct {
	// Pix holds the pixels in row-major order starting at Rect.Min.
	Pix []uint8
	// Stride is the distance in bytes between vertically adjacent pixels.
	Stride int
	Rect   image.Rectangle
}

// NewBGR returns a new BGR image with the given bounds.
func NewBGR(r image.Rectangle) *BGR {
	w, h := r.Dx(), r.Dy()
	return &BGR{
		Pix:    make([]uint8, 3*w*h),
		Stride: 3 * w,
		Rect:   r,
	}
}

// ColorModel implements image.Image.
func (p *BGR) ColorModel() color.Model { return color.RGBAModel }

// Bounds implements image.Image.
func (p *BGR) Bounds() image.Rectangle { return p.Rect }

// PixOffset returns the index of the first element of Pix that corresponds to (x, y).
func (p *BGR) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*3
}

// At implements image.Image.
func (p *BGR) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(p.Rect)) {
		return color.RGBA{}
	}
	i := p.PixOffset(x, y)
	return color.RGBA{R: p.Pix[i+2], G: p.Pix[i+1], B: p.Pix[i], A: 0xff}
}

// Set implements draw.Image. Alpha is discarded.
func (p *BGR) Set(x, y int, c color.Color) {
	if !(image.Point{x, y}.In(p.Rect)) {
		return
	}
	i := p.PixOffset(x, y)
	c1 := color.RGBAModel.Convert(c).(color.RGBA)
	p.Pix[i+0] = c1.B
	p.Pix[i+1] = c1.G
	p.Pix[i+2] = c1.R
}

// Size returns the frame dimensions.
func (p *BGR) Size() (width, height int) {
	return p.Rect.Dx(), p.Rect.Dy()
}

// FromImage converts any image to a BGR frame anchored at the origin.
func FromImage(img image.Image) *BGR {
	if bgr, ok := img.(*BGR); ok && bgr.Rect.Min == (image.Point{}) {
		return bgr
	}

	b := img.Bounds()
	dst := NewBGR(image.Rect(0, 0, b.Dx(), b.Dy()))

	switch src := img.(type) {
	case *image.RGBA:
		for y := 0; y < b.Dy(); y++ {
			s := src.PixOffset(b.Min.X, b.Min.Y+y)
			d := y * dst.Stride
			for x := 0; x < b.Dx(); x++ {
				dst.Pix[d+0] = src.Pix[s+2]
				dst.Pix[d+1] = src.Pix[s+1]
				dst.Pix[d+2] = src.Pix[s+0]
				s += 4
				d += 3
			}
		}
	case *image.Gray:
		for y := 0; y < b.Dy(); y++ {
			s := src.PixOffset(b.Min.X, b.Min.Y+y)
			d := y * dst.Stride
			for x := 0; x < b.Dx(); x++ {
				v := src.Pix[s]
				dst.Pix[d+0], dst.Pix[d+1], dst.Pix[d+2] = v, v, v
				s++
				d += 3
			}
		}
	default:
		for y := 0; y < b.Dy(); y++ {
			d := y * dst.Stride
			for x := 0; x < b.Dx(); x++ {
				r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
				dst.Pix[d+0] = uint8(bl >> 8)
				dst.Pix[d+1] = uint8(g >> 8)
				dst.Pix[d+2] = uint8(r >> 8)
				d += 3
			}
		}
	}

	return dst
}
