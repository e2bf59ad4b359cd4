package mocks

import (
	"image"

	"github.com/user/bag2mp4/pkg/ports"
)

// Renderer is a mock implementation of ports.Renderer.
type Renderer struct {
	DrawLabelFunc   func(img image.Image, text string, style ports.LabelStyle) image.Image
	EncodeImageFunc func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error)

	// Recorded calls for verification
	DrawLabelCalls []string
}

func (m *Renderer) DrawLabel(img image.Image, text string, style ports.LabelStyle) image.Image {
	m.DrawLabelCalls = append(m.DrawLabelCalls, text)
	if m.DrawLabelFunc != nil {
		return m.DrawLabelFunc(img, text, style)
	}
	return img
}

func (m *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	if m.EncodeImageFunc != nil {
		return m.EncodeImageFunc(img, format, quality)
	}
	return []byte{}, nil
}

var _ ports.Renderer = (*Renderer)(nil)
