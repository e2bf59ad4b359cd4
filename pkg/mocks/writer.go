package mocks

import (
	"fmt"
	"image"

	"github.com/user/bag2mp4/pkg/ports"
)

// VideoWriter is a mock implementation of ports.VideoWriter. It enforces the
// frame size the way the real writers do.
type VideoWriter struct {
	OpenFunc       func(path string, width, height int, fps float64, codec string) error
	WriteFrameFunc func(img image.Image) error
	CloseFunc      func() error

	// Recorded calls for verification
	OpenCalls   []OpenCall
	Frames      []image.Image
	CloseCalled int

	width, height int
	open          bool
}

// OpenCall records a call to Open.
type OpenCall struct {
	Path   string
	Width  int
	Height int
	FPS    float64
	Codec  string
}

func (m *VideoWriter) Open(path string, width, height int, fps float64, codec string) error {
	m.OpenCalls = append(m.OpenCalls, OpenCall{Path: path, Width: width, Height: height, FPS: fps, Codec: codec})
	if m.OpenFunc != nil {
		if err := m.OpenFunc(path, width, height, fps, codec); err != nil {
			return err
		}
	}
	m.width, m.height = width, height
	m.open = true
	return nil
}

func (m *VideoWriter) WriteFrame(img image.Image) error {
	if !m.open {
		return ports.ErrWriterNotOpen
	}
	if b := img.Bounds(); b.Dx() != m.width || b.Dy() != m.height {
		return fmt.Errorf("%w: got %dx%d, want %dx%d", ports.ErrFrameSize, b.Dx(), b.Dy(), m.width, m.height)
	}
	if m.WriteFrameFunc != nil {
		if err := m.WriteFrameFunc(img); err != nil {
			return err
		}
	}
	m.Frames = append(m.Frames, img)
	return nil
}

func (m *VideoWriter) Close() error {
	m.CloseCalled++
	m.open = false
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

var _ ports.VideoWriter = (*VideoWriter)(nil)
