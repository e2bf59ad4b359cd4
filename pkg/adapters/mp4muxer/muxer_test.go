package mp4muxer

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/user/bag2mp4/pkg/adapters/ggrenderer"
	"github.com/user/bag2mp4/pkg/adapters/mp4probe"
	"github.com/user/bag2mp4/pkg/imageconv"
	"github.com/user/bag2mp4/pkg/mocks"
	"github.com/user/bag2mp4/pkg/ports"
)

func TestMuxer_WriteAndProbe(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.mp4")
	m := New(ggrenderer.New(), Options{FramesPerFragment: 4})

	if err := m.Open(out, 33, 17, 10, ports.CodecMP4V); err != nil {
		t.Fatalf("Open: %v", err)
	}
	for i := 0; i < 9; i++ {
		frame := imageconv.NewBGR(image.Rect(0, 0, 33, 17))
		frame.Pix[0] = byte(i)
		if err := m.WriteFrame(frame); err != nil {
			t.Fatalf("WriteFrame %d: %v", i, err)
		}
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	info, err := mp4probe.ProbeFile(out)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if info.Codec != ports.CodecMP4V {
		t.Errorf("expected codec mp4v, got %q", info.Codec)
	}
	if info.ObjectType != ObjectTypeJPEG {
		t.Errorf("expected object type 0x6C, got %#x", info.ObjectType)
	}
	if info.Width != 33 || info.Height != 17 {
		t.Errorf("expected 33x17, got %dx%d", info.Width, info.Height)
	}
	if info.Samples != 9 {
		t.Errorf("expected 9 samples, got %d", info.Samples)
	}
	if info.Duration != 900*time.Millisecond {
		t.Errorf("expected 900ms, got %v", info.Duration)
	}
	if !info.Fragmented {
		t.Error("expected fragmented output")
	}
}

func TestMuxer_FrameSize(t *testing.T) {
	m := New(&mocks.Renderer{}, Options{})
	out := filepath.Join(t.TempDir(), "out.mp4")
	if err := m.Open(out, 8, 8, 10, ports.CodecMP4V); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer m.Close()

	err := m.WriteFrame(image.NewRGBA(image.Rect(0, 0, 8, 9)))
	if !errors.Is(err, ports.ErrFrameSize) {
		t.Errorf("expected ErrFrameSize, got %v", err)
	}
	if m.FrameCount() != 0 {
		t.Errorf("rejected frame should not be counted")
	}
}

func TestMuxer_OpenErrors(t *testing.T) {
	m := New(&mocks.Renderer{}, Options{})

	if err := m.Open(filepath.Join(t.TempDir(), "missing", "out.mp4"), 8, 8, 10, ports.CodecMP4V); !errors.Is(err, ports.ErrWriterOpen) {
		t.Errorf("expected ErrWriterOpen for missing directory, got %v", err)
	}
	if err := m.Open(filepath.Join(t.TempDir(), "out.mp4"), 8, 8, 10, "XVID"); !errors.Is(err, ports.ErrWriterOpen) {
		t.Errorf("expected ErrWriterOpen for codec, got %v", err)
	}
	if err := m.WriteFrame(image.NewRGBA(image.Rect(0, 0, 8, 8))); !errors.Is(err, ports.ErrWriterNotOpen) {
		t.Errorf("expected ErrWriterNotOpen, got %v", err)
	}
	if err := m.Close(); !errors.Is(err, ports.ErrWriterNotOpen) {
		t.Errorf("expected ErrWriterNotOpen, got %v", err)
	}
}

func TestMuxer_EncodeFailure(t *testing.T) {
	renderer := &mocks.Renderer{
		EncodeImageFunc: func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
			return nil, errors.New("boom")
		},
	}
	m := New(renderer, Options{})
	out := filepath.Join(t.TempDir(), "out.mp4")
	if err := m.Open(out, 2, 2, 10, ports.CodecMP4V); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := m.WriteFrame(imageconv.NewBGR(image.Rect(0, 0, 2, 2))); err == nil {
		t.Error("expected encode error")
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("output should exist after Close: %v", err)
	}
}
