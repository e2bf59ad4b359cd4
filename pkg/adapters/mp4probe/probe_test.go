package mp4probe

import (
	"bytes"
	"image"
	"path/filepath"
	"testing"
	"time"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/bag2mp4/pkg/adapters/ggrenderer"
	"github.com/user/bag2mp4/pkg/adapters/mp4muxer"
	"github.com/user/bag2mp4/pkg/imageconv"
	"github.com/user/bag2mp4/pkg/ports"
)

func TestVisualEntry_MP4V(t *testing.T) {
	esds := mp4.CreateEsdsBox(nil)
	esds.DecConfigDescriptor.ObjectType = mp4muxer.ObjectTypeJPEG
	entry := mp4.CreateVisualSampleEntryBox("mp4v", 640, 480, esds)

	var buf bytes.Buffer
	if err := entry.Encode(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	box, err := mp4.DecodeBox(0, bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	got := visualEntry(box)
	if got == nil {
		t.Fatalf("expected a visual sample entry from %T", box)
	}
	if got.Type() != "mp4v" || got.Width != 640 || got.Height != 480 {
		t.Errorf("unexpected entry %s %dx%d", got.Type(), got.Width, got.Height)
	}
}

func TestProbeFile_Muxer(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.mp4")
	m := mp4muxer.New(ggrenderer.New(), mp4muxer.Options{})
	if err := m.Open(out, 640, 480, 10, ports.CodecMP4V); err != nil {
		t.Fatalf("Open: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := m.WriteFrame(imageconv.NewBGR(image.Rect(0, 0, 640, 480))); err != nil {
			t.Fatalf("WriteFrame: %v", err)
		}
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	info, err := ProbeFile(out)
	if err != nil {
		t.Fatalf("ProbeFile: %v", err)
	}
	if info.Codec != "mp4v" || info.ObjectType != mp4muxer.ObjectTypeJPEG {
		t.Errorf("unexpected codec %q object type %#x", info.Codec, info.ObjectType)
	}
	if info.Width != 640 || info.Height != 480 {
		t.Errorf("expected 640x480, got %dx%d", info.Width, info.Height)
	}
	if info.Samples != 3 || info.Duration != 300*time.Millisecond {
		t.Errorf("expected 3 samples over 300ms, got %d over %v", info.Samples, info.Duration)
	}
	if fps := info.FPS(); fps < 9.99 || fps > 10.01 {
		t.Errorf("expected 10 fps, got %g", fps)
	}
}

func TestProbeBytes_Empty(t *testing.T) {
	if _, err := ProbeBytes(nil); err == nil {
		t.Error("expected an error for an empty file")
	}
}
