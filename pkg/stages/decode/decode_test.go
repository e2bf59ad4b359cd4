package decode

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"

	"github.com/user/bag2mp4/pkg/adapters/logger"
	"github.com/user/bag2mp4/pkg/imageconv"
	"github.com/user/bag2mp4/pkg/msgs"
	"github.com/user/bag2mp4/pkg/pipeline"
	"github.com/user/bag2mp4/pkg/ports"
	"github.com/user/bag2mp4/pkg/rosbag2/bagtest"
)

func TestStage_Execute_RawImage(t *testing.T) {
	stage := NewStage(logger.NewNoop())

	stamp := bagtest.Stamp(3)
	input := pipeline.DecodeInput{
		Message:             ports.BagMessage{Topic: "/cam", Data: bagtest.BGRImage(stamp, 8, 6, 0x40), Timestamp: stamp},
		Type:                msgs.TypeImage,
		SerializationFormat: "cdr",
	}

	result, err := stage.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if dim := pipeline.DimensionOf(result.Frame); dim != (pipeline.Dimension{Width: 8, Height: 6}) {
		t.Errorf("expected 8x6 frame, got %dx%d", dim.Width, dim.Height)
	}
	if !result.Stamp.Equal(stamp) {
		t.Errorf("expected stamp %v, got %v", stamp, result.Stamp)
	}
	if result.Encoding != "bgr8" {
		t.Errorf("expected encoding bgr8, got %q", result.Encoding)
	}
	if result.Frame.Pix[0] != 0x40 {
		t.Errorf("expected pixel value 0x40, got %#x", result.Frame.Pix[0])
	}
}

func TestStage_Execute_CompressedImage(t *testing.T) {
	stage := NewStage(logger.NewNoop())

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 5, 4))); err != nil {
		t.Fatal(err)
	}
	payload := msgs.MarshalCompressedImage(&msgs.CompressedImage{Format: "png", Data: buf.Bytes()})

	result, err := stage.Execute(context.Background(), pipeline.DecodeInput{
		Message: ports.BagMessage{Topic: "/cam/compressed", Data: payload},
		Type:    msgs.TypeCompressedImage,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w, h := result.Frame.Size(); w != 5 || h != 4 {
		t.Errorf("expected 5x4 frame, got %dx%d", w, h)
	}
}

func TestStage_Execute_Errors(t *testing.T) {
	stage := NewStage(logger.NewNoop())
	good := bagtest.BGRImage(bagtest.Stamp(0), 2, 2, 0)

	tests := []struct {
		name    string
		input   pipeline.DecodeInput
		wantErr error
	}{
		{
			name:    "unsupported type",
			input:   pipeline.DecodeInput{Message: ports.BagMessage{Data: good}, Type: "std_msgs/msg/String"},
			wantErr: msgs.ErrUnsupportedType,
		},
		{
			name:  "truncated payload",
			input: pipeline.DecodeInput{Message: ports.BagMessage{Data: good[:len(good)-3]}, Type: msgs.TypeImage},
		},
		{
			name:  "wrong serialization",
			input: pipeline.DecodeInput{Message: ports.BagMessage{Data: good}, Type: msgs.TypeImage, SerializationFormat: "json"},
		},
		{
			name:    "unsupported encoding",
			input:   pipeline.DecodeInput{Message: ports.BagMessage{Data: bagtest.RawImage(bagtest.Stamp(0), 2, 2, "bayer_rggb8", 1, 0)}, Type: msgs.TypeImage},
			wantErr: imageconv.ErrUnsupportedEncoding,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := stage.Execute(context.Background(), tt.input)
			if !errors.Is(err, ErrDecode) {
				t.Fatalf("expected ErrDecode, got %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v in chain, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestStage_Execute_Cancelled(t *testing.T) {
	stage := NewStage(logger.NewNoop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := stage.Execute(ctx, pipeline.DecodeInput{Type: msgs.TypeImage})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
