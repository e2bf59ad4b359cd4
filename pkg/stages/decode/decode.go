// Package decode implements the frame decoding stage.
package decode

import (
	"context"
	"errors"
	"fmt"

	"github.com/user/bag2mp4/pkg/imageconv"
	"github.com/user/bag2mp4/pkg/msgs"
	"github.com/user/bag2mp4/pkg/pipeline"
	"github.com/user/bag2mp4/pkg/ports"
	"github.com/user/bag2mp4/pkg/rosbag2"
)

// ErrDecode is wrapped by every per-record decoding failure.
var ErrDecode = errors.New("decode: cannot decode image")

// Stage turns serialized image messages into BGR frames.
type Stage struct {
	logger ports.Logger
}

// NewStage creates a new decode stage.
func NewStage(logger ports.Logger) *Stage {
	return &Stage{
		logger: logger.WithComponent("decode"),
	}
}

// Execute decodes one record.
func (s *Stage) Execute(ctx context.Context, input pipeline.DecodeInput) (pipeline.DecodeResult, error) {
	result := pipeline.DecodeResult{}
	msg := input.Message

	if err := ctx.Err(); err != nil {
		return result, err
	}

	if input.SerializationFormat != "" && input.SerializationFormat != rosbag2.SerializationCDR {
		return result, fmt.Errorf("%w: %s: serialization format %q", ErrDecode, msg.Topic, input.SerializationFormat)
	}

	decoded, err := msgs.Unmarshal(input.Type, msg.Data)
	if err != nil {
		return result, fmt.Errorf("%w: %s at %d: %w", ErrDecode, msg.Topic, msg.Timestamp.UnixNano(), err)
	}

	switch m := decoded.(type) {
	case *msgs.Image:
		result.Frame, err = imageconv.ToBGR(m)
		result.Encoding = m.Encoding
	case *msgs.CompressedImage:
		result.Frame, err = imageconv.CompressedToBGR(m)
		result.Encoding = m.Format
	default:
		err = fmt.Errorf("%w: %T", msgs.ErrUnsupportedType, decoded)
	}
	if err != nil {
		return pipeline.DecodeResult{}, fmt.Errorf("%w: %s at %d: %w", ErrDecode, msg.Topic, msg.Timestamp.UnixNano(), err)
	}
	result.Stamp = decoded.Stamp()

	s.logger.Debug("Decoded %dx%d %s frame", result.Frame.Rect.Dx(), result.Frame.Rect.Dy(), result.Encoding)
	return result, nil
}
