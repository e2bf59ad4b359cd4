// Package annotate implements the timestamp overlay stage.
package annotate

import (
	"context"
	"fmt"
	"time"

	"github.com/user/bag2mp4/pkg/imageconv"
	"github.com/user/bag2mp4/pkg/pipeline"
	"github.com/user/bag2mp4/pkg/ports"
)

// Stage draws the frame number and header stamp onto each frame.
type Stage struct {
	renderer ports.Renderer
	style    ports.LabelStyle
	logger   ports.Logger
}

// NewStage creates a new annotate stage.
func NewStage(renderer ports.Renderer, style ports.LabelStyle, logger ports.Logger) *Stage {
	return &Stage{
		renderer: renderer,
		style:    style,
		logger:   logger.WithComponent("annotate"),
	}
}

// Execute labels one frame. The frame size is preserved.
func (s *Stage) Execute(ctx context.Context, input pipeline.AnnotateInput) (pipeline.AnnotateResult, error) {
	if input.Frame == nil {
		return pipeline.AnnotateResult{}, fmt.Errorf("annotate: no frame")
	}

	stamp := input.Stamp
	if stamp.IsZero() || stamp.Unix() == 0 {
		stamp = input.Recorded
	}
	label := Label(input.Index, stamp)

	out := s.renderer.DrawLabel(input.Frame, label, s.style)
	frame := imageconv.FromImage(out)
	if frame.Rect.Size() != input.Frame.Rect.Size() {
		return pipeline.AnnotateResult{}, fmt.Errorf("annotate: renderer changed frame size from %v to %v", input.Frame.Rect.Size(), frame.Rect.Size())
	}

	s.logger.Debug("Annotated frame %d: %s", input.Index, label)
	return pipeline.AnnotateResult{Frame: frame}, nil
}

// Label formats the overlay text: frame number and seconds.nanoseconds.
func Label(index int, stamp time.Time) string {
	return fmt.Sprintf("#%d %d.%09d", index, stamp.Unix(), stamp.Nanosecond())
}
