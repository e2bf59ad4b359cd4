package pipeline

import (
	"time"

	"github.com/user/bag2mp4/pkg/imageconv"
	"github.com/user/bag2mp4/pkg/ports"
)

// =============================================================================
// Common Types
// =============================================================================

// Dimension represents width and height.
type Dimension struct {
	Width  int
	Height int
}

// DimensionOf returns the size of a frame.
func DimensionOf(frame *imageconv.BGR) Dimension {
	w, h := frame.Size()
	return Dimension{Width: w, Height: h}
}

// =============================================================================
// Decode Stage Types
// =============================================================================

// DecodeInput is one record of the selected topic together with the topic's
// catalog entry.
type DecodeInput struct {
	Message             ports.BagMessage
	Type                string // ROS message type, e.g. sensor_msgs/msg/Image
	SerializationFormat string // must be cdr
}

// DecodeResult holds the decoded frame.
type DecodeResult struct {
	Frame *imageconv.BGR

	// Stamp is the header stamp of the image message.
	Stamp time.Time

	// Encoding is the pixel encoding or compressed format of the source message.
	Encoding string
}

// =============================================================================
// Annotate Stage Types
// =============================================================================

// AnnotateInput describes a frame to be labelled.
type AnnotateInput struct {
	Frame    *imageconv.BGR
	Index    int       // zero-based frame number in the output video
	Stamp    time.Time // header stamp
	Recorded time.Time // bag record timestamp
	Topic    string
}

// AnnotateResult contains the labelled frame.
type AnnotateResult struct {
	Frame *imageconv.BGR
}
