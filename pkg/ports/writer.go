package ports

import (
	"errors"
	"image"
)

// CodecMP4V is the MPEG-4 Visual fourcc written by every VideoWriter.
const CodecMP4V = "mp4v"

var (
	// ErrWriterOpen is returned when the output video cannot be created.
	ErrWriterOpen = errors.New("video writer: cannot open output")

	// ErrFrameSize is returned when a frame does not match the size the writer was opened with.
	ErrFrameSize = errors.New("video writer: frame size mismatch")

	// ErrWriterNotOpen is returned when frames are written before Open or after Close.
	ErrWriterNotOpen = errors.New("video writer: not open")
)

// VideoWriter appends frames to a video container on disk.
type VideoWriter interface {
	// Open creates the output file. The frame size is fixed for the rest of the stream.
	Open(path string, width, height int, fps float64, codec string) error

	// WriteFrame appends img as the next frame.
	WriteFrame(img image.Image) error

	// Close flushes and finalizes the container.
	Close() error
}
