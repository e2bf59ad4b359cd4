package rosbag2

import (
	"errors"
	"fmt"
)

var (
	// ErrOpen is returned when a bag cannot be opened. The wrapped message
	// carries the path and the underlying cause.
	ErrOpen = errors.New("rosbag2: cannot open bag")

	// ErrEndOfBag is returned by ReadNext once every record has been consumed.
	ErrEndOfBag = errors.New("rosbag2: end of bag")

	// ErrClosed is returned when a closed reader or session is used.
	ErrClosed = errors.New("rosbag2: closed")

	// ErrUnsupportedCompression is returned for compression formats other than zstd.
	ErrUnsupportedCompression = errors.New("rosbag2: unsupported compression")

	// ErrRecord marks a single record that could not be read. The reader
	// stays usable after it.
	ErrRecord = errors.New("rosbag2: unreadable record")
)

// RecordError describes an unreadable record. Topic is empty when the
// record does not name a known topic.
type RecordError struct {
	Topic string
	Err   error
}

func (e *RecordError) Error() string {
	if e.Topic == "" {
		return fmt.Sprintf("%v: %v", ErrRecord, e.Err)
	}
	return fmt.Sprintf("%v on %s: %v", ErrRecord, e.Topic, e.Err)
}

func (e *RecordError) Unwrap() []error {
	return []error{ErrRecord, e.Err}
}
