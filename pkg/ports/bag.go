// Package ports defines interfaces for external dependencies.
package ports

import (
	"context"
	"errors"
	"time"
)

// ErrEndOfBag is returned by ReadNext once every message has been read.
var ErrEndOfBag = errors.New("bag: no more messages")

// RecordError reports one record the bag could not hand out. Reading may
// continue after it. Topic is empty when the record names no known topic.
type RecordError struct {
	Topic string
	Err   error
}

func (e *RecordError) Error() string {
	return e.Err.Error()
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// TopicInfo describes one topic of a recorded bag.
type TopicInfo struct {
	Name                string
	Type                string // e.g. "sensor_msgs/msg/Image"
	SerializationFormat string // e.g. "cdr"
	MessageCount        int    // 0 when the bag does not record counts
}

// BagMessage is one serialized message read from a bag.
type BagMessage struct {
	Topic     string
	Data      []byte
	Timestamp time.Time // receive time recorded by the bag writer
}

// BagOpener opens recorded bags.
type BagOpener interface {
	// Open opens the bag stored at path for sequential reading.
	Open(ctx context.Context, path string) (BagReader, error)
}

// BagReader reads the messages of one bag, once, in recording order.
type BagReader interface {
	// Topics returns the topics stored in the bag. It has no side effects.
	Topics() []TopicInfo

	// HasNext reports whether another message is available.
	HasNext() bool

	// ReadNext returns the next message. The sequence cannot be rewound.
	ReadNext() (BagMessage, error)

	// Close releases the storage handles.
	Close() error
}
