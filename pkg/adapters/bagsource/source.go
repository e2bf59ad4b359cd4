// Package bagsource adapts rosbag2 sessions to ports.BagOpener.
package bagsource

import (
	"context"
	"errors"
	"fmt"

	"github.com/user/bag2mp4/pkg/ports"
	"github.com/user/bag2mp4/pkg/rosbag2"
)

// Source opens sqlite3 bags with cdr pass-through conversion.
type Source struct {
	session   *rosbag2.Session
	storageID string
	converter rosbag2.ConverterOptions
}

// New creates a source backed by session.
func New(session *rosbag2.Session) *Source {
	return &Source{
		session:   session,
		storageID: rosbag2.StorageSQLite3,
		converter: rosbag2.DefaultConverterOptions(),
	}
}

// Open opens the bag at path.
func (s *Source) Open(ctx context.Context, path string) (ports.BagReader, error) {
	r, err := s.session.Open(ctx, rosbag2.StorageOptions{URI: path, StorageID: s.storageID}, s.converter)
	if err != nil {
		return nil, err
	}
	return &reader{r: r}, nil
}

type reader struct {
	r *rosbag2.Reader
}

func (a *reader) Topics() []ports.TopicInfo {
	topics := a.r.Topics()
	out := make([]ports.TopicInfo, 0, len(topics))
	for _, t := range topics {
		out = append(out, ports.TopicInfo{
			Name:                t.Name,
			Type:                t.Type,
			SerializationFormat: t.SerializationFormat,
			MessageCount:        t.MessageCount,
		})
	}
	return out
}

func (a *reader) HasNext() bool {
	return a.r.HasNext()
}

func (a *reader) ReadNext() (ports.BagMessage, error) {
	msg, err := a.r.ReadNext()
	if errors.Is(err, rosbag2.ErrEndOfBag) {
		return ports.BagMessage{}, fmt.Errorf("%w: %w", ports.ErrEndOfBag, err)
	}
	var recErr *rosbag2.RecordError
	if errors.As(err, &recErr) {
		return ports.BagMessage{}, &ports.RecordError{Topic: recErr.Topic, Err: err}
	}
	if err != nil {
		return ports.BagMessage{}, err
	}
	return ports.BagMessage{Topic: msg.Topic, Data: msg.Data, Timestamp: msg.Timestamp}, nil
}

func (a *reader) Close() error {
	return a.r.Close()
}

var (
	_ ports.BagOpener = (*Source)(nil)
	_ ports.BagReader = (*reader)(nil)
)
