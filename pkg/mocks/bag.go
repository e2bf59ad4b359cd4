package mocks

import (
	"context"

	"github.com/user/bag2mp4/pkg/ports"
)

// BagOpener is a mock implementation of ports.BagOpener serving one in-memory bag.
type BagOpener struct {
	Reader   *BagReader
	OpenErr  error
	OpenPath string
}

func (m *BagOpener) Open(ctx context.Context, path string) (ports.BagReader, error) {
	m.OpenPath = path
	if m.OpenErr != nil {
		return nil, m.OpenErr
	}
	return m.Reader, nil
}

var _ ports.BagOpener = (*BagOpener)(nil)

// BagReader is a mock implementation of ports.BagReader over a fixed record list.
type BagReader struct {
	Catalog  []ports.TopicInfo
	Messages []ports.BagMessage

	// ReadErrs maps a record index to an error returned instead of that record.
	ReadErrs map[int]error

	// OnRead is called with the index of every record handed out.
	OnRead func(index int)

	pos         int
	CloseCalled int
}

func (m *BagReader) Topics() []ports.TopicInfo {
	return m.Catalog
}

func (m *BagReader) HasNext() bool {
	return m.pos < len(m.Messages)
}

func (m *BagReader) ReadNext() (ports.BagMessage, error) {
	if m.pos >= len(m.Messages) {
		return ports.BagMessage{}, ports.ErrEndOfBag
	}
	i := m.pos
	m.pos++
	if m.OnRead != nil {
		m.OnRead(i)
	}
	if err, ok := m.ReadErrs[i]; ok {
		return ports.BagMessage{}, err
	}
	return m.Messages[i], nil
}

func (m *BagReader) Close() error {
	m.CloseCalled++
	return nil
}

// Consumed returns how many records were read.
func (m *BagReader) Consumed() int {
	return m.pos
}

var _ ports.BagReader = (*BagReader)(nil)
