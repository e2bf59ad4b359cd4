package mocks

import (
	"image"
	"sync"

	"github.com/user/bag2mp4/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	CatalogJSON []byte
	ResultJSON  []byte
	Frames      map[int]image.Image
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{
		enabled: enabled,
		Frames:  make(map[int]image.Image),
	}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveCatalogJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CatalogJSON = data
	return nil
}

func (m *DebugSink) SaveResultJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResultJSON = data
	return nil
}

func (m *DebugSink) SaveFrame(index int, img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Frames[index] = img
	return nil
}

// FrameCount returns the number of saved frames.
func (m *DebugSink) FrameCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.Frames)
}

var _ ports.DebugSink = (*DebugSink)(nil)
