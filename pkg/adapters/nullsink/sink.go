// Package nullsink provides a no-op debug sink implementation.
package nullsink

import (
	"image"

	"github.com/user/bag2mp4/pkg/ports"
)

// Sink discards all debug output.
type Sink struct{}

// New creates a new NullSink.
func New() *Sink {
	return &Sink{}
}

// Enabled returns false.
func (s *Sink) Enabled() bool {
	return false
}

// SaveCatalogJSON does nothing.
func (s *Sink) SaveCatalogJSON(data []byte) error {
	return nil
}

// SaveResultJSON does nothing.
func (s *Sink) SaveResultJSON(data []byte) error {
	return nil
}

// SaveFrame does nothing.
func (s *Sink) SaveFrame(index int, img image.Image) error {
	return nil
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
