package ports

import (
	"image"
)

// DebugSink abstracts debug output for intermediate results.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveCatalogJSON saves the topic catalog of the bag as JSON.
	SaveCatalogJSON(data []byte) error

	// SaveResultJSON saves the run counters as JSON.
	SaveResultJSON(data []byte) error

	// SaveFrame saves a decoded frame.
	SaveFrame(index int, img image.Image) error
}
