// Package filesink provides a file-based debug sink implementation.
package filesink

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/user/bag2mp4/pkg/ports"
)

// Sink saves debug output to files under baseDir:
//
//	catalog.json
//	result.json
//	frames/frame-0000.png ...
type Sink struct {
	baseDir    string
	fs         ports.FileSystem
	renderer   ports.Renderer
	frameEvery int
}

// New creates a new FileSink. Only every frameEvery-th frame is written;
// values below 1 save every frame.
func New(baseDir string, fs ports.FileSystem, renderer ports.Renderer, frameEvery int) *Sink {
	if frameEvery < 1 {
		frameEvery = 1
	}
	return &Sink{
		baseDir:    baseDir,
		fs:         fs,
		renderer:   renderer,
		frameEvery: frameEvery,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveCatalogJSON saves the topic catalog.
func (s *Sink) SaveCatalogJSON(data []byte) error {
	return s.fs.WriteFile(filepath.Join(s.baseDir, "catalog.json"), data)
}

// SaveResultJSON saves the run counters.
func (s *Sink) SaveResultJSON(data []byte) error {
	return s.fs.WriteFile(filepath.Join(s.baseDir, "result.json"), data)
}

// SaveFrame saves a decoded frame as PNG.
func (s *Sink) SaveFrame(index int, img image.Image) error {
	if index%s.frameEvery != 0 {
		return nil
	}
	dir := filepath.Join(s.baseDir, "frames")
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}
	data, err := s.renderer.EncodeImage(img, ports.FormatPNG, 0)
	if err != nil {
		return fmt.Errorf("encode frame %d: %w", index, err)
	}
	return s.fs.WriteFile(filepath.Join(dir, fmt.Sprintf("frame-%04d.png", index)), data)
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
