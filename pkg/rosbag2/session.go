package rosbag2

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/user/bag2mp4/pkg/adapters/logger"
	"github.com/user/bag2mp4/pkg/ports"
)

// Session brackets the lifetime of every reader opened through it. Close
// shuts the readers down and removes temporary files.
type Session struct {
	mu      sync.Mutex
	logger  ports.Logger
	tempDir string
	scratch string
	readers map[*Reader]struct{}
	closed  bool
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets the logger used for diagnostics. Sessions log nothing by default.
func WithLogger(l ports.Logger) SessionOption {
	return func(s *Session) {
		s.logger = l
	}
}

// WithTempDir sets the parent directory for decompressed storage files.
func WithTempDir(dir string) SessionOption {
	return func(s *Session) {
		s.tempDir = dir
	}
}

// NewSession creates a session.
func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		logger:  logger.NewNoop(),
		readers: make(map[*Reader]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.NewNoop()
	}
	return s
}

// Open opens a bag for sequential reading.
func (s *Session) Open(ctx context.Context, storage StorageOptions, converter ConverterOptions) (*Reader, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, fmt.Errorf("%w: %s: %w", ErrOpen, storage.URI, ErrClosed)
	}

	r, err := openReader(ctx, s, storage, converter)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrOpen, storage.URI, err)
	}
	s.logger.Debug("Opened bag %s with %d topics", storage.URI, len(r.topics))

	s.mu.Lock()
	s.readers[r] = struct{}{}
	s.mu.Unlock()
	return r, nil
}

// Close closes every open reader and removes the scratch directory.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	readers := make([]*Reader, 0, len(s.readers))
	for r := range s.readers {
		readers = append(readers, r)
	}
	scratch := s.scratch
	s.mu.Unlock()

	var errs []error
	for _, r := range readers {
		errs = append(errs, r.Close())
	}
	if scratch != "" {
		errs = append(errs, os.RemoveAll(scratch))
	}
	return errors.Join(errs...)
}

func (s *Session) release(r *Reader) {
	s.mu.Lock()
	delete(s.readers, r)
	s.mu.Unlock()
}

// scratchDir returns the session's temporary directory, creating it on first use.
func (s *Session) scratchDir() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scratch != "" {
		return s.scratch, nil
	}
	dir, err := os.MkdirTemp(s.tempDir, "rosbag2-*")
	if err != nil {
		return "", fmt.Errorf("create scratch directory: %w", err)
	}
	s.scratch = dir
	return dir, nil
}
