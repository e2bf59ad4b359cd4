// Package smartwriter selects a video writer backend with fallback support.
package smartwriter

import (
	"errors"
	"fmt"

	"github.com/user/bag2mp4/pkg/adapters/ffmpegwriter"
	"github.com/user/bag2mp4/pkg/adapters/mp4muxer"
	"github.com/user/bag2mp4/pkg/ports"
)

// Backend names a writer implementation.
type Backend string

const (
	// BackendAuto prefers ffmpeg and falls back to the native muxer.
	BackendAuto Backend = "auto"
	// BackendFFmpeg encodes MPEG-4 Part 2 through an ffmpeg subprocess.
	BackendFFmpeg Backend = "ffmpeg"
	// BackendNative stores JPEG samples with the pure-Go muxer.
	BackendNative Backend = "native"
)

// ParseBackend converts a flag value into a Backend.
func ParseBackend(s string) (Backend, error) {
	switch Backend(s) {
	case "", BackendAuto:
		return BackendAuto, nil
	case BackendFFmpeg, BackendNative:
		return Backend(s), nil
	default:
		return "", fmt.Errorf("%w: %q (want auto, ffmpeg or native)", ErrUnknownBackend, s)
	}
}

// Info reports the selected backend.
type Info struct {
	Backend      Backend
	Requested    Backend
	FallbackUsed bool
}

// Options configures backend selection.
type Options struct {
	// FFmpegPath is an optional custom path to the ffmpeg binary.
	FFmpegPath string
	// Renderer encodes JPEG samples for the native backend.
	Renderer ports.Renderer
	// JPEGQuality and FramesPerFragment tune the native backend.
	JPEGQuality       int
	FramesPerFragment int
	// Logger is used to log fallback warnings.
	Logger ports.Logger
}

var (
	// ErrNoWriterAvailable is returned when the requested backend cannot run.
	ErrNoWriterAvailable = errors.New("smartwriter: no video writer available")

	// ErrUnknownBackend is returned for unrecognized backend names.
	ErrUnknownBackend = errors.New("smartwriter: unknown backend")
)

// lookPath is swapped in tests.
var lookPath = ffmpegwriter.FindFFmpeg

// New returns a writer for the requested backend.
//
// The selection flow for auto:
//  1. Use ffmpeg when it can be found
//  2. Otherwise warn and use the native muxer
func New(requested Backend, opts Options) (ports.VideoWriter, Info, error) {
	info := Info{Requested: requested}

	switch requested {
	case BackendFFmpeg:
		if _, err := lookPath(opts.FFmpegPath); err != nil {
			return nil, info, fmt.Errorf("%w: %w", ErrNoWriterAvailable, err)
		}
		info.Backend = BackendFFmpeg
		return newFFmpeg(opts), info, nil

	case BackendNative:
		if opts.Renderer == nil {
			return nil, info, fmt.Errorf("%w: native backend needs a renderer", ErrNoWriterAvailable)
		}
		info.Backend = BackendNative
		return newNative(opts), info, nil

	case BackendAuto, "":
		info.Requested = BackendAuto
		if _, err := lookPath(opts.FFmpegPath); err == nil {
			info.Backend = BackendFFmpeg
			return newFFmpeg(opts), info, nil
		}
		if opts.Renderer == nil {
			return nil, info, fmt.Errorf("%w: ffmpeg not found and no renderer for the native backend", ErrNoWriterAvailable)
		}
		if opts.Logger != nil {
			opts.Logger.Warn("ffmpeg not found, falling back to the native MP4 writer")
		}
		info.Backend = BackendNative
		info.FallbackUsed = true
		return newNative(opts), info, nil

	default:
		return nil, info, fmt.Errorf("%w: %q", ErrUnknownBackend, requested)
	}
}

func newFFmpeg(opts Options) ports.VideoWriter {
	return ffmpegwriter.New(ffmpegwriter.Options{FFmpegPath: opts.FFmpegPath, Logger: opts.Logger})
}

func newNative(opts Options) ports.VideoWriter {
	return mp4muxer.New(opts.Renderer, mp4muxer.Options{
		Quality:           opts.JPEGQuality,
		FramesPerFragment: opts.FramesPerFragment,
		Logger:            opts.Logger,
	})
}
