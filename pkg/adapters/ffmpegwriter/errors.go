package ffmpegwriter

import "errors"

var (
	// ErrFFmpegNotFound is returned when no ffmpeg binary can be located.
	ErrFFmpegNotFound = errors.New("ffmpegwriter: ffmpeg not found")

	// ErrUnsupportedCodec is returned for fourcc codes other than mp4v.
	ErrUnsupportedCodec = errors.New("ffmpegwriter: unsupported codec")
)
