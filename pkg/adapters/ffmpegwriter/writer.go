// Package ffmpegwriter encodes BGR frames to MP4 by piping raw video into an
// ffmpeg subprocess.
package ffmpegwriter

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/user/bag2mp4/pkg/adapters/logger"
	"github.com/user/bag2mp4/pkg/imageconv"
	"github.com/user/bag2mp4/pkg/ports"
)

// Options configures the writer.
type Options struct {
	// FFmpegPath is an optional explicit path to the ffmpeg binary.
	FFmpegPath string
	// Quality is the mpeg4 -q:v value (1 best, 31 worst).
	Quality int
	Logger  ports.Logger
}

// Writer implements ports.VideoWriter on top of ffmpeg's mpeg4 encoder
// tagged as mp4v.
type Writer struct {
	opts   Options
	logger ports.Logger

	mu         sync.Mutex
	cmd        *exec.Cmd
	stdin      io.WriteCloser
	stderr     bytes.Buffer
	path       string
	width      int
	height     int
	frameCount int
}

// New creates a writer. ffmpeg is looked up on Open.
func New(opts Options) *Writer {
	if opts.Quality <= 0 || opts.Quality > 31 {
		opts.Quality = 3
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNoop()
	}
	return &Writer{
		opts:   opts,
		logger: opts.Logger.WithComponent("writer"),
	}
}

// Args returns the ffmpeg command line for the given output.
func (w *Writer) Args(path string, width, height int, fps float64) []string {
	return []string{
		"-y",
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pix_fmt", "bgr24",
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-r", fmt.Sprintf("%g", fps),
		"-i", "pipe:0",
		"-c:v", "mpeg4",
		"-tag:v", ports.CodecMP4V,
		"-q:v", fmt.Sprintf("%d", w.opts.Quality),
		"-pix_fmt", "yuv420p",
		"-f", "mp4",
		path,
	}
}

// Open starts ffmpeg writing to path.
func (w *Writer) Open(path string, width, height int, fps float64, codec string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cmd != nil {
		return fmt.Errorf("%w: already open", ports.ErrWriterOpen)
	}
	if codec != ports.CodecMP4V {
		return fmt.Errorf("%w: %w: %q", ports.ErrWriterOpen, ErrUnsupportedCodec, codec)
	}
	if width <= 0 || height <= 0 || fps <= 0 {
		return fmt.Errorf("%w: invalid geometry %dx%d at %g fps", ports.ErrWriterOpen, width, height, fps)
	}

	ffmpegPath, err := FindFFmpeg(w.opts.FFmpegPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ports.ErrWriterOpen, err)
	}

	if err := checkWritable(path); err != nil {
		return fmt.Errorf("%w: %w", ports.ErrWriterOpen, err)
	}

	w.stderr.Reset()
	cmd := exec.Command(ffmpegPath, w.Args(path, width, height, fps)...)
	cmd.Stderr = &w.stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("%w: stdin pipe: %w", ports.ErrWriterOpen, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: start ffmpeg: %w", ports.ErrWriterOpen, err)
	}

	w.logger.Debug("Started %s for %dx%d at %g fps", ffmpegPath, width, height, fps)
	w.cmd = cmd
	w.stdin = stdin
	w.path = path
	w.width = width
	w.height = height
	w.frameCount = 0
	return nil
}

// checkWritable fails when no file can be created next to path.
// An existing file at path is left untouched.
func checkWritable(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmp.Close()
	return os.Remove(tmp.Name())
}

// WriteFrame pipes one frame to ffmpeg.
func (w *Writer) WriteFrame(img image.Image) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stdin == nil {
		return ports.ErrWriterNotOpen
	}
	if b := img.Bounds(); b.Dx() != w.width || b.Dy() != w.height {
		return fmt.Errorf("%w: got %dx%d, want %dx%d", ports.ErrFrameSize, b.Dx(), b.Dy(), w.width, w.height)
	}

	frame := imageconv.FromImage(img)
	if _, err := w.stdin.Write(frame.Pix[:3*w.width*w.height]); err != nil {
		return fmt.Errorf("write frame %d: %w", w.frameCount, err)
	}
	w.frameCount++
	return nil
}

// Close finishes the stream and waits for ffmpeg to finalize the file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cmd == nil {
		return ports.ErrWriterNotOpen
	}
	w.stdin.Close()
	err := w.cmd.Wait()
	w.cmd = nil
	w.stdin = nil
	if err != nil {
		return fmt.Errorf("ffmpeg encoding failed: %w%s", err, w.stderrSuffix())
	}
	w.logger.Debug("Wrote %d frames to %s", w.frameCount, w.path)
	return nil
}

// FrameCount returns the number of frames accepted since Open.
func (w *Writer) FrameCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.frameCount
}

func (w *Writer) stderrSuffix() string {
	msg := strings.TrimSpace(w.stderr.String())
	if msg == "" {
		return ""
	}
	return "\nstderr: " + msg
}

var _ ports.VideoWriter = (*Writer)(nil)
