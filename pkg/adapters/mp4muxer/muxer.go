// Package mp4muxer writes mp4v-tagged MP4 files without external tools.
//
// Every frame is stored as a JPEG sample (MPEG-4 object type 0x6C) in a
// fragmented MP4. Fragments are flushed to disk as they fill, so memory use
// does not grow with the length of the video.
package mp4muxer

import (
	"bufio"
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/bag2mp4/pkg/adapters/logger"
	"github.com/user/bag2mp4/pkg/ports"
)

const (
	// ObjectTypeJPEG is the MPEG-4 object type indication for ISO/IEC 10918-1.
	ObjectTypeJPEG = 0x6C

	// streamTypeVisual is the visual stream type (0x04) shifted into the
	// DecoderConfigDescriptor byte with the reserved bit set.
	streamTypeVisual = 0x04<<2 | 0x01

	defaultQuality           = 90
	defaultFramesPerFragment = 10
)

// Options configures the muxer.
type Options struct {
	// Quality is the JPEG quality of each sample (1-100).
	Quality int
	// FramesPerFragment controls how often a moof/mdat pair is flushed.
	FramesPerFragment int
	Logger            ports.Logger
}

// Muxer implements ports.VideoWriter.
type Muxer struct {
	images ports.Renderer
	opts   Options
	logger ports.Logger

	mu         sync.Mutex
	file       *os.File
	out        *bufio.Writer
	width      int
	height     int
	timescale  uint32
	sampleDur  uint32
	frag       *mp4.Fragment
	seqNum     uint32
	decodeTime uint64
	frameCount int
}

// New creates a muxer. images encodes each frame to JPEG.
func New(images ports.Renderer, opts Options) *Muxer {
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = defaultQuality
	}
	if opts.FramesPerFragment <= 0 {
		opts.FramesPerFragment = defaultFramesPerFragment
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNoop()
	}
	return &Muxer{
		images: images,
		opts:   opts,
		logger: opts.Logger.WithComponent("writer"),
	}
}

// Open creates the file and writes the ftyp and moov boxes.
func (m *Muxer) Open(path string, width, height int, fps float64, codec string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.file != nil {
		return fmt.Errorf("%w: already open", ports.ErrWriterOpen)
	}
	if codec != ports.CodecMP4V {
		return fmt.Errorf("%w: unsupported codec %q", ports.ErrWriterOpen, codec)
	}
	if width <= 0 || height <= 0 || width > 0xFFFF || height > 0xFFFF || fps <= 0 {
		return fmt.Errorf("%w: invalid geometry %dx%d at %g fps", ports.ErrWriterOpen, width, height, fps)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ports.ErrWriterOpen, err)
	}

	m.file = f
	m.out = bufio.NewWriter(f)
	m.width = width
	m.height = height
	m.timescale = uint32(fps * 1000)
	m.sampleDur = uint32(float64(m.timescale) / fps)
	m.seqNum = 0
	m.decodeTime = 0
	m.frameCount = 0
	m.frag = nil

	if err := m.writeHeader(); err != nil {
		m.abort()
		return fmt.Errorf("%w: %w", ports.ErrWriterOpen, err)
	}
	m.logger.Debug("Writing %dx%d JPEG samples to %s", width, height, path)
	return nil
}

func (m *Muxer) writeHeader() error {
	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(m.timescale, "video", "und")
	trak := init.Moov.Trak

	esds := mp4.CreateEsdsBox(nil)
	esds.DecConfigDescriptor.ObjectType = ObjectTypeJPEG
	esds.DecConfigDescriptor.StreamType = streamTypeVisual

	entry := mp4.CreateVisualSampleEntryBox(ports.CodecMP4V, uint16(m.width), uint16(m.height), esds)
	trak.Mdia.Minf.Stbl.Stsd.AddChild(entry)
	trak.Tkhd.Width = mp4.Fixed32(m.width << 16)
	trak.Tkhd.Height = mp4.Fixed32(m.height << 16)

	ftyp := mp4.NewFtyp("isom", 0x200, []string{"isom", "iso2", "mp41"})
	if err := ftyp.Encode(m.out); err != nil {
		return fmt.Errorf("encode ftyp: %w", err)
	}
	if err := init.Moov.Encode(m.out); err != nil {
		return fmt.Errorf("encode moov: %w", err)
	}
	return nil
}

// WriteFrame appends one frame as a JPEG sample.
func (m *Muxer) WriteFrame(img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.file == nil {
		return ports.ErrWriterNotOpen
	}
	if b := img.Bounds(); b.Dx() != m.width || b.Dy() != m.height {
		return fmt.Errorf("%w: got %dx%d, want %dx%d", ports.ErrFrameSize, b.Dx(), b.Dy(), m.width, m.height)
	}

	data, err := m.images.EncodeImage(img, ports.FormatJPEG, m.opts.Quality)
	if err != nil {
		return fmt.Errorf("encode frame %d: %w", m.frameCount, err)
	}

	if m.frag == nil {
		m.seqNum++
		frag, err := mp4.CreateFragment(m.seqNum, 1)
		if err != nil {
			return fmt.Errorf("create fragment: %w", err)
		}
		m.frag = frag
	}
	m.frag.AddFullSample(mp4.FullSample{
		Sample: mp4.Sample{
			Flags: mp4.SyncSampleFlags,
			Size:  uint32(len(data)),
			Dur:   m.sampleDur,
		},
		DecodeTime: m.decodeTime,
		Data:       data,
	})
	m.decodeTime += uint64(m.sampleDur)
	m.frameCount++

	if m.frameCount%m.opts.FramesPerFragment == 0 {
		return m.flush()
	}
	return nil
}

func (m *Muxer) flush() error {
	if m.frag == nil {
		return nil
	}
	frag := m.frag
	m.frag = nil
	if err := frag.Encode(m.out); err != nil {
		return fmt.Errorf("encode fragment %d: %w", m.seqNum, err)
	}
	return nil
}

// Close flushes pending samples and closes the file.
func (m *Muxer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.file == nil {
		return ports.ErrWriterNotOpen
	}
	err := m.flush()
	if ferr := m.out.Flush(); err == nil {
		err = ferr
	}
	if cerr := m.file.Close(); err == nil {
		err = cerr
	}
	m.file = nil
	m.out = nil
	if err != nil {
		return err
	}
	m.logger.Debug("Wrote %d frames in %d fragments", m.frameCount, m.seqNum)
	return nil
}

func (m *Muxer) abort() {
	if m.file != nil {
		name := m.file.Name()
		m.file.Close()
		os.Remove(name)
		m.file = nil
		m.out = nil
	}
}

// FrameCount returns the number of frames accepted since Open.
func (m *Muxer) FrameCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frameCount
}

var _ ports.VideoWriter = (*Muxer)(nil)
