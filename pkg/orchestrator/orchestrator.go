// Package orchestrator drives a bag-to-video conversion.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/user/bag2mp4/pkg/imageconv"
	"github.com/user/bag2mp4/pkg/pipeline"
	"github.com/user/bag2mp4/pkg/ports"
)

var (
	// ErrTopicNotFound is returned when the requested topic is not in the bag catalog.
	ErrTopicNotFound = errors.New("topic not found in the bag file")

	// ErrNoFrames is returned when no frame of the topic could be decoded.
	ErrNoFrames = errors.New("no frames written")
)

// Config contains all configuration for the orchestrator.
type Config struct {
	// Input
	BagPath string
	Topic   string

	// Output
	OutputPath string
	FPS        float64
	Codec      string

	// Overlay enables the annotate stage.
	Overlay bool

	// Backend names the video writer in the run result.
	Backend string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		FPS:   10,
		Codec: ports.CodecMP4V,
	}
}

// Orchestrator coordinates the conversion of one topic into one video.
type Orchestrator struct {
	bags          ports.BagOpener
	decodeStage   pipeline.Stage[pipeline.DecodeInput, pipeline.DecodeResult]
	annotateStage pipeline.Stage[pipeline.AnnotateInput, pipeline.AnnotateResult]
	writer        ports.VideoWriter
	fs            ports.FileSystem
	sink          ports.DebugSink
	logger        ports.Logger
}

// New creates a new Orchestrator. annotateStage is only used when
// Config.Overlay is set and may be nil otherwise.
func New(
	bags ports.BagOpener,
	decodeStage pipeline.Stage[pipeline.DecodeInput, pipeline.DecodeResult],
	annotateStage pipeline.Stage[pipeline.AnnotateInput, pipeline.AnnotateResult],
	writer ports.VideoWriter,
	fs ports.FileSystem,
	sink ports.DebugSink,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		bags:          bags,
		decodeStage:   decodeStage,
		annotateStage: annotateStage,
		writer:        writer,
		fs:            fs,
		sink:          sink,
		logger:        logger.WithComponent("orchestrator"),
	}
}

// sinkState is either sinkUnopened or sinkOpen.
type sinkState interface {
	isSinkState()
}

type sinkUnopened struct{}

type sinkOpen struct {
	writer ports.VideoWriter
	size   pipeline.Dimension
}

func (sinkUnopened) isSinkState() {}
func (sinkOpen) isSinkState() {}

// Run converts config.Topic of config.BagPath into config.OutputPath.
// The returned RunResult is filled in as far as the run got, also on error.
func (o *Orchestrator) Run(ctx context.Context, config Config) (result RunResult, err error) {
	if config.FPS <= 0 {
		config.FPS = DefaultConfig().FPS
	}
	if config.Codec == "" {
		config.Codec = ports.CodecMP4V
	}
	result = RunResult{
		BagPath:    config.BagPath,
		Topic:      config.Topic,
		OutputPath: config.OutputPath,
		FPS:        config.FPS,
		Codec:      config.Codec,
		Backend:    config.Backend,
	}
	defer func() { o.saveResult(&result, err) }()

	// Init
	reader, err := o.bags.Open(ctx, config.BagPath)
	if err != nil {
		o.logger.Error("Failed to open bag: %v", err)
		return result, fmt.Errorf("open bag: %w", err)
	}
	defer func() {
		if cerr := reader.Close(); cerr != nil {
			o.logger.Warn("Failed to close bag: %v", cerr)
		}
	}()

	catalog := reader.Topics()
	result.Catalog = catalog
	o.saveCatalog(catalog)

	topic, ok := findTopic(catalog, config.Topic)
	if !ok {
		return result, fmt.Errorf("%w: %s", ErrTopicNotFound, config.Topic)
	}
	result.TopicType = topic.Type
	o.logger.Info("Converting %s (%s, %d messages)", topic.Name, topic.Type, topic.MessageCount)

	// Streaming
	var state sinkState = sinkUnopened{}
	state, err = o.stream(ctx, config, topic, reader, state, &result)

	// Finalized
	open, opened := state.(sinkOpen)
	if !opened {
		if err != nil {
			return result, err
		}
		return result, ErrNoFrames
	}

	if cerr := open.writer.Close(); cerr != nil {
		o.logger.Error("Failed to finalize video: %v", cerr)
		return result, errors.Join(err, fmt.Errorf("finalize video: %w", cerr))
	}
	if err != nil {
		o.logger.Warn("Conversion stopped after %d frames: %v", result.FramesWritten, err)
		return result, err
	}

	result.VideoDuration = time.Duration(float64(result.FramesWritten) / config.FPS * float64(time.Second))
	o.logger.Info("Wrote %d frames to %s", result.FramesWritten, config.OutputPath)
	return result, nil
}

// stream pulls every record of the bag and writes the frames of topic.
// It returns the sink state reached, and an error only for fatal conditions
// or cancellation.
func (o *Orchestrator) stream(
	ctx context.Context,
	config Config,
	topic ports.TopicInfo,
	reader ports.BagReader,
	state sinkState,
	result *RunResult,
) (sinkState, error) {
	for reader.HasNext() {
		if err := ctx.Err(); err != nil {
			return state, fmt.Errorf("conversion interrupted: %w", err)
		}

		msg, err := reader.ReadNext()
		if errors.Is(err, ports.ErrEndOfBag) {
			break
		}
		var recErr *ports.RecordError
		if errors.As(err, &recErr) && recErr.Topic != topic.Name {
			result.RecordsRead++
			result.UnreadableRecords++
			o.logger.Warn("Skipping unreadable record %d: %v", result.RecordsRead-1, err)
			continue
		}
		if err != nil {
			o.logger.Error("Failed to read record %d: %v", result.RecordsRead, err)
			return state, fmt.Errorf("read record %d: %w", result.RecordsRead, err)
		}
		result.RecordsRead++

		if msg.Topic != topic.Name {
			continue
		}
		result.TopicRecords++

		decoded, err := o.decodeStage.Execute(ctx, pipeline.DecodeInput{
			Message:             msg,
			Type:                topic.Type,
			SerializationFormat: topic.SerializationFormat,
		})
		if err != nil {
			if cerr := ctx.Err(); cerr != nil {
				return state, fmt.Errorf("conversion interrupted: %w", cerr)
			}
			result.DecodeFailures++
			o.logger.Warn("Skipping record %d: %v", result.TopicRecords-1, err)
			continue
		}

		frame := decoded.Frame
		if config.Overlay && o.annotateStage != nil {
			annotated, err := o.annotateStage.Execute(ctx, pipeline.AnnotateInput{
				Frame:    frame,
				Index:    result.FramesWritten,
				Stamp:    decoded.Stamp,
				Recorded: msg.Timestamp,
				Topic:    topic.Name,
			})
			if err != nil {
				return state, fmt.Errorf("annotate stage: %w", err)
			}
			frame = annotated.Frame
		}

		state, err = o.write(config, state, frame)
		if errors.Is(err, ports.ErrFrameSize) {
			result.SizeMismatches++
			o.logger.Warn("Skipping frame %d: %v", result.TopicRecords-1, err)
			continue
		}
		if err != nil {
			return state, err
		}

		if result.FramesWritten == 0 {
			size := pipeline.DimensionOf(frame)
			result.FrameWidth, result.FrameHeight = size.Width, size.Height
			result.FirstStamp = decoded.Stamp
		}
		result.LastStamp = decoded.Stamp
		o.saveFrame(result.FramesWritten, frame)
		result.FramesWritten++
	}
	return state, nil
}

// write opens the sink on the first frame, then appends frame.
func (o *Orchestrator) write(config Config, state sinkState, frame *imageconv.BGR) (sinkState, error) {
	switch s := state.(type) {
	case sinkUnopened:
		size := pipeline.DimensionOf(frame)
		if dir := filepath.Dir(config.OutputPath); dir != "." && dir != "" {
			if err := o.fs.MkdirAll(dir); err != nil {
				return state, fmt.Errorf("create output directory: %w", err)
			}
		}
		if err := o.writer.Open(config.OutputPath, size.Width, size.Height, config.FPS, config.Codec); err != nil {
			o.logger.Error("Failed to open video writer: %v", err)
			return state, fmt.Errorf("open video: %w", err)
		}
		o.logger.Info("Opened %s at %dx%d, %g fps", config.OutputPath, size.Width, size.Height, config.FPS)

		open := sinkOpen{writer: o.writer, size: size}
		if err := open.writer.WriteFrame(frame); err != nil {
			return open, fmt.Errorf("write frame: %w", err)
		}
		return open, nil

	case sinkOpen:
		if got := pipeline.DimensionOf(frame); got != s.size {
			return s, fmt.Errorf("%w: got %dx%d, want %dx%d", ports.ErrFrameSize, got.Width, got.Height, s.size.Width, s.size.Height)
		}
		if err := s.writer.WriteFrame(frame); err != nil {
			return s, fmt.Errorf("write frame: %w", err)
		}
		return s, nil

	default:
		return state, fmt.Errorf("unknown sink state %T", state)
	}
}

func findTopic(catalog []ports.TopicInfo, name string) (ports.TopicInfo, bool) {
	for _, t := range catalog {
		if t.Name == name {
			return t, true
		}
	}
	return ports.TopicInfo{}, false
}

func (o *Orchestrator) saveCatalog(catalog []ports.TopicInfo) {
	if !o.sink.Enabled() {
		return
	}
	if data, err := json.MarshalIndent(catalog, "", "  "); err == nil {
		if err := o.sink.SaveCatalogJSON(data); err != nil {
			o.logger.Warn("Failed to save debug output: %v", err)
		}
	}
}

func (o *Orchestrator) saveFrame(index int, frame *imageconv.BGR) {
	if !o.sink.Enabled() {
		return
	}
	if err := o.sink.SaveFrame(index, frame); err != nil {
		o.logger.Warn("Failed to save debug output: %v", err)
	}
}

func (o *Orchestrator) saveResult(result *RunResult, err error) {
	if !o.sink.Enabled() {
		return
	}
	if err != nil {
		result.Error = err.Error()
	}
	if data, merr := json.MarshalIndent(result, "", "  "); merr == nil {
		if serr := o.sink.SaveResultJSON(data); serr != nil {
			o.logger.Warn("Failed to save debug output: %v", serr)
		}
	}
}

// RunResult contains the results of a conversion for summary generation.
type RunResult struct {
	// Input
	BagPath   string            `json:"bagPath"`
	Topic     string            `json:"topic"`
	TopicType string            `json:"topicType,omitempty"`
	Catalog   []ports.TopicInfo `json:"catalog,omitempty"`

	// Counters
	RecordsRead    int `json:"recordsRead"`
	TopicRecords   int `json:"topicRecords"`
	FramesWritten  int `json:"framesWritten"`
	DecodeFailures int `json:"decodeFailures"`
	SizeMismatches int `json:"sizeMismatches"`

	// Unreadable records outside the requested topic
	UnreadableRecords int `json:"unreadableRecords"`

	// Stamps of the first and last written frame
	FirstStamp time.Time `json:"firstStamp"`
	LastStamp  time.Time `json:"lastStamp"`

	// Video information
	OutputPath    string        `json:"outputPath"`
	FrameWidth    int           `json:"frameWidth"`
	FrameHeight   int           `json:"frameHeight"`
	FPS           float64       `json:"fps"`
	Codec         string        `json:"codec"`
	Backend       string        `json:"backend,omitempty"`
	VideoDuration time.Duration `json:"videoDuration"`

	Error string `json:"error,omitempty"`
}
