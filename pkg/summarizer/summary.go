// Package summarizer provides summary generation for conversion results.
package summarizer

import "time"

// Summary contains all data collected during one conversion.
type Summary struct {
	// Metadata
	GeneratedAt time.Time

	// Input bag and topic
	Source SourceInfo

	// Record counters
	Records RecordInfo

	// Header stamps of the first and last written frame
	Stamps StampInfo

	// Video output details
	Video VideoInfo
}

// SourceInfo describes the bag that was read.
type SourceInfo struct {
	BagPath   string
	Topic     string
	TopicType string
	Topics    []TopicEntry
}

// TopicEntry is one row of the bag catalog.
type TopicEntry struct {
	Name         string
	Type         string
	MessageCount int
}

// RecordInfo contains the per-record counters.
type RecordInfo struct {
	Read           int
	OnTopic        int
	FramesWritten  int
	DecodeFailures int
	SizeMismatches int
}

// StampInfo contains the stamp range of the written frames.
type StampInfo struct {
	First time.Time
	Last  time.Time
}

// Span returns the time between the first and last frame.
func (s StampInfo) Span() time.Duration {
	if s.First.IsZero() || s.Last.IsZero() {
		return 0
	}
	return s.Last.Sub(s.First)
}

// VideoInfo contains information about the output video.
type VideoInfo struct {
	Path         string
	Codec        string
	Backend      string
	FallbackUsed bool
	Width        int
	Height       int
	FPS          float64
	FrameCount   int
	Duration     time.Duration
	FileSize     int64
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithSource sets the bag path and the converted topic.
func (b *Builder) WithSource(bagPath, topic, topicType string) *Builder {
	b.summary.Source.BagPath = bagPath
	b.summary.Source.Topic = topic
	b.summary.Source.TopicType = topicType
	return b
}

// WithTopics sets the bag catalog.
func (b *Builder) WithTopics(topics []TopicEntry) *Builder {
	b.summary.Source.Topics = topics
	return b
}

// WithRecords sets the record counters.
func (b *Builder) WithRecords(records RecordInfo) *Builder {
	b.summary.Records = records
	return b
}

// WithStamps sets the stamp range.
func (b *Builder) WithStamps(first, last time.Time) *Builder {
	b.summary.Stamps = StampInfo{First: first, Last: last}
	return b
}

// WithVideo sets video output information.
func (b *Builder) WithVideo(video VideoInfo) *Builder {
	b.summary.Video = video
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
