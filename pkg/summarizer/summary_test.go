package summarizer

import (
	"testing"
	"time"
)

func TestNewSummary(t *testing.T) {
	before := time.Now()
	summary := NewSummary()
	after := time.Now()

	if summary.GeneratedAt.Before(before) || summary.GeneratedAt.After(after) {
		t.Errorf("GeneratedAt should be between %v and %v, got %v",
			before, after, summary.GeneratedAt)
	}
}

func TestBuilder_WithSource(t *testing.T) {
	summary := NewBuilder().
		WithSource("/bags/run1", "/camera/image_raw", "sensor_msgs/msg/Image").
		Build()

	if summary.Source.BagPath != "/bags/run1" {
		t.Errorf("expected bag path '/bags/run1', got '%s'", summary.Source.BagPath)
	}
	if summary.Source.Topic != "/camera/image_raw" {
		t.Errorf("expected topic '/camera/image_raw', got '%s'", summary.Source.Topic)
	}
	if summary.Source.TopicType != "sensor_msgs/msg/Image" {
		t.Errorf("expected type 'sensor_msgs/msg/Image', got '%s'", summary.Source.TopicType)
	}
}

func TestBuilder_WithTopics(t *testing.T) {
	topics := []TopicEntry{
		{Name: "/camera/image_raw", Type: "sensor_msgs/msg/Image", MessageCount: 30},
		{Name: "/tf", Type: "tf2_msgs/msg/TFMessage", MessageCount: 300},
	}
	summary := NewBuilder().
		WithSource("/bags/run1", "/camera/image_raw", "").
		WithTopics(topics).
		Build()

	if len(summary.Source.Topics) != 2 {
		t.Fatalf("expected 2 topics, got %d", len(summary.Source.Topics))
	}
	if summary.Source.BagPath != "/bags/run1" {
		t.Error("WithTopics must keep the source fields")
	}
}

func TestBuilder_WithRecords(t *testing.T) {
	summary := NewBuilder().
		WithRecords(RecordInfo{Read: 100, OnTopic: 40, FramesWritten: 38, DecodeFailures: 1, SizeMismatches: 1}).
		Build()

	if summary.Records.Read != 100 {
		t.Errorf("expected 100 records read, got %d", summary.Records.Read)
	}
	if summary.Records.FramesWritten != 38 {
		t.Errorf("expected 38 frames written, got %d", summary.Records.FramesWritten)
	}
}

func TestBuilder_WithStamps(t *testing.T) {
	first := time.Unix(1700000000, 0)
	last := first.Add(2500 * time.Millisecond)

	summary := NewBuilder().WithStamps(first, last).Build()

	if got := summary.Stamps.Span(); got != 2500*time.Millisecond {
		t.Errorf("expected span 2.5s, got %v", got)
	}
}

func TestStampInfo_SpanWithoutFrames(t *testing.T) {
	if got := (StampInfo{}).Span(); got != 0 {
		t.Errorf("expected zero span, got %v", got)
	}
}

func TestBuilder_Chaining(t *testing.T) {
	summary := NewBuilder().
		WithSource("/bags/run1", "/cam", "sensor_msgs/msg/CompressedImage").
		WithRecords(RecordInfo{Read: 10, OnTopic: 10, FramesWritten: 10}).
		WithVideo(VideoInfo{
			Path:       "out.mp4",
			Codec:      "mp4v",
			Backend:    "native",
			Width:      640,
			Height:     480,
			FPS:        10,
			FrameCount: 10,
			Duration:   time.Second,
		}).
		Build()

	if summary.Source.Topic != "/cam" {
		t.Error("Source not set correctly")
	}
	if summary.Records.OnTopic != 10 {
		t.Error("Records not set correctly")
	}
	if summary.Video.Width != 640 || summary.Video.Height != 480 {
		t.Error("Video not set correctly")
	}
}
