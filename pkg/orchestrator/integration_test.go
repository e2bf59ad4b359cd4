package orchestrator_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/user/bag2mp4/pkg/adapters/bagsource"
	"github.com/user/bag2mp4/pkg/adapters/ggrenderer"
	"github.com/user/bag2mp4/pkg/adapters/logger"
	"github.com/user/bag2mp4/pkg/adapters/mp4muxer"
	"github.com/user/bag2mp4/pkg/adapters/mp4probe"
	"github.com/user/bag2mp4/pkg/adapters/nullsink"
	"github.com/user/bag2mp4/pkg/adapters/osfilesystem"
	"github.com/user/bag2mp4/pkg/msgs"
	"github.com/user/bag2mp4/pkg/orchestrator"
	"github.com/user/bag2mp4/pkg/ports"
	"github.com/user/bag2mp4/pkg/rosbag2"
	"github.com/user/bag2mp4/pkg/rosbag2/bagtest"
	"github.com/user/bag2mp4/pkg/stages/annotate"
	"github.com/user/bag2mp4/pkg/stages/decode"
)

func writeBag(t *testing.T, dir string, frames int, opts ...bagtest.Option) {
	t.Helper()
	w, err := bagtest.Create(dir, opts...)
	if err != nil {
		t.Fatalf("create bag: %v", err)
	}
	if err := w.AddTopic("/camera/image_raw", msgs.TypeImage); err != nil {
		t.Fatal(err)
	}
	if err := w.AddTopic("/tf", "tf2_msgs/msg/TFMessage"); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < frames; i++ {
		stamp := bagtest.Stamp(i)
		if err := w.Write("/camera/image_raw", stamp, bagtest.BGRImage(stamp, 32, 24, byte(i*20))); err != nil {
			t.Fatal(err)
		}
		if err := w.Write("/tf", stamp.Add(time.Millisecond), []byte{0, 1, 0, 0}); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close bag: %v", err)
	}
}

func newOrchestrator(session *rosbag2.Session) *orchestrator.Orchestrator {
	log := logger.NewNoop()
	renderer := ggrenderer.New()
	return orchestrator.New(
		bagsource.New(session),
		decode.NewStage(log),
		annotate.NewStage(renderer, ports.DefaultLabelStyle(), log),
		mp4muxer.New(renderer, mp4muxer.Options{Logger: log}),
		osfilesystem.New(),
		nullsink.New(),
		log,
	)
}

func TestIntegration_BagToMP4(t *testing.T) {
	tests := []struct {
		name string
		opts []bagtest.Option
	}{
		{name: "plain"},
		{name: "zstd file", opts: []bagtest.Option{bagtest.WithCompression(rosbag2.CompressionModeFile)}},
		{name: "zstd message", opts: []bagtest.Option{bagtest.WithCompression(rosbag2.CompressionModeMessage)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmp := t.TempDir()
			bagDir := filepath.Join(tmp, "bag")
			writeBag(t, bagDir, 12, tt.opts...)

			session := rosbag2.NewSession(rosbag2.WithTempDir(tmp))
			defer session.Close()

			config := orchestrator.DefaultConfig()
			config.BagPath = bagDir
			config.Topic = "/camera/image_raw"
			config.OutputPath = filepath.Join(tmp, "videos", "out.mp4")
			config.Overlay = true

			result, err := newOrchestrator(session).Run(context.Background(), config)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if result.RecordsRead != 24 || result.FramesWritten != 12 {
				t.Errorf("expected 24 records and 12 frames, got %d and %d", result.RecordsRead, result.FramesWritten)
			}

			info, err := mp4probe.ProbeFile(config.OutputPath)
			if err != nil {
				t.Fatalf("probe: %v", err)
			}
			if info.Codec != ports.CodecMP4V {
				t.Errorf("expected mp4v, got %s", info.Codec)
			}
			if info.Width != 32 || info.Height != 24 {
				t.Errorf("expected 32x24, got %dx%d", info.Width, info.Height)
			}
			if info.Samples != 12 {
				t.Errorf("expected 12 samples, got %d", info.Samples)
			}
			if fps := info.FPS(); fps < 9.99 || fps > 10.01 {
				t.Errorf("expected 10 fps, got %g", fps)
			}
		})
	}
}

func TestIntegration_TopicNotFoundCreatesNoFile(t *testing.T) {
	tmp := t.TempDir()
	bagDir := filepath.Join(tmp, "bag")
	writeBag(t, bagDir, 3)

	session := rosbag2.NewSession()
	defer session.Close()

	config := orchestrator.DefaultConfig()
	config.BagPath = bagDir
	config.Topic = "/camera/missing"
	config.OutputPath = filepath.Join(tmp, "out.mp4")

	_, err := newOrchestrator(session).Run(context.Background(), config)
	if !errors.Is(err, orchestrator.ErrTopicNotFound) {
		t.Fatalf("expected ErrTopicNotFound, got %v", err)
	}
	if _, err := os.Stat(config.OutputPath); !os.IsNotExist(err) {
		t.Errorf("expected no output file, stat returned %v", err)
	}
}

func TestIntegration_MissingBag(t *testing.T) {
	session := rosbag2.NewSession()
	defer session.Close()

	config := orchestrator.DefaultConfig()
	config.BagPath = filepath.Join(t.TempDir(), "nope")
	config.Topic = "/camera/image_raw"
	config.OutputPath = filepath.Join(t.TempDir(), "out.mp4")

	_, err := newOrchestrator(session).Run(context.Background(), config)
	if !errors.Is(err, rosbag2.ErrOpen) {
		t.Fatalf("expected rosbag2.ErrOpen, got %v", err)
	}
}

func TestIntegration_VGAThreeFrames(t *testing.T) {
	tmp := t.TempDir()
	bagDir := filepath.Join(tmp, "bag")

	w, err := bagtest.Create(bagDir)
	if err != nil {
		t.Fatalf("create bag: %v", err)
	}
	if err := w.AddTopic("/camera/image_raw", msgs.TypeImage); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := w.Write("/camera/image_raw", bagtest.Stamp(i), bagtest.BGRImage(bagtest.Stamp(i), 640, 480, byte(i))); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close bag: %v", err)
	}

	session := rosbag2.NewSession()
	defer session.Close()

	config := orchestrator.DefaultConfig()
	config.BagPath = bagDir
	config.Topic = "/camera/image_raw"
	config.OutputPath = filepath.Join(tmp, "vga.mp4")

	result, err := newOrchestrator(session).Run(context.Background(), config)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.FramesWritten != 3 || result.DecodeFailures != 0 {
		t.Errorf("expected 3 frames and no decode failures, got %d and %d", result.FramesWritten, result.DecodeFailures)
	}

	info, err := mp4probe.ProbeFile(config.OutputPath)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if info.Codec != ports.CodecMP4V {
		t.Errorf("expected mp4v, got %q", info.Codec)
	}
	if info.Width != 640 || info.Height != 480 {
		t.Errorf("expected 640x480, got %dx%d", info.Width, info.Height)
	}
	if info.Samples != 3 {
		t.Errorf("expected 3 samples, got %d", info.Samples)
	}
	if fps := info.FPS(); fps < 9.99 || fps > 10.01 {
		t.Errorf("expected 10 fps, got %g", fps)
	}
}

func TestIntegration_UnreadableRecordsOnOtherTopics(t *testing.T) {
	tmp := t.TempDir()
	bagDir := filepath.Join(tmp, "bag")

	w, err := bagtest.Create(bagDir, bagtest.WithCompression(rosbag2.CompressionModeMessage))
	if err != nil {
		t.Fatalf("create bag: %v", err)
	}
	if err := w.AddTopic("/camera/image_raw", msgs.TypeImage); err != nil {
		t.Fatal(err)
	}
	if err := w.AddTopic("/tf", "tf2_msgs/msg/TFMessage"); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := w.Write("/camera/image_raw", bagtest.Stamp(i), bagtest.BGRImage(bagtest.Stamp(i), 16, 12, byte(i))); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.WriteRaw("/tf", bagtest.Stamp(1), []byte("not zstd")); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteOrphan(bagtest.Stamp(2), []byte("orphan")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close bag: %v", err)
	}

	session := rosbag2.NewSession()
	defer session.Close()

	config := orchestrator.DefaultConfig()
	config.BagPath = bagDir
	config.Topic = "/camera/image_raw"
	config.OutputPath = filepath.Join(tmp, "out.mp4")

	result, err := newOrchestrator(session).Run(context.Background(), config)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.FramesWritten != 3 || result.UnreadableRecords != 2 {
		t.Errorf("expected 3 frames and 2 unreadable records, got %d and %d", result.FramesWritten, result.UnreadableRecords)
	}
}

func TestIntegration_UnreadableRecordOnRequestedTopic(t *testing.T) {
	tmp := t.TempDir()
	bagDir := filepath.Join(tmp, "bag")

	w, err := bagtest.Create(bagDir, bagtest.WithCompression(rosbag2.CompressionModeMessage))
	if err != nil {
		t.Fatalf("create bag: %v", err)
	}
	if err := w.AddTopic("/camera/image_raw", msgs.TypeImage); err != nil {
		t.Fatal(err)
	}
	if err := w.Write("/camera/image_raw", bagtest.Stamp(0), bagtest.BGRImage(bagtest.Stamp(0), 16, 12, 0)); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteRaw("/camera/image_raw", bagtest.Stamp(1), []byte("not zstd")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close bag: %v", err)
	}

	session := rosbag2.NewSession()
	defer session.Close()

	config := orchestrator.DefaultConfig()
	config.BagPath = bagDir
	config.Topic = "/camera/image_raw"
	config.OutputPath = filepath.Join(tmp, "out.mp4")

	_, err = newOrchestrator(session).Run(context.Background(), config)
	if !errors.Is(err, rosbag2.ErrRecord) {
		t.Fatalf("expected rosbag2.ErrRecord, got %v", err)
	}
}
