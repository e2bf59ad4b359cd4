// Package main provides the CLI entry point for bag2mp4.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/bag2mp4/pkg/adapters/bagsource"
	"github.com/user/bag2mp4/pkg/adapters/filesink"
	"github.com/user/bag2mp4/pkg/adapters/ggrenderer"
	"github.com/user/bag2mp4/pkg/adapters/logger"
	"github.com/user/bag2mp4/pkg/adapters/mp4probe"
	"github.com/user/bag2mp4/pkg/adapters/nullsink"
	"github.com/user/bag2mp4/pkg/adapters/osfilesystem"
	"github.com/user/bag2mp4/pkg/adapters/smartwriter"
	"github.com/user/bag2mp4/pkg/config"
	"github.com/user/bag2mp4/pkg/orchestrator"
	"github.com/user/bag2mp4/pkg/ports"
	"github.com/user/bag2mp4/pkg/rosbag2"
	"github.com/user/bag2mp4/pkg/stages/annotate"
	"github.com/user/bag2mp4/pkg/stages/decode"
	"github.com/user/bag2mp4/pkg/summarizer"
)

var version = "dev"

// Exit codes.
const (
	exitOK            = 0
	exitFatal         = 1
	exitTopicNotFound = 2
	exitNoFrames      = 3
)

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	app := newApp(stdout, stderr)

	err := app.Run(args)
	if err == nil {
		return exitOK
	}

	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		if msg := exitErr.Error(); msg != "" {
			fmt.Fprintln(stderr, msg)
		}
		return exitErr.ExitCode()
	}
	fmt.Fprintln(stderr, err)
	return exitFatal
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "bag2mp4",
		Usage:     l10n.T("Convert an image topic of a ROS 2 bag into an MP4 video"),
		UsageText: "bag2mp4 [flags] <bag_path> <image_topic> <output_video>",
		Version:   version,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags:     convertFlags(),
		Action:    convertAction,
		Commands: []*cli.Command{
			{
				Name:      "topics",
				Usage:     l10n.T("List the topics of a bag"),
				ArgsUsage: "<bag_path>",
				Action:    topicsAction,
			},
			{
				Name:  "version",
				Usage: l10n.T("Show version information"),
				Action: func(c *cli.Context) error {
					fmt.Fprintln(c.App.Writer, l10n.F("bag2mp4 version %s", version))
					return nil
				},
			},
		},
		// Exit codes are returned from run instead of calling os.Exit.
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

func convertFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "config",
			Aliases:  []string{"c"},
			Usage:    l10n.T("YAML configuration file"),
			Category: l10n.T("Configuration"),
		},
		&cli.StringFlag{
			Name:     "backend",
			Aliases:  []string{"b"},
			Value:    "auto",
			Usage:    l10n.T("Video writer backend (auto, ffmpeg, native)"),
			Category: l10n.T("Video"),
		},
		&cli.StringFlag{
			Name:     "ffmpeg-path",
			Usage:    l10n.T("Path to the ffmpeg executable (falls back to FFMPEG_PATH env, then PATH)"),
			Category: l10n.T("Video"),
		},
		&cli.IntFlag{
			Name:     "quality",
			Aliases:  []string{"q"},
			Value:    config.Defaults().Quality,
			Usage:    l10n.T("JPEG quality of the native backend (1-100)"),
			Category: l10n.T("Video"),
		},
		&cli.BoolFlag{
			Name:     "overlay",
			Usage:    l10n.T("Draw the frame number and header stamp on each frame"),
			Category: l10n.T("Video"),
		},
		&cli.StringFlag{
			Name:     "summary",
			Usage:    l10n.T("Output conversion summary to file (Markdown format)"),
			Category: l10n.T("Output"),
		},
		&cli.BoolFlag{
			Name:     "debug",
			Aliases:  []string{"d"},
			Usage:    l10n.T("Enable debug output"),
			Category: l10n.T("Debug"),
		},
		&cli.StringFlag{
			Name:     "debug-dir",
			Value:    config.Defaults().DebugDir,
			Usage:    l10n.T("Directory for debug output"),
			Category: l10n.T("Debug"),
		},
		&cli.StringFlag{
			Name:     "log-level",
			Aliases:  []string{"l"},
			Value:    "info",
			Usage:    l10n.T("Log level (debug, info, warn, error)"),
			Category: l10n.T("Logging"),
		},
		&cli.BoolFlag{
			Name:     "quiet",
			Aliases:  []string{"Q"},
			Usage:    l10n.T("Suppress all log output"),
			Category: l10n.T("Logging"),
		},
	}
}

// loadConfig merges defaults, the --config file and explicitly set flags.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	if c.IsSet("backend") {
		cfg.Backend = c.String("backend")
	}
	if c.IsSet("ffmpeg-path") {
		cfg.FFmpegPath = c.String("ffmpeg-path")
	}
	if c.IsSet("quality") {
		cfg.Quality = c.Int("quality")
	}
	if c.IsSet("overlay") {
		cfg.Overlay = c.Bool("overlay")
	}
	if c.IsSet("summary") {
		cfg.SummaryPath = c.String("summary")
	}
	if c.IsSet("debug") {
		cfg.Debug = c.Bool("debug")
	}
	if c.IsSet("debug-dir") {
		cfg.DebugDir = c.String("debug-dir")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.Bool("quiet") {
		cfg.LogLevel = ports.LevelQuiet.String()
	}

	if c.NArg() >= 3 {
		cfg.BagPath = c.Args().Get(0)
		cfg.Topic = c.Args().Get(1)
		cfg.OutputPath = c.Args().Get(2)
	}
	return cfg, cfg.Validate()
}

func newLogger(level string, c *cli.Context) ports.Logger {
	lvl := ports.ParseLogLevel(level)
	if lvl == ports.LevelQuiet {
		return logger.NewNoop()
	}
	if c.App.Writer == os.Stdout && c.App.ErrWriter == os.Stderr {
		return logger.NewConsole(lvl)
	}
	return logger.NewConsoleWriters(lvl, c.App.Writer, c.App.ErrWriter)
}

// signalContext cancels on SIGINT or SIGTERM.
func signalContext(log ports.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Interrupted, shutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

func convertAction(c *cli.Context) error {
	if c.NArg() != 3 {
		cli.ShowAppHelp(c)
		return cli.Exit(l10n.T("Three arguments are required: <bag_path> <image_topic> <output_video>"), exitFatal)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err, exitFatal)
	}
	log := newLogger(cfg.LogLevel, c)

	ctx, cancel := signalContext(log)
	defer cancel()

	session := rosbag2.NewSession(rosbag2.WithLogger(log))
	defer func() {
		if err := session.Close(); err != nil {
			log.Warn("Failed to close bag: %v", err)
		}
	}()

	fs := osfilesystem.New()
	renderer := ggrenderer.New()

	backend, err := smartwriter.ParseBackend(cfg.Backend)
	if err != nil {
		return cli.Exit(err, exitFatal)
	}
	writer, writerInfo, err := smartwriter.New(backend, smartwriter.Options{
		FFmpegPath:        cfg.FFmpegPath,
		Renderer:          renderer,
		JPEGQuality:       cfg.Quality,
		FramesPerFragment: cfg.FramesPerFragment,
		Logger:            log,
	})
	if err != nil {
		return cli.Exit(err, exitFatal)
	}
	log.Debug("Using %s video writer", writerInfo.Backend)

	var sink ports.DebugSink
	if cfg.Debug {
		if err := fs.MkdirAll(cfg.DebugDir); err != nil {
			return cli.Exit(fmt.Errorf("create debug directory: %w", err), exitFatal)
		}
		sink = filesink.New(cfg.DebugDir, fs, renderer, cfg.DebugFrameEvery)
		log.Info("Debug output enabled: %s", cfg.DebugDir)
	} else {
		sink = nullsink.New()
	}

	orch := orchestrator.New(
		bagsource.New(session),
		decode.NewStage(log),
		annotate.NewStage(renderer, cfg.LabelStyle(), log),
		writer,
		fs,
		sink,
		log,
	)

	orchConfig := cfg.ToOrchestratorConfig()
	orchConfig.Backend = string(writerInfo.Backend)

	result, runErr := orch.Run(ctx, orchConfig)

	if cfg.SummaryPath != "" {
		summary := buildSummary(result, writerInfo, runErr == nil)
		w := summarizer.NewWriter(summarizer.NewMarkdownFormatter(
			summarizer.WithTranslator(l10n.T),
			summarizer.WithVersion(version),
		), fs)
		if err := w.Write(cfg.SummaryPath, summary); err != nil {
			log.Warn("Failed to write summary: %s", err)
		} else {
			log.Info("Summary written to %s", cfg.SummaryPath)
		}
	}

	return exitError(c.App.Writer, cfg, runErr)
}

// exitError prints the user-facing outcome and maps err to an exit code.
func exitError(stdout io.Writer, cfg config.Config, err error) error {
	switch {
	case err == nil:
		fmt.Fprintln(stdout, l10n.F("Video saved to %s", cfg.OutputPath))
		return nil
	case errors.Is(err, orchestrator.ErrTopicNotFound):
		fmt.Fprintln(stdout, l10n.F("Topic '%s' not found in the bag file.", cfg.Topic))
		return cli.Exit("", exitTopicNotFound)
	case errors.Is(err, orchestrator.ErrNoFrames):
		fmt.Fprintln(stdout, l10n.T("No frames written; video was not created."))
		return cli.Exit("", exitNoFrames)
	default:
		return cli.Exit(err, exitFatal)
	}
}

func buildSummary(result orchestrator.RunResult, info smartwriter.Info, written bool) *summarizer.Summary {
	topics := make([]summarizer.TopicEntry, 0, len(result.Catalog))
	for _, t := range result.Catalog {
		topics = append(topics, summarizer.TopicEntry{Name: t.Name, Type: t.Type, MessageCount: t.MessageCount})
	}

	video := summarizer.VideoInfo{
		Path:         result.OutputPath,
		Codec:        result.Codec,
		Backend:      string(info.Backend),
		FallbackUsed: info.FallbackUsed,
		Width:        result.FrameWidth,
		Height:       result.FrameHeight,
		FPS:          result.FPS,
		FrameCount:   result.FramesWritten,
		Duration:     result.VideoDuration,
	}
	if written {
		if probed, err := mp4probe.ProbeFile(result.OutputPath); err == nil {
			if probed.Codec != "" {
				video.Codec = probed.Codec
			}
			video.FrameCount = probed.Samples
			video.Duration = probed.Duration
		}
		if st, err := os.Stat(result.OutputPath); err == nil {
			video.FileSize = st.Size()
		}
	}

	return summarizer.NewBuilder().
		WithSource(result.BagPath, result.Topic, result.TopicType).
		WithTopics(topics).
		WithRecords(summarizer.RecordInfo{
			Read:           result.RecordsRead,
			OnTopic:        result.TopicRecords,
			FramesWritten:  result.FramesWritten,
			DecodeFailures: result.DecodeFailures,
			SizeMismatches: result.SizeMismatches,
		}).
		WithStamps(result.FirstStamp, result.LastStamp).
		WithVideo(video).
		Build()
}

func topicsAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit(l10n.T("A bag path argument is required"), exitFatal)
	}

	session := rosbag2.NewSession()
	defer session.Close()

	reader, err := bagsource.New(session).Open(c.Context, c.Args().First())
	if err != nil {
		return cli.Exit(err, exitFatal)
	}
	defer reader.Close()

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TOPIC\tTYPE\tCOUNT\tFORMAT")
	for _, t := range reader.Topics() {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", t.Name, t.Type, t.MessageCount, t.SerializationFormat)
	}
	return tw.Flush()
}
