package summarizer

import (
	"fmt"
	"strings"
	"time"
)

// MarkdownFormatter formats a Summary as a Markdown document.
type MarkdownFormatter struct {
	translate func(string) string
	version   string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator sets the function used to translate headings and labels.
func WithTranslator(fn func(string) string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.translate = fn
	}
}

// WithVersion adds the tool version to the footer.
func WithVersion(version string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.version = version
	}
}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{
		translate: func(s string) string { return s },
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	t := f.translate
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", t("Conversion Summary"))

	fmt.Fprintf(&sb, "## %s\n\n", t("Source"))
	f.tableHeader(&sb)
	f.row(&sb, "Bag", code(s.Source.BagPath))
	f.row(&sb, "Topic", code(s.Source.Topic))
	if s.Source.TopicType != "" {
		f.row(&sb, "Message Type", code(s.Source.TopicType))
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "## %s\n\n", t("Records"))
	f.tableHeader(&sb)
	f.row(&sb, "Records Read", fmt.Sprint(s.Records.Read))
	f.row(&sb, "Records on Topic", fmt.Sprint(s.Records.OnTopic))
	f.row(&sb, "Frames Written", fmt.Sprint(s.Records.FramesWritten))
	f.row(&sb, "Decode Failures", fmt.Sprint(s.Records.DecodeFailures))
	f.row(&sb, "Size Mismatches", fmt.Sprint(s.Records.SizeMismatches))
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "## %s\n\n", t("Recording Time"))
	f.tableHeader(&sb)
	f.row(&sb, "First Frame", f.stamp(s.Stamps.First))
	f.row(&sb, "Last Frame", f.stamp(s.Stamps.Last))
	if s.Stamps.First.IsZero() {
		f.row(&sb, "Span", t("N/A"))
	} else {
		f.row(&sb, "Span", formatDuration(s.Stamps.Span()))
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "## %s\n\n", t("Video"))
	f.tableHeader(&sb)
	f.row(&sb, "Output", code(s.Video.Path))
	f.row(&sb, "Codec", s.Video.Codec)
	if s.Video.Backend != "" {
		backend := s.Video.Backend
		if s.Video.FallbackUsed {
			backend += " (" + t("fallback") + ")"
		}
		f.row(&sb, "Backend", backend)
	}
	if s.Video.Width > 0 && s.Video.Height > 0 {
		f.row(&sb, "Frame Size", fmt.Sprintf("%dx%d", s.Video.Width, s.Video.Height))
	} else {
		f.row(&sb, "Frame Size", t("N/A"))
	}
	f.row(&sb, "Frame Rate", fmt.Sprintf("%g fps", s.Video.FPS))
	f.row(&sb, "Frames", fmt.Sprint(s.Video.FrameCount))
	f.row(&sb, "Duration", formatDuration(s.Video.Duration))
	if s.Video.FileSize > 0 {
		f.row(&sb, "File Size", formatBytes(s.Video.FileSize))
	}
	sb.WriteString("\n")

	if len(s.Source.Topics) > 0 {
		fmt.Fprintf(&sb, "## %s\n\n", t("Topics"))
		fmt.Fprintf(&sb, "| %s | %s | %s |\n", t("Topic"), t("Type"), t("Messages"))
		sb.WriteString("|-------|------|----------|\n")
		for _, topic := range s.Source.Topics {
			fmt.Fprintf(&sb, "| %s | %s | %d |\n", code(topic.Name), code(topic.Type), topic.MessageCount)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("---\n\n")
	generated := s.GeneratedAt.Format("2006-01-02 15:04:05")
	if f.version != "" {
		fmt.Fprintf(&sb, "*%s bag2mp4 %s, %s*\n", t("Generated by"), f.version, generated)
	} else {
		fmt.Fprintf(&sb, "*%s bag2mp4, %s*\n", t("Generated by"), generated)
	}

	return sb.String()
}

func (f *MarkdownFormatter) tableHeader(sb *strings.Builder) {
	fmt.Fprintf(sb, "| %s | %s |\n", f.translate("Item"), f.translate("Value"))
	sb.WriteString("|------|-------|\n")
}

func (f *MarkdownFormatter) row(sb *strings.Builder, label, value string) {
	fmt.Fprintf(sb, "| %s | %s |\n", f.translate(label), value)
}

func (f *MarkdownFormatter) stamp(ts time.Time) string {
	if ts.IsZero() {
		return f.translate("N/A")
	}
	return fmt.Sprintf("%d.%09d (%s)", ts.Unix(), ts.Nanosecond(), ts.UTC().Format(time.RFC3339Nano))
}

func code(s string) string {
	if s == "" {
		return ""
	}
	return "`" + s + "`"
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.3f s", d.Seconds())
}

func formatBytes(bytes int64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)

	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.2f GB", float64(bytes)/gb)
	case bytes >= mb:
		return fmt.Sprintf("%.2f MB", float64(bytes)/mb)
	case bytes >= kb:
		return fmt.Sprintf("%.2f KB", float64(bytes)/kb)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

var _ Formatter = (*MarkdownFormatter)(nil)
