package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaults_Valid(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bag2mp4.yaml")
	yml := `
topic: /camera/image_raw
backend: native
overlay: true
overlay_theme:
  text_color: "#ffcc00"
debug_frame_every: 5
`
	if err := os.WriteFile(path, []byte(yml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	want := Defaults()
	want.Topic = "/camera/image_raw"
	want.Backend = "native"
	want.Overlay = true
	want.OverlayTheme.TextColor = "#ffcc00"
	want.DebugFrameEvery = 5
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFromFile_Errors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "none.yaml")},
		{"malformed yaml", write("bad.yaml", "topic: [unclosed")},
		{"quality out of range", write("q.yaml", "quality: 0")},
		{"bad color", write("c.yaml", "overlay_theme:\n  background_color: red")},
		{"zero fragment", write("f.yaml", "frames_per_fragment: 0")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadFromFile(tt.path); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.Color
	}{
		{"#ff8000", color.RGBA{R: 255, G: 128, A: 255}},
		{"00FF7f", color.RGBA{G: 255, B: 127, A: 255}},
		{"", color.Black},
		{"#fff", color.Black},
		{"#gg0000", color.Black},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseColor(tt.in); got != tt.want {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestToOrchestratorConfig(t *testing.T) {
	cfg := Defaults()
	cfg.BagPath = "/bags/run"
	cfg.Topic = "/cam"
	cfg.OutputPath = "run.mp4"
	cfg.Overlay = true

	oc := cfg.ToOrchestratorConfig()
	if oc.BagPath != "/bags/run" || oc.Topic != "/cam" || oc.OutputPath != "run.mp4" || !oc.Overlay {
		t.Errorf("fields not carried over: %+v", oc)
	}
	if oc.FPS != 10 || oc.Codec != "mp4v" {
		t.Errorf("expected fixed 10 fps mp4v, got %g %s", oc.FPS, oc.Codec)
	}
	if oc.Backend != "auto" {
		t.Errorf("expected backend auto, got %s", oc.Backend)
	}
}

func TestLabelStyle(t *testing.T) {
	style := Defaults().LabelStyle()
	if style.TextColor != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("unexpected text color %v", style.TextColor)
	}
	if style.Padding != 4 {
		t.Errorf("expected padding 4, got %d", style.Padding)
	}
}
