package ggrenderer

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/user/bag2mp4/pkg/imageconv"
	"github.com/user/bag2mp4/pkg/ports"
)

func TestRenderer_DrawLabel(t *testing.T) {
	r := New()

	src := imageconv.NewBGR(image.Rect(0, 0, 120, 40))
	style := ports.LabelStyle{
		TextColor:       color.White,
		BackgroundColor: color.RGBA{R: 200, A: 255},
		Padding:         2,
	}

	out := r.DrawLabel(src, "#1 0.000000000", style)

	if out.Bounds().Dx() != 120 || out.Bounds().Dy() != 40 {
		t.Fatalf("expected 120x40, got %v", out.Bounds())
	}
	// Box corner takes the background colour.
	if r, _, _, _ := out.At(0, 0).RGBA(); r>>8 != 200 {
		t.Errorf("expected red box at origin, got %v", out.At(0, 0))
	}
	// Bottom-right stays untouched.
	if r, g, b, _ := out.At(119, 39).RGBA(); r|g|b != 0 {
		t.Errorf("expected black pixel outside label, got %v", out.At(119, 39))
	}
	// Source frame is not modified.
	if src.Pix[0] != 0 || src.Pix[2] != 0 {
		t.Error("DrawLabel modified its input")
	}
}

func TestRenderer_EncodeJPEG(t *testing.T) {
	r := New()

	img := imageconv.NewBGR(image.Rect(0, 0, 50, 30))
	for i := 0; i < len(img.Pix); i += 3 {
		img.Pix[i+2] = 255
	}

	data, err := r.EncodeImage(img, ports.FormatJPEG, 80)
	if err != nil {
		t.Fatalf("EncodeImage failed: %v", err)
	}

	decoded, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 50 || b.Dy() != 30 {
		t.Errorf("expected 50x30, got %dx%d", b.Dx(), b.Dy())
	}
	if r, _, b, _ := decoded.At(25, 15).RGBA(); r>>8 < 200 || b>>8 > 60 {
		t.Errorf("expected red pixel, got %v", decoded.At(25, 15))
	}
}

func TestRenderer_EncodePNG(t *testing.T) {
	r := New()

	img := image.NewRGBA(image.Rect(5, 5, 15, 15))
	data, err := r.EncodeImage(img, ports.FormatPNG, 0)
	if err != nil {
		t.Fatalf("EncodeImage failed: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 10 || b.Dy() != 10 {
		t.Errorf("expected 10x10, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestRenderer_EncodeUnsupported(t *testing.T) {
	r := New()
	if _, err := r.EncodeImage(image.NewRGBA(image.Rect(0, 0, 1, 1)), ports.ImageFormat(99), 0); err == nil {
		t.Error("expected error for unsupported format")
	}
}
