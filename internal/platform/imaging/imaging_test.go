package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func solidPNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestProductImageIsSquareJPEG(t *testing.T) {
	out, err := ProductImage(solidPNG(t, 1200, 800, color.RGBA{R: 200, A: 255}))
	if err != nil {
		t.Fatalf("ProductImage: %v", err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("DecodeConfig: %v", err)
	}
	if format != "jpeg" {
		t.Fatalf("format: want=jpeg got=%s", format)
	}
	if cfg.Width != 600 || cfg.Height != 600 {
		t.Fatalf("size: want=600x600 got=%dx%d", cfg.Width, cfg.Height)
	}
}

func TestLogoIsContainedOnTransparentCanvas(t *testing.T) {
	out, err := Logo(solidPNG(t, 400, 200, color.RGBA{B: 255, A: 255}))
	if err != nil {
		t.Fatalf("Logo: %v", err)
	}
	img, format, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if format != "png" {
		t.Fatalf("format: want=png got=%s", format)
	}
	if b := img.Bounds(); b.Dx() != 300 || b.Dy() != 300 {
		t.Fatalf("size: want=300x300 got=%dx%d", b.Dx(), b.Dy())
	}
	if _, _, _, a := img.At(5, 5).RGBA(); a != 0 {
		t.Fatalf("corner alpha: want=0 got=%d", a)
	}
	if _, _, _, a := img.At(150, 150).RGBA(); a == 0 {
		t.Fatalf("center alpha: want opaque")
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, _, err := Decode([]byte("not an image")); !errors.Is(err, ErrUnsupportedImage) {
		t.Fatalf("Decode: want ErrUnsupportedImage, got %v", err)
	}
	if _, _, err := Decode(nil); !errors.Is(err, ErrUnsupportedImage) {
		t.Fatalf("Decode(nil): want ErrUnsupportedImage, got %v", err)
	}
}

func TestInitials(t *testing.T) {
	cases := map[string]string{
		"Pizza House":        "PH",
		"  la  bella vita ":  "LB",
		"Café":               "C",
		"":                   "?",
		"123 Noodle Express": "1N",
	}
	for in, want := range cases {
		if got := Initials(in); got != want {
			t.Fatalf("Initials(%q): want=%q got=%q", in, want, got)
		}
	}
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#5cb85c")
	if err != nil {
		t.Fatalf("ParseHexColor: %v", err)
	}
	if c != (color.NRGBA{R: 0x5c, G: 0xb8, B: 0x5c, A: 0xff}) {
		t.Fatalf("color: got %+v", c)
	}
	if short, err := ParseHexColor("fc1"); err != nil || short.R != 0xff || short.G != 0xcc || short.B != 0x11 {
		t.Fatalf("short form: got %+v err=%v", short, err)
	}
	if _, err := ParseHexColor("#zzzzzz"); err == nil {
		t.Fatalf("ParseHexColor(#zzzzzz): expected error")
	}
}

func TestInitialsBadgeRendersPNG(t *testing.T) {
	out, err := InitialsBadge("Pizza House", color.NRGBA{R: 0x5c, G: 0xb8, B: 0x5c, A: 0xff}, 128, nil)
	if err != nil {
		t.Fatalf("InitialsBadge: %v", err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	if err != nil || format != "png" || cfg.Width != 128 {
		t.Fatalf("badge: format=%s cfg=%+v err=%v", format, cfg, err)
	}
}
