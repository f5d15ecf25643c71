package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// MaxUploadBytes bounds the raw upload accepted by the handlers.
	MaxUploadBytes = 8 << 20
	maxPixels      = 40_000_000
)

var ErrUnsupportedImage = errors.New("unsupported or corrupt image")

// Decode validates dimensions before decoding the full image.
func Decode(raw []byte) (image.Image, string, error) {
	if len(raw) == 0 {
		return nil, "", ErrUnsupportedImage
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > maxPixels {
		return nil, "", fmt.Errorf("%w: %dx%d exceeds limits", ErrUnsupportedImage, cfg.Width, cfg.Height)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	return img, format, nil
}

// Cover center-crops src to the target aspect ratio and scales it to w x h.
func Cover(src image.Image, w, h int) *image.RGBA {
	b := src.Bounds()
	sw, sh := b.Dx(), b.Dy()

	cropW, cropH := sw, sw*h/w
	if cropH > sh {
		cropH = sh
		cropW = sh * w / h
	}
	x0 := b.Min.X + (sw-cropW)/2
	y0 := b.Min.Y + (sh-cropH)/2
	cropRect := image.Rect(x0, y0, x0+cropW, y0+cropH)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, cropRect, draw.Src, nil)
	return dst
}

// Contain scales src to fit inside size x size and centers it on a
// transparent canvas.
func Contain(src image.Image, size int) image.Image {
	b := src.Bounds()
	sw, sh := b.Dx(), b.Dy()

	tw, th := size, size
	if sw >= sh {
		th = max(1, sh*size/sw)
	} else {
		tw = max(1, sw*size/sh)
	}
	scaled := image.NewNRGBA(image.Rect(0, 0, tw, th))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), src, b, draw.Over, nil)

	dc := gg.NewContext(size, size)
	dc.SetRGBA(0, 0, 0, 0)
	dc.Clear()
	dc.DrawImageAnchored(scaled, size/2, size/2, 0.5, 0.5)
	return dc.Image()
}

func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := gg.NewContextForImage(img).EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// ProductImage is the stored form of an uploaded product photo.
func ProductImage(raw []byte) ([]byte, error) {
	img, _, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	return EncodeJPEG(Cover(img, 600, 600), 80)
}

// Logo is the stored form of an uploaded shop logo.
func Logo(raw []byte) ([]byte, error) {
	img, _, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	return EncodePNG(Contain(img, 300))
}
