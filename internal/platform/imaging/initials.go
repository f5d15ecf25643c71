package imaging

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"image/color"
	"os"
	"strings"
	"unicode"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
)

// LoadFontFace parses a TTF file at the given point size.
func LoadFontFace(fontPath string, size float64) (font.Face, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	parsed, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	return truetype.NewFace(parsed, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}

// InitialsBadge renders a round badge with up to two initials of name.
// face may be nil, in which case gg's built-in bitmap face is used.
func InitialsBadge(name string, bg color.Color, size int, face font.Face) ([]byte, error) {
	dc := gg.NewContext(size, size)
	dc.DrawCircle(float64(size)/2, float64(size)/2, float64(size)/2)
	dc.Clip()
	dc.SetColor(bg)
	dc.DrawRectangle(0, 0, float64(size), float64(size))
	dc.Fill()

	if face != nil {
		dc.SetFontFace(face)
	}
	dc.SetColor(textColorFor(bg))
	dc.DrawStringAnchored(Initials(name), float64(size)/2, float64(size)/2, 0.5, 0.35)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Initials picks the first letter of the first two words.
func Initials(name string) string {
	out := []rune{}
	for _, w := range strings.Fields(name) {
		for _, r := range w {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				out = append(out, unicode.ToUpper(r))
				break
			}
		}
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return string(out)
}

// ParseHexColor accepts #RGB or #RRGGBB with or without the leading hash.
func ParseHexColor(s string) (color.NRGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.NRGBA{}, fmt.Errorf("expected 6 hex chars")
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex: %w", err)
	}
	return color.NRGBA{R: raw[0], G: raw[1], B: raw[2], A: 0xff}, nil
}

func textColorFor(bg color.Color) color.Color {
	r, g, b, _ := bg.RGBA()
	// perceived luminance on 16-bit channels
	lum := (299*r + 587*g + 114*b) / 1000
	if lum > 0x9999 {
		return color.Black
	}
	return color.White
}
