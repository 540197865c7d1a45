package genai

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"
)

// Seed hashes parts into a short hex string used to derive stable
// placeholder output.
func Seed(parts ...any) string {
	hasher := sha256.New()
	for _, part := range parts {
		hasher.Write([]byte(fmt.Sprintf("%v", part)))
		hasher.Write([]byte{'|'})
	}
	return hex.EncodeToString(hasher.Sum(nil))[:16]
}

// PlaceholderSize returns the offline placeholder dimensions for an aspect
// ratio: 800x1200 for portrait detail images, 600x600 otherwise.
func PlaceholderSize(aspect string) (int, int) {
	if aspect == "3:4" {
		return 800, 1200
	}
	return 600, 600
}

// RenderPlaceholder draws a striped PNG whose colors derive from seed.
func RenderPlaceholder(width, height int, seed string) []byte {
	if width <= 0 {
		width = 600
	}
	if height <= 0 {
		height = 600
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{colorFromSeed(seed, 0)}, image.Point{}, draw.Src)

	accent := colorFromSeed(seed, 1)
	stripe := max(24, height/12)
	for y := 0; y < height; y += stripe * 2 {
		band := image.Rect(0, y, width, min(height, y+stripe))
		draw.Draw(img, band, &image.Uniform{accent}, image.Point{}, draw.Over)
	}

	diagonal := colorFromSeed(seed, 2)
	step := max(16, width/32)
	for x := 0; x < width; x += step {
		for y := 0; y < height && x+y < width; y++ {
			img.Set(x+y, y, diagonal)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}

func colorFromSeed(seed string, shift int) color.RGBA {
	if len(seed) < 6 {
		seed = "a0b0c0d0e0f0"
	}
	doubled := seed + seed
	start := (shift * 6) % len(seed)
	segment := doubled[start : start+6]
	return color.RGBA{R: hexByte(segment[0:2]), G: hexByte(segment[2:4]), B: hexByte(segment[4:6]), A: 255}
}

func hexByte(s string) uint8 {
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0
	}
	return uint8(v)
}
