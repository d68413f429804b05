package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func gradient(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / width), G: uint8(y * 255 / height), B: 128, A: 255})
		}
	}
	return img
}

// GeneratePNG encodes a gradient of the given size as PNG.
func GeneratePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, gradient(width, height)); err != nil {
		t.Fatalf("png encode failed: %v", err)
	}
	return buf.Bytes()
}

// GenerateJPEG encodes a gradient of the given size as JPEG.
func GenerateJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, gradient(width, height), &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("jpeg encode failed: %v", err)
	}
	return buf.Bytes()
}
