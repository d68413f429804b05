package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"reflect"
	"strings"
	"testing"

	"github.com/chai2010/webp"
)

// stripes draws vertical bands of the given colours, widest first.
func stripes(w, h int, cols []color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	// band i covers a share proportional to len(cols)-i
	total := 0
	for i := range cols {
		total += len(cols) - i
	}
	x := 0
	for i, c := range cols {
		bw := w * (len(cols) - i) / total
		if i == len(cols)-1 {
			bw = w - x
		}
		for xx := x; xx < x+bw; xx++ {
			for y := 0; y < h; y++ {
				img.SetNRGBA(xx, y, c)
			}
		}
		x += bw
	}
	return img
}

var palette = []color.NRGBA{
	{R: 250, G: 10, B: 10, A: 255},
	{R: 10, G: 250, B: 10, A: 255},
	{R: 10, G: 10, B: 250, A: 255},
	{R: 250, G: 250, B: 10, A: 255},
	{R: 10, G: 250, B: 250, A: 255},
	{R: 250, G: 10, B: 250, A: 255},
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("jpeg encode: %v", err)
	}
	return buf.Bytes()
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func TestTransform_LandscapeJPEG(t *testing.T) {
	data := encodeJPEG(t, stripes(2000, 1000, palette))

	out, err := NewEngine().Transform(data, 3_200_000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	md := out.Metadata
	if md.Width != 2000 || md.Height != 1000 || md.Format != "jpeg" || md.FileSize != 3_200_000 {
		t.Errorf("unexpected metadata: %+v", md)
	}
	if len(md.DominantColors) != 5 {
		t.Errorf("dominant colors = %v; want 5", md.DominantColors)
	}
	if md.Exif == nil || len(md.Exif) != 0 {
		t.Errorf("expected empty exif map, got %v", md.Exif)
	}

	want := map[string][2]int{
		"thumb-128":  {128, 64},
		"thumb-512":  {512, 256},
		"thumb-1024": {1024, 512},
	}
	if len(out.Thumbnails) != 3 {
		t.Fatalf("got %d thumbnails; want 3", len(out.Thumbnails))
	}
	for _, th := range out.Thumbnails {
		dims, ok := want[th.Name]
		if !ok {
			t.Errorf("unexpected thumbnail %q", th.Name)
			continue
		}
		if th.ContentType != "image/webp" || th.Ext != "webp" {
			t.Errorf("%s: content type %q ext %q", th.Name, th.ContentType, th.Ext)
		}
		cfg, err := webp.DecodeConfig(bytes.NewReader(th.Data))
		if err != nil {
			t.Fatalf("%s: decode: %v", th.Name, err)
		}
		if cfg.Width != dims[0] || cfg.Height != dims[1] {
			t.Errorf("%s: %dx%d; want %dx%d", th.Name, cfg.Width, cfg.Height, dims[0], dims[1])
		}
	}

	opt, ok := out.Optimized["webp"]
	if !ok {
		t.Fatal("expected optimized webp output")
	}
	cfg, err := webp.DecodeConfig(bytes.NewReader(opt.Data))
	if err != nil {
		t.Fatalf("optimized decode: %v", err)
	}
	if cfg.Width != 2000 || cfg.Height != 1000 {
		t.Errorf("optimized: %dx%d; want 2000x1000", cfg.Width, cfg.Height)
	}
}

func TestTransform_NeverUpscales(t *testing.T) {
	data := encodePNG(t, stripes(300, 200, palette[:2]))

	out, err := NewEngine().Transform(data, int64(len(data)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Metadata.Format != "png" {
		t.Errorf("format = %q; want png", out.Metadata.Format)
	}
	for _, th := range out.Thumbnails {
		cfg, err := webp.DecodeConfig(bytes.NewReader(th.Data))
		if err != nil {
			t.Fatalf("%s: decode: %v", th.Name, err)
		}
		switch th.Name {
		case "thumb-128":
			if cfg.Width != 128 || cfg.Height != 85 {
				t.Errorf("thumb-128: %dx%d; want 128x85", cfg.Width, cfg.Height)
			}
		default:
			if cfg.Width != 300 || cfg.Height != 200 {
				t.Errorf("%s: %dx%d; want original 300x200", th.Name, cfg.Width, cfg.Height)
			}
		}
	}
}

func TestTransform_WebPInput(t *testing.T) {
	var buf bytes.Buffer
	if err := webp.Encode(&buf, stripes(64, 64, palette[:3]), &webp.Options{Lossless: true}); err != nil {
		t.Fatalf("webp encode: %v", err)
	}

	out, err := NewEngine().Transform(buf.Bytes(), int64(buf.Len()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Metadata.Format != "webp" {
		t.Errorf("format = %q; want webp", out.Metadata.Format)
	}
}

func TestTransform_DecodeError(t *testing.T) {
	_, err := NewEngine().Transform([]byte("definitely not an image"), 23)
	if err == nil || !strings.Contains(err.Error(), "decode image") {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestDominantColors_Deterministic(t *testing.T) {
	data := encodePNG(t, stripes(500, 250, palette))
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	first := DominantColors(img)
	second := DominantColors(img)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("colors differ between runs: %v vs %v", first, second)
	}

	// widest band first; each channel floored to a multiple of 32
	want := []string{"#E00000", "#00E000", "#0000E0", "#E0E000", "#00E0E0"}
	if !reflect.DeepEqual(first, want) {
		t.Errorf("colors = %v; want %v", first, want)
	}
}

func TestDominantColors_TiesKeepFirstSeenOrder(t *testing.T) {
	// two equal halves: left is seen first on every row
	img := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			c := color.NRGBA{R: 200, G: 40, B: 40, A: 255}
			if x >= 50 {
				c = color.NRGBA{R: 40, G: 40, B: 200, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}

	got := DominantColors(img)
	want := []string{"#C02020", "#2020C0"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("colors = %v; want %v", got, want)
	}
}

func TestFit(t *testing.T) {
	tests := []struct {
		w, h, max    int
		wantW, wantH int
	}{
		{2000, 1000, 128, 128, 64},
		{1000, 2000, 512, 256, 512},
		{100, 50, 1024, 100, 50},
		{1024, 1024, 1024, 1024, 1024},
		{3000, 1, 128, 128, 1},
	}
	for _, tc := range tests {
		gotW, gotH := Fit(tc.w, tc.h, tc.max)
		if gotW != tc.wantW || gotH != tc.wantH {
			t.Errorf("Fit(%d,%d,%d) = %dx%d; want %dx%d", tc.w, tc.h, tc.max, gotW, gotH, tc.wantW, tc.wantH)
		}
	}
}

func TestExtractExif_NoExif(t *testing.T) {
	got := ExtractExif(encodePNG(t, stripes(10, 10, palette[:1])))
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty map, got %v", got)
	}
}
