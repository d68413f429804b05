package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/HlaKarki/ImageProcessor/internal/port"
	"github.com/chai2010/webp"
	_ "golang.org/x/image/webp"
)

const (
	// WebPQuality is used for thumbnails and the optimized re-encode.
	WebPQuality = 80

	OptimizedFormat = "webp"
	OptimizedName   = "optimized"
)

// ThumbnailSizes are the long-edge maxima of generated thumbnails.
var ThumbnailSizes = []int{128, 512, 1024}

// Engine is the default port.ImageTransformer.
type Engine struct{}

// compile-time check: *Engine must satisfy port.ImageTransformer
var _ port.ImageTransformer = (*Engine)(nil)

func NewEngine() *Engine {
	return &Engine{}
}

func (e *Engine) Transform(data []byte, fileSize int64) (*port.TransformOutput, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if format == "" {
		format = "unknown"
	}
	b := img.Bounds()

	out := &port.TransformOutput{
		Optimized: make(map[string]port.EncodedAsset, 1),
	}
	out.Metadata.Width = b.Dx()
	out.Metadata.Height = b.Dy()
	out.Metadata.Format = format
	out.Metadata.FileSize = fileSize
	out.Metadata.Exif = ExtractExif(data)
	out.Metadata.DominantColors = DominantColors(img)

	for _, size := range ThumbnailSizes {
		w, h := Fit(b.Dx(), b.Dy(), size)
		encoded, err := encodeWebP(Resize(img, w, h))
		if err != nil {
			return nil, fmt.Errorf("encode thumb-%d: %w", size, err)
		}
		out.Thumbnails = append(out.Thumbnails, port.EncodedAsset{
			Name:        fmt.Sprintf("thumb-%d", size),
			Ext:         "webp",
			ContentType: "image/webp",
			Data:        encoded,
		})
	}

	optimized, err := encodeWebP(img)
	if err != nil {
		return nil, fmt.Errorf("encode optimized: %w", err)
	}
	out.Optimized[OptimizedFormat] = port.EncodedAsset{
		Name:        OptimizedName,
		Ext:         "webp",
		ContentType: "image/webp",
		Data:        optimized,
	}

	return out, nil
}

func encodeWebP(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: WebPQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
