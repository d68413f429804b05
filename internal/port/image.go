package port

import (
	"context"

	"github.com/HlaKarki/ImageProcessor/internal/model"
)

// EncodedAsset is one derived image ready for upload.
type EncodedAsset struct {
	Name        string
	Ext         string
	ContentType string
	Data        []byte
}

// TransformOutput holds everything derived from one source image.
type TransformOutput struct {
	Thumbnails []EncodedAsset
	// Optimized is keyed by output format.
	Optimized map[string]EncodedAsset
	Metadata  model.ImageMetadata
}

// ImageTransformer decodes an image and derives thumbnails, re-encodes and metadata.
type ImageTransformer interface {
	Transform(data []byte, fileSize int64) (*TransformOutput, error)
}

// VisionClient asks a vision model to describe an image.
type VisionClient interface {
	Analyse(ctx context.Context, image []byte) (*model.AIAnalysis, error)
}
