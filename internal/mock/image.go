package mock

import (
	"context"

	"github.com/HlaKarki/ImageProcessor/internal/model"
	"github.com/HlaKarki/ImageProcessor/internal/port"
)

// Transformer implements port.ImageTransformer for tests.
type Transformer struct {
	Out *port.TransformOutput
	Err error

	Input    []byte
	FileSize int64
	Called   bool
}

func (t *Transformer) Transform(data []byte, fileSize int64) (*port.TransformOutput, error) {
	t.Called = true
	t.Input = data
	t.FileSize = fileSize
	if t.Err != nil {
		return nil, t.Err
	}
	return t.Out, nil
}

// VisionClient implements port.VisionClient for tests.
type VisionClient struct {
	Out *model.AIAnalysis
	Err error
	// Block makes Analyse wait for ctx cancellation.
	Block bool

	Input  []byte
	Called bool
}

func (v *VisionClient) Analyse(ctx context.Context, image []byte) (*model.AIAnalysis, error) {
	v.Called = true
	v.Input = image
	if v.Block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if v.Err != nil {
		return nil, v.Err
	}
	return v.Out, nil
}
