package mock

import (
	"context"
	"sync"

	"github.com/HlaKarki/ImageProcessor/internal/port"
)

// Publisher implements port.JobPublisher for tests.
type Publisher struct {
	mu sync.Mutex

	ImageMessages []port.ImageJobMessage
	AIMessages    []port.AIJobMessage

	ImageErr error
	AIErr    error
}

func (p *Publisher) PublishImageJob(ctx context.Context, msg port.ImageJobMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ImageErr != nil {
		return p.ImageErr
	}
	p.ImageMessages = append(p.ImageMessages, msg)
	return nil
}

func (p *Publisher) PublishAIJob(ctx context.Context, msg port.AIJobMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.AIErr != nil {
		return p.AIErr
	}
	p.AIMessages = append(p.AIMessages, msg)
	return nil
}
