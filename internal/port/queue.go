package port

import "context"

// ImageJobMessage is the image-jobs queue payload.
type ImageJobMessage struct {
	JobID            string `json:"jobId"`
	UserID           string `json:"userId"`
	OriginalURL      string `json:"originalUrl"`
	OriginalFilename string `json:"originalFilename"`
	MimeType         string `json:"mimeType"`
}

// AIJobMessage is the ai-jobs queue payload.
type AIJobMessage struct {
	JobID          string `json:"jobId"`
	UserID         string `json:"userId"`
	SourceImageURL string `json:"sourceImageUrl"`
}

// JobPublisher enqueues stage messages with persistent delivery.
type JobPublisher interface {
	PublishImageJob(ctx context.Context, msg ImageJobMessage) error
	PublishAIJob(ctx context.Context, msg AIJobMessage) error
}
