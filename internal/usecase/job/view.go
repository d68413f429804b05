package job

import (
	"github.com/HlaKarki/ImageProcessor/internal/model"
	"github.com/HlaKarki/ImageProcessor/internal/port"
)

// ToView maps a stored job to its client representation. Maps are copied so
// URL signing on the view never touches the job.
func ToView(j *model.Job) port.JobView {
	return port.JobView{
		ID:               j.ID,
		UserID:           j.UserID,
		OriginalURL:      j.OriginalURL,
		OriginalFilename: j.OriginalFilename,
		FileSize:         j.FileSize,
		MimeType:         j.MimeType,
		CreatedAt:        j.CreatedAt,
		Status:           j.Status,
		StartedAt:        j.StartedAt,
		CompletedAt:      j.CompletedAt,
		ErrorMessage:     j.ErrorMessage,
		RetryCount:       j.RetryCount,
		Thumbnails:       copyURLs(j.Thumbnails),
		Optimized:        copyURLs(j.Optimized),
		Metadata:         j.Metadata,
		AI: port.AIView{
			Status:       j.AIStatus,
			StartedAt:    j.AIStartedAt,
			CompletedAt:  j.AICompletedAt,
			ErrorMessage: j.AIErrorMessage,
			RetryCount:   j.AIRetryCount,
			Analysis:     j.AIAnalysis,
		},
	}
}

func copyURLs(in model.AssetURLs) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
