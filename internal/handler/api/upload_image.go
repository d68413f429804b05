package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/HlaKarki/ImageProcessor/internal/api_context"
	"github.com/HlaKarki/ImageProcessor/internal/logger"
	"github.com/HlaKarki/ImageProcessor/internal/port"
	"github.com/HlaKarki/ImageProcessor/internal/usecase/job"
)

const (
	uploadFormField = "file"
	// multipart headers on top of the largest accepted file
	uploadOverhead     = 1 << 20
	uploadMemoryBuffer = 8 << 20
)

type UploadForm struct {
	Filename string `json:"filename" validate:"required,max=255,imageext"`
	MimeType string `json:"mimeType" validate:"required,imagemime"`
	Size     int64  `json:"size" validate:"gt=0,lte=52428800"`
}

func UploadImageHandler(svc port.ImageUploader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := api_context.AuthUserIDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, job.MaxFileSize+uploadOverhead)
		if err := r.ParseMultipartForm(uploadMemoryBuffer); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				WriteError(w, http.StatusBadRequest, fmt.Sprintf("File exceeds %d bytes", job.MaxFileSize), nil)
				return
			}
			WriteError(w, http.StatusBadRequest, "Invalid multipart form", err)
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		file, header, err := r.FormFile(uploadFormField)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "Multipart field \"file\" is required", err)
			return
		}
		defer func() { _ = file.Close() }()

		form := UploadForm{
			Filename: header.Filename,
			MimeType: header.Header.Get("Content-Type"),
			Size:     header.Size,
		}
		if respondValidation(w, r, form) {
			return
		}

		out, err := svc.UploadImage(r.Context(), port.UploadImageInput{
			UserID:   userID,
			Filename: form.Filename,
			MimeType: form.MimeType,
			Size:     form.Size,
			Reader:   file,
		})
		if err != nil {
			if errors.Is(err, job.ErrInvalidUpload) {
				WriteError(w, http.StatusBadRequest, err.Error(), nil)
				return
			}
			WriteError(w, http.StatusInternalServerError, "Could not upload image", err)
			return
		}

		RespondJSON(w, http.StatusOK, out)
		logger.Infof(r.Context(), "✅  Successfully uploaded image for job #%s", out.ID)
	}
}
