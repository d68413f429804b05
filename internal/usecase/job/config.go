package job

import (
	"path"
	"strings"
	"time"
)

const MaxFileSize = 50 * 1024 * 1024 // 50 MiB

var AllowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

var AllowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

const (
	DetailsCacheTTL = 30 * time.Second
	ListCacheTTL    = time.Hour

	// RetentionAge is how long a job is kept before the sweep removes it.
	RetentionAge = 30 * 24 * time.Hour

	// ClaimStaleAfter lets a redelivery take over a stage whose consumer died mid-flight.
	ClaimStaleAfter = 15 * time.Minute

	DefaultPageSize = 20
	MaxPageSize     = 100
)

func IsMimeTypeAllowed(mimeType string) bool {
	return AllowedMimeTypes[mimeType]
}

func IsExtensionAllowed(filename string) bool {
	return AllowedExtensions[strings.ToLower(path.Ext(filename))]
}

// OriginalKey is where the uploaded original of a job lives.
func OriginalKey(userID, jobID, ext string) string {
	return "originals/" + userID + "/" + jobID + strings.ToLower(ext)
}

// OriginalPrefix matches the original of a job whatever its extension.
func OriginalPrefix(userID, jobID string) string {
	return "originals/" + userID + "/" + jobID
}

// ProcessedPrefix is the folder holding every derived asset of a job.
func ProcessedPrefix(userID, jobID string) string {
	return "processed/" + userID + "/" + jobID + "/"
}

// ProcessedKey is where a derived asset named name lives.
func ProcessedKey(userID, jobID, name, ext string) string {
	return ProcessedPrefix(userID, jobID) + name + "." + ext
}
