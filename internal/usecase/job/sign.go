package job

import (
	"context"
	"time"

	"github.com/HlaKarki/ImageProcessor/internal/logger"
	"github.com/HlaKarki/ImageProcessor/internal/port"
)

const (
	DefaultSignedURLTTL = 10 * time.Minute
	MinSignedURLTTL     = time.Minute
	MaxSignedURLTTL     = time.Hour
)

// ClampSignedURLTTL bounds ttl to [1m, 60m]; zero selects the default.
func ClampSignedURLTTL(ttl time.Duration) time.Duration {
	switch {
	case ttl == 0:
		return DefaultSignedURLTTL
	case ttl < MinSignedURLTTL:
		return MinSignedURLTTL
	case ttl > MaxSignedURLTTL:
		return MaxSignedURLTTL
	}
	return ttl
}

type urlSigner struct {
	strg port.Storage
	ttl  time.Duration
}

// signView swaps every stored URL on v for a signed one, field by field.
func (s urlSigner) signView(ctx context.Context, v *port.JobView) {
	v.OriginalURL = s.sign(ctx, v.OriginalURL)
	for name, u := range v.Thumbnails {
		v.Thumbnails[name] = s.sign(ctx, u)
	}
	for format, u := range v.Optimized {
		v.Optimized[format] = s.sign(ctx, u)
	}
}

func (s urlSigner) sign(ctx context.Context, rawURL string) string {
	if rawURL == "" {
		return rawURL
	}
	key, err := s.strg.KeyFromURL(rawURL)
	if err != nil {
		logger.Warnf(ctx, "cannot sign %q, returning it unsigned: %v", rawURL, err)
		return rawURL
	}
	signed, err := s.strg.GeneratePresignedDownloadURL(ctx, key, s.ttl)
	if err != nil {
		logger.Warnf(ctx, "signing %q failed, returning it unsigned: %v", key, err)
		return rawURL
	}
	return signed
}
