package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// AssetURLs maps an asset name (thumb-128, webp, ...) to its storage URL.
type AssetURLs map[string]string

func (a AssetURLs) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal AssetURLs: %w", err)
	}
	return b, nil
}
func (a *AssetURLs) Scan(src interface{}) error {
	if src == nil {
		*a = nil
		return nil
	}
	data, err := columnBytes("AssetURLs", src)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, a); err != nil {
		return fmt.Errorf("unmarshal AssetURLs: %w", err)
	}
	return nil
}

type ImageMetadata struct {
	Width          int               `json:"width"`
	Height         int               `json:"height"`
	Format         string            `json:"format"`
	FileSize       int64             `json:"fileSize"`
	Exif           map[string]string `json:"exif"`
	DominantColors []string          `json:"dominantColors"`
}

func (m ImageMetadata) Value() (driver.Value, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal ImageMetadata: %w", err)
	}
	return b, nil
}
func (m *ImageMetadata) Scan(src interface{}) error {
	if src == nil {
		*m = ImageMetadata{}
		return nil
	}
	data, err := columnBytes("ImageMetadata", src)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, m); err != nil {
		return fmt.Errorf("unmarshal ImageMetadata: %w", err)
	}
	return nil
}

type AITag struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

type AISafety struct {
	Adult    bool `json:"adult"`
	Violence bool `json:"violence"`
	SelfHarm bool `json:"selfHarm"`
}

type AIMeta struct {
	Model            string   `json:"model"`
	LatencyMs        int64    `json:"latencyMs"`
	InputTokens      *int     `json:"inputTokens"`
	OutputTokens     *int     `json:"outputTokens"`
	EstimatedCostUSD *float64 `json:"estimatedCostUsd"`
}

type AIAnalysis struct {
	Summary string   `json:"summary"`
	OCRText *string  `json:"ocrText"`
	Tags    []AITag  `json:"tags"`
	Safety  AISafety `json:"safety"`
	Meta    AIMeta   `json:"meta"`
}

func (a AIAnalysis) Value() (driver.Value, error) {
	b, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal AIAnalysis: %w", err)
	}
	return b, nil
}
func (a *AIAnalysis) Scan(src interface{}) error {
	if src == nil {
		*a = AIAnalysis{}
		return nil
	}
	data, err := columnBytes("AIAnalysis", src)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, a); err != nil {
		return fmt.Errorf("unmarshal AIAnalysis: %w", err)
	}
	return nil
}

func columnBytes(typeName string, src interface{}) ([]byte, error) {
	switch v := src.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("%s.Scan: expected []byte, got %T", typeName, src)
	}
}
