package vision

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/HlaKarki/ImageProcessor/internal/model"
)

const maxTags = 12

type visionPayload struct {
	Summary string  `json:"summary"`
	OCRText *string `json:"ocrText"`
	Tags    []struct {
		Label      string  `json:"label"`
		Confidence float64 `json:"confidence"`
	} `json:"tags"`
	Safety struct {
		Adult    *bool `json:"adult"`
		Violence *bool `json:"violence"`
		SelfHarm *bool `json:"selfHarm"`
	} `json:"safety"`
}

func parseAnalysis(content string) (*model.AIAnalysis, error) {
	fragment := extractJSONFragment(content)
	if fragment == "" {
		return nil, fmt.Errorf("%w: empty content", ErrMalformedPayload)
	}

	var p visionPayload
	if err := json.Unmarshal([]byte(fragment), &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	summary := strings.TrimSpace(p.Summary)
	if summary == "" {
		return nil, fmt.Errorf("%w: missing summary", ErrMalformedPayload)
	}

	out := &model.AIAnalysis{
		Summary: summary,
		Tags:    make([]model.AITag, 0, min(len(p.Tags), maxTags)),
		Safety: model.AISafety{
			Adult:    flag(p.Safety.Adult),
			Violence: flag(p.Safety.Violence),
			SelfHarm: flag(p.Safety.SelfHarm),
		},
	}
	if p.OCRText != nil {
		if ocr := strings.TrimSpace(*p.OCRText); ocr != "" {
			out.OCRText = &ocr
		}
	}
	for _, t := range p.Tags {
		if len(out.Tags) == maxTags {
			break
		}
		label := strings.TrimSpace(t.Label)
		if label == "" {
			continue
		}
		out.Tags = append(out.Tags, model.AITag{Label: label, Confidence: normalizeConfidence(t.Confidence)})
	}
	return out, nil
}

func normalizeConfidence(c float64) float64 {
	if math.IsNaN(c) || c < 0 {
		c = 0
	}
	if c > 1 {
		c = 1
	}
	return math.Round(c*1e4) / 1e4
}

func flag(b *bool) bool {
	return b != nil && *b
}

// extractJSONFragment strips code fences and surrounding prose from a model reply.
func extractJSONFragment(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
		trimmed = strings.TrimSpace(trimmed)
	}
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end < start {
		return ""
	}
	return trimmed[start : end+1]
}

// EstimateCost prices a call from its token usage. It returns nil when the
// provider reported no usage at all.
func EstimateCost(inputTokens, outputTokens *int, inputRate, outputRate float64) *float64 {
	if inputTokens == nil && outputTokens == nil {
		return nil
	}
	var in, out float64
	if inputTokens != nil {
		in = float64(*inputTokens)
	}
	if outputTokens != nil {
		out = float64(*outputTokens)
	}
	cost := math.Round(((in/1000)*inputRate+(out/1000)*outputRate)*1e6) / 1e6
	return &cost
}
