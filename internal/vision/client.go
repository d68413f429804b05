package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/HlaKarki/ImageProcessor/internal/imaging"
	"github.com/HlaKarki/ImageProcessor/internal/logger"
	"github.com/HlaKarki/ImageProcessor/internal/model"
	"github.com/HlaKarki/ImageProcessor/internal/port"
)

var (
	ErrMissingAPIKey    = errors.New("vision: api key is not configured")
	ErrMalformedPayload = errors.New("vision: malformed payload")
)

const (
	defaultBaseURL      = "https://api.openai.com/v1"
	defaultModel        = "gpt-4o-mini"
	defaultTimeout      = 60 * time.Second
	defaultMaxDimension = 1024
	minMaxDimension     = 256
	maxMaxDimension     = 2048

	uploadJPEGQuality = 75
	maxErrorBody      = 512
)

const systemPrompt = `You analyse images and reply with a single JSON object and nothing else, shaped as:
{"summary": string, "ocrText": string, "tags": [{"label": string, "confidence": number}], "safety": {"adult": boolean, "violence": boolean, "selfHarm": boolean}}
"summary" is one or two sentences describing the image. "ocrText" is any legible text in the image, or an empty string.
"tags" lists the most relevant objects and concepts, most relevant first, with confidence between 0 and 1.`

type Options struct {
	APIKey       string
	Model        string
	BaseURL      string
	MaxDimension int
	// Rates are USD per 1000 tokens.
	InputCostPer1K  float64
	OutputCostPer1K float64
	HTTPClient      *http.Client
}

// Client calls an OpenAI-compatible chat completions endpoint with an image.
type Client struct {
	apiKey       string
	model        string
	baseURL      string
	maxDimension int
	inputRate    float64
	outputRate   float64
	client       *http.Client
}

// compile-time check: *Client must satisfy port.VisionClient
var _ port.VisionClient = (*Client)(nil)

func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	modelName := strings.TrimSpace(opts.Model)
	if modelName == "" {
		modelName = defaultModel
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		apiKey:       strings.TrimSpace(opts.APIKey),
		model:        modelName,
		baseURL:      baseURL,
		maxDimension: clampDimension(opts.MaxDimension),
		inputRate:    opts.InputCostPer1K,
		outputRate:   opts.OutputCostPer1K,
		client:       client,
	}
}

func clampDimension(d int) int {
	if d <= 0 {
		return defaultMaxDimension
	}
	return max(minMaxDimension, min(maxMaxDimension, d))
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat *chatFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string         `json:"type"`
	Text     string         `json:"text,omitempty"`
	ImageURL *imageURLField `json:"image_url,omitempty"`
}

type imageURLField struct {
	URL string `json:"url"`
}

type chatFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     *int `json:"prompt_tokens"`
		CompletionTokens *int `json:"completion_tokens"`
	} `json:"usage"`
}

func (c *Client) Analyse(ctx context.Context, img []byte) (*model.AIAnalysis, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	dataURL, err := c.encodeForUpload(img)
	if err != nil {
		return nil, err
	}

	payload := chatRequest{
		Model:          c.model,
		Temperature:    0.2,
		ResponseFormat: &chatFormat{Type: "json_object"},
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: []contentPart{
				{Type: "text", Text: "Analyse this image."},
				{Type: "image_url", ImageURL: &imageURLField{URL: dataURL}},
			}},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, fmt.Errorf("encode vision request: %w", err)
	}

	endpoint := c.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("build vision request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	started := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("vision request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	latency := time.Since(started)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("vision request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode vision response: %w", err)
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices", ErrMalformedPayload)
	}

	analysis, err := parseAnalysis(out.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	analysis.Meta = model.AIMeta{
		Model:     coalesce(out.Model, c.model),
		LatencyMs: latency.Milliseconds(),
	}
	if out.Usage != nil {
		analysis.Meta.InputTokens = out.Usage.PromptTokens
		analysis.Meta.OutputTokens = out.Usage.CompletionTokens
	}
	analysis.Meta.EstimatedCostUSD = EstimateCost(analysis.Meta.InputTokens, analysis.Meta.OutputTokens, c.inputRate, c.outputRate)

	logger.Debug(ctx, "vision analysis finished",
		"model", analysis.Meta.Model,
		"latencyMs", analysis.Meta.LatencyMs,
		"tags", len(analysis.Tags),
	)
	return analysis, nil
}

// encodeForUpload downsizes the image to fit maxDimension and wraps it as a JPEG data URL.
func (c *Client) encodeForUpload(data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode image for vision: %w", err)
	}
	b := img.Bounds()
	w, h := imaging.Fit(b.Dx(), b.Dy(), c.maxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, imaging.Resize(img, w, h), &jpeg.Options{Quality: uploadJPEGQuality}); err != nil {
		return "", fmt.Errorf("encode image for vision: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func coalesce(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
