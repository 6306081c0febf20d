package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	recognitiondomain "github.com/nutrilog/nutrilog/internal/recognition/domain"
	"go.uber.org/zap"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

const geminiPromptFormat = `Analyze the image together with the description %q.
Respond with ONLY a pure JSON object in the format {"food": "name", "grams": 0}
where grams is the estimated portion weight. If the image shows no food,
respond with {"error": "not_food"}.`

// GeminiClient identifies food from a photo via the generateContent endpoint.
type GeminiClient struct {
	apiKey     string
	model      string
	baseURL    string
	log        *zap.Logger
	httpClient *http.Client
}

func NewGeminiClient(apiKey, model string, timeout time.Duration, log *zap.Logger) *GeminiClient {
	return &GeminiClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: geminiBaseURL,
		log:     log.Named("provider.gemini"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *GeminiClient) Analyze(ctx context.Context, text string, photo []byte) (string, error) {
	parts := []geminiPart{
		{Text: fmt.Sprintf(geminiPromptFormat, text)},
	}
	if len(photo) > 0 {
		parts = append(parts, geminiPart{
			InlineData: &geminiInlineData{
				MimeType: "image/jpeg",
				Data:     base64.StdEncoding.EncodeToString(photo),
			},
		})
	}

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: parts}},
	})
	if err != nil {
		return "", fmt.Errorf("encode generateContent request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create generateContent request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call generateContent: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		c.log.Warn("generateContent returned non-200", zap.Int("status", resp.StatusCode))
		return "", fmt.Errorf("generateContent status %d", resp.StatusCode)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode generateContent response: %w", err)
	}
	if parsed.Error.Message != "" {
		return "", fmt.Errorf("generateContent error: %s", parsed.Error.Message)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("generateContent returned no candidates")
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

var _ recognitiondomain.VisionProvider = (*GeminiClient)(nil)
