package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	recognitiondomain "github.com/nutrilog/nutrilog/internal/recognition/domain"
	"go.uber.org/zap"
)

const groqChatURL = "https://api.groq.com/openai/v1/chat/completions"

const groqSystemPrompt = `You are an experienced nutritionist. Analyze the food the user
describes and respond with ONLY a pure JSON object in the format:
{"food": "name of the food", "calories": 0}
Calories are for the described portion. If the input is not food, respond with
{"error": "not_food"}.`

// GroqClient identifies food from free text via an OpenAI-compatible chat
// completions endpoint.
type GroqClient struct {
	apiKey     string
	model      string
	baseURL    string
	log        *zap.Logger
	httpClient *http.Client
}

func NewGroqClient(apiKey, model string, timeout time.Duration, log *zap.Logger) *GroqClient {
	return &GroqClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: groqChatURL,
		log:     log.Named("provider.groq"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type groqRequest struct {
	Model          string        `json:"model"`
	Messages       []groqMessage `json:"messages"`
	ResponseFormat groqFormat    `json:"response_format"`
}

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqFormat struct {
	Type string `json:"type"`
}

type groqResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *GroqClient) Analyze(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(groqRequest{
		Model: c.model,
		Messages: []groqMessage{
			{Role: "system", Content: groqSystemPrompt},
			{Role: "user", Content: text},
		},
		ResponseFormat: groqFormat{Type: "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call chat completions: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		c.log.Warn("chat completions returned non-200", zap.Int("status", resp.StatusCode))
		return "", fmt.Errorf("chat completions status %d", resp.StatusCode)
	}

	var parsed groqResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if parsed.Error.Message != "" {
		return "", fmt.Errorf("chat completions error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("chat completions returned no content")
	}
	return parsed.Choices[0].Message.Content, nil
}

var _ recognitiondomain.TextProvider = (*GroqClient)(nil)
