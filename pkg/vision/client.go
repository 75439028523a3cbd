package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// AnalysisPrompt is sent with every chart snapshot.
const AnalysisPrompt = "You are a Stock Trader specializing in Technical Analysis at a top financial institution. " +
	"Analyze the stock chart's technical indicators and provide a buy/hold/sell recommendation. " +
	"Base your recommendation only on the candlestick chart and the displayed technical indicators. " +
	"First, provide the recommendation, then, provide your detailed reasoning."

// ErrEmptyResponse is returned when the model answers without any text.
var ErrEmptyResponse = errors.New("vision model returned no content")

// Client sends one chart image per request to an OpenAI-compatible chat
// endpoint. Ollama serves one at http://localhost:11434/v1.
type Client struct {
	api    *openai.Client
	model  string
	prompt string
}

func NewClient(baseURL, apiKey, model string, timeout time.Duration) *Client {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(baseURL, "/")
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	return &Client{
		api:    openai.NewClientWithConfig(cfg),
		model:  model,
		prompt: AnalysisPrompt,
	}
}

func (c *Client) Model() string { return c.model }

// Analyze sends the PNG with the analysis prompt and returns the reply verbatim.
func (c *Client) Analyze(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("analyze: empty image")
	}

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: c.prompt},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    DataURL("image/png", image),
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion (%s): %w", c.model, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// DataURL encodes data as a base64 data URL.
func DataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
