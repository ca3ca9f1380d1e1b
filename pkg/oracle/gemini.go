package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient classifies messages through the Gemini API. Prompts are shared
// with the OpenAI-compatible backend so backends are interchangeable.
type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiClient dials the Gemini API. modelName defaults to a fast, cheap
// model suitable for classification.
func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: no Gemini API key", ErrUnavailable)
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	model := client.GenerativeModel(modelName)
	temp := float32(DefaultTemperature)
	model.Temperature = &temp
	return &GeminiClient{client: client, model: model}, nil
}

var _ Client = (*GeminiClient)(nil)

func (g *GeminiClient) Name() string { return "gemini" }

// Close releases the underlying connection.
func (g *GeminiClient) Close() error { return g.client.Close() }

func (g *GeminiClient) Classify(ctx context.Context, text string, task Task) (*Result, error) {
	prompt, ok := taskPrompts[task]
	if !ok {
		return nil, fmt.Errorf("%w: unknown task %q", ErrUnavailable, task)
	}

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt+"\n\nMESSAGE: "+text))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
	}
	if sb.Len() == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrUnavailable)
	}

	var result Result
	if err := json.Unmarshal([]byte(extractJSON(sb.String())), &result); err != nil {
		return nil, fmt.Errorf("%w: unparseable response: %v", ErrUnavailable, err)
	}
	return &result, nil
}
