package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/guardline/aegis/pkg/httputil"
)

// Provider defines the OpenAI-compatible backend service type
type Provider string

const (
	ProviderOpenRouter Provider = "openrouter"
	ProviderOllama     Provider = "ollama"
	ProviderGroq       Provider = "groq"
)

// LLMClient asks an OpenAI-compatible chat endpoint to classify messages.
type LLMClient struct {
	client      *http.Client
	provider    Provider
	baseURL     string
	apiKey      string
	model       string
	temperature float64
}

// LLMConfig holds the configuration for the LLM backend
type LLMConfig struct {
	Provider    Provider
	APIKey      string // Optional for Ollama
	Model       string
	BaseURL     string  // Optional override
	Temperature float64 // defaults to DefaultTemperature
}

// DefaultTemperature keeps classification near-deterministic.
const DefaultTemperature = 0.1

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// NewLLMClient creates a new LLM oracle backend.
func NewLLMClient(cfg LLMConfig) *LLMClient {
	if cfg.Model == "" {
		if cfg.Provider == ProviderOllama {
			cfg.Model = "qwen2.5:7b" // Default local
		} else {
			cfg.Model = "llama-3.1-8b-instant" // Default cloud
		}
	}

	var baseURL string
	switch cfg.Provider {
	case ProviderOllama:
		baseURL = "http://localhost:11434/v1" // OpenAI compatible endpoint of Ollama
	case ProviderGroq:
		baseURL = "https://api.groq.com/openai/v1"
	case ProviderOpenRouter:
		fallthrough
	default:
		baseURL = "https://openrouter.ai/api/v1"
	}
	if cfg.BaseURL != "" {
		baseURL = cfg.BaseURL
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = DefaultTemperature
	}

	return &LLMClient{
		client:      httputil.MediumClient(),
		provider:    cfg.Provider,
		baseURL:     baseURL,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: temperature,
	}
}

var _ Client = (*LLMClient)(nil)

func (c *LLMClient) Name() string { return "llm/" + string(c.provider) }

// Per-task system prompts. Every scoring prompt demands strict JSON so the
// response can be parsed without heuristics.
var taskPrompts = map[Task]string{
	TaskThreat: `You analyze a message someone received and score the physical danger it implies.
Score severity 1-5: 1 = no danger, 3 = implied threat, 5 = explicit threat of violence.
Tags from: violence, blackmail, stalking, other.
Respond with JSON only:
{"severity": 1-5, "tags": ["..."], "confidence": 0.0-1.0, "rationale": "brief", "action": "one concrete safety step"}`,

	TaskManipulation: `You analyze a message for psychological manipulation: gaslighting, guilt-tripping,
love bombing, isolation, coercive control.
Score severity 1-5: 1 = none, 3 = clear manipulation tactic, 5 = coercive control or leverage over the recipient.
Tags from: manipulation, grooming, other.
Respond with JSON only:
{"severity": 1-5, "tags": ["..."], "confidence": 0.0-1.0, "rationale": "brief", "action": "one concrete step"}`,

	TaskRedFlag: `You analyze a message from a relationship or online contact for warning signs:
harassment, boundary violations, predatory behavior, surveillance.
Score severity 1-5. Tags from: harassment, grooming, stalking, manipulation, other.
Respond with JSON only:
{"severity": 1-5, "tags": ["..."], "confidence": 0.0-1.0, "rationale": "brief", "action": "one concrete step"}`,

	TaskPanic: `Decide if this message is a call for immediate help from someone in danger right now.
Severity 5 with tag "panic_trigger" if yes in any language; severity 1 and no tags if no.
Respond with JSON only:
{"severity": 1-5, "tags": [], "confidence": 0.0-1.0, "rationale": "brief"}`,

	TaskLanguage: `Identify the language of the message.
Respond with JSON only:
{"language": "BCP-47 tag like en, hi, es", "confidence": 0.0-1.0}`,

	TaskRealityCheck: `The user received the quoted message and may be targeted by a scam, manipulation, or threat.
Write ONE short, calm suggestion (max two sentences) for how they can safely test the sender's honesty
without escalating or complying. Address the user directly.
Respond with JSON only:
{"message": "the suggestion", "confidence": 0.0-1.0}`,
}

func (c *LLMClient) Classify(ctx context.Context, text string, task Task) (*Result, error) {
	if c.provider != ProviderOllama && c.apiKey == "" {
		return nil, fmt.Errorf("%w: no API key for %s", ErrUnavailable, c.provider)
	}
	prompt, ok := taskPrompts[task]
	if !ok {
		return nil, fmt.Errorf("%w: unknown task %q", ErrUnavailable, task)
	}

	reqBody := chatRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: prompt},
			{Role: "user", Content: "MESSAGE: " + text},
		},
		Temperature: c.temperature,
	}

	respContent, err := c.callLLM(ctx, reqBody)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var result Result
	if err := json.Unmarshal([]byte(extractJSON(respContent)), &result); err != nil {
		return nil, fmt.Errorf("%w: unparseable response: %v", ErrUnavailable, err)
	}
	return &result, nil
}

// extractJSON trims markdown fences or prose around the JSON object.
func extractJSON(content string) string {
	clean := strings.TrimSpace(content)
	if start := strings.Index(clean, "{"); start != -1 {
		clean = clean[start:]
	}
	if end := strings.LastIndex(clean, "}"); end != -1 {
		clean = clean[:end+1]
	}
	return clean
}

func (c *LLMClient) callLLM(ctx context.Context, reqBody chatRequest) (string, error) {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	// Handle trailing slash in baseURL just in case
	endpoint := strings.TrimRight(c.baseURL, "/") + "/chat/completions"

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}

	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer httputil.DrainAndClose(resp.Body)

	// Providers are untrusted; cap the body read.
	body, err := httputil.ReadResponseBody(resp.Body, 2*1024*1024)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != 200 {
		return "", fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	var result chatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("unmarshal error: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	return result.Choices[0].Message.Content, nil
}
