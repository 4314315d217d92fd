package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strings"
	"time"

	anthropicclient "github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	openaiclient "github.com/openai/openai-go/v2"
	openaioption "github.com/openai/openai-go/v2/option"
	jetai "go.jetify.com/ai"
	jetapi "go.jetify.com/ai/api"
	jetanthropic "go.jetify.com/ai/provider/anthropic"
	jetopenai "go.jetify.com/ai/provider/openai"
	"google.golang.org/genai"

	appcfg "github.com/gomonday/annonsanalys-core/internal/config"
)

const defaultMaxOutputTokens = 4096

// Options tunes a single model invocation.
type Options struct {
	Model           string // overrides the provider default
	JSON            bool   // ask the provider for a JSON-only reply
	JSONSchema      *genai.Schema
	MaxOutputTokens int
}

// Invoker is the model invocation boundary. Services depend on this
// interface so tests can swap in a canned implementation.
type Invoker interface {
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}

// Client dispatches prompts to the configured provider.
type Client struct {
	cfg        appcfg.AIConfig
	assignment *appcfg.AIModelAssignment
}

// NewClient builds an Invoker from the AI section of the app config.
func NewClient(cfg appcfg.AIConfig, assignment *appcfg.AIModelAssignment) *Client {
	return &Client{cfg: cfg, assignment: assignment}
}

// Generate sends the prompt to the selected provider and returns the raw
// response text.
func (c *Client) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	provider := selectProvider(c.cfg, c.assignment)
	if provider == nil {
		return "", unavailable("no enabled AI provider configured", 0, nil)
	}
	if strings.TrimSpace(opts.Model) != "" {
		provider.DefaultModel = opts.Model
	}
	if opts.MaxOutputTokens <= 0 {
		opts.MaxOutputTokens = defaultMaxOutputTokens
	}

	switch {
	case isGeminiProviderType(provider.Type):
		return callGemini(ctx, provider, prompt, opts)
	case isOpenAICompatibleProviderType(provider.Type):
		return callOpenAICompatibleChatCompletions(ctx, provider, prompt, opts)
	default:
		return callLanguageModel(ctx, provider, prompt, opts)
	}
}

func isGeminiProviderType(raw string) bool {
	t := normalizeProviderType(raw)
	return t == "gemini" || t == "google"
}

func isOpenAICompatibleProviderType(raw string) bool {
	t := normalizeProviderType(raw)
	return t == "openai-compatible" || t == "openaicompatible"
}

func isAnthropicProviderType(raw string) bool {
	return normalizeProviderType(raw) == "anthropic"
}

func normalizeProviderType(raw string) string {
	t := strings.ToLower(strings.TrimSpace(raw))
	t = strings.ReplaceAll(t, "_", "-")
	t = strings.ReplaceAll(t, " ", "")
	return t
}

// callGemini uses the native Gemini API so the response can be constrained
// to JSON via ResponseMIMEType and an optional schema.
func callGemini(ctx context.Context, provider *appcfg.AIProvider, prompt string, opts Options) (string, error) {
	apiKey := strings.TrimSpace(provider.APIKey)
	if apiKey == "" {
		return "", unavailable("AI provider api key is empty", 0, nil)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", unavailable("create gemini client", 0, err)
	}

	model := strings.TrimSpace(provider.DefaultModel)
	if model == "" {
		model = "gemini-2.5-flash"
	}

	genCfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(opts.MaxOutputTokens),
	}
	if opts.JSON || opts.JSONSchema != nil {
		genCfg.ResponseMIMEType = "application/json"
		genCfg.ResponseSchema = opts.JSONSchema
	}

	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), genCfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", unavailable("gemini request failed", apiErr.Code, err)
		}
		return "", unavailable("gemini request failed", 0, err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", blocked(string(resp.PromptFeedback.BlockReason))
	}
	for _, cand := range resp.Candidates {
		if cand.FinishReason == genai.FinishReasonSafety {
			return "", blocked(string(genai.FinishReasonSafety))
		}
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", empty()
	}
	return text, nil
}

// callLanguageModel covers OpenAI, Anthropic and OpenRouter style providers
// through the unified language-model API.
func callLanguageModel(ctx context.Context, provider *appcfg.AIProvider, prompt string, opts Options) (string, error) {
	model, err := buildLanguageModel(provider)
	if err != nil {
		return "", unavailable(err.Error(), 0, err)
	}

	resp, err := jetai.GenerateText(
		ctx,
		[]jetapi.Message{&jetapi.UserMessage{Content: jetapi.ContentFromText(prompt)}},
		jetai.WithModel(model),
		jetai.WithMaxOutputTokens(opts.MaxOutputTokens),
	)
	if err != nil {
		return "", unavailable("AI request failed", 0, err)
	}

	var full strings.Builder
	for _, block := range resp.Content {
		if textBlock, ok := block.(*jetapi.TextBlock); ok {
			full.WriteString(textBlock.Text)
		}
	}
	text := full.String()
	if strings.TrimSpace(text) == "" {
		return "", empty()
	}
	return text, nil
}

func buildLanguageModel(provider *appcfg.AIProvider) (jetapi.LanguageModel, error) {
	apiKey := strings.TrimSpace(provider.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("AI provider api key is empty")
	}

	modelID := strings.TrimSpace(provider.DefaultModel)
	endpoint := strings.TrimSpace(provider.Endpoint)

	if isAnthropicProviderType(provider.Type) {
		if modelID == "" {
			modelID = "claude-haiku-4-5-20251001"
		}
		clientOpts := []anthropicoption.RequestOption{
			anthropicoption.WithAPIKey(apiKey),
			anthropicoption.WithMaxRetries(0),
		}
		if endpoint != "" {
			clientOpts = append(clientOpts, anthropicoption.WithBaseURL(strings.TrimRight(endpoint, "/")))
		}
		client := anthropicclient.NewClient(clientOpts...)
		return jetanthropic.NewLanguageModel(modelID, jetanthropic.WithClient(client)), nil
	}

	if modelID == "" {
		modelID = "gpt-4o-mini"
	}
	clientOpts := []openaioption.RequestOption{
		openaioption.WithAPIKey(apiKey),
		openaioption.WithMaxRetries(0),
	}
	if normalized := normalizeOpenAIBaseURL(endpoint); normalized != "" {
		clientOpts = append(clientOpts, openaioption.WithBaseURL(normalized))
	}
	client := openaiclient.NewClient(clientOpts...)
	return jetopenai.NewLanguageModel(modelID, jetopenai.WithClient(client)), nil
}

func callOpenAICompatibleChatCompletions(ctx context.Context, provider *appcfg.AIProvider, prompt string, opts Options) (string, error) {
	if strings.TrimSpace(provider.APIKey) == "" {
		return "", unavailable("AI provider api key is empty", 0, nil)
	}

	endpoint := normalizeOpenAICompatibleEndpoint(provider.Endpoint)
	model := strings.TrimSpace(provider.DefaultModel)
	if model == "" {
		model = "gpt-4o-mini"
	}

	body, _ := json.Marshal(map[string]interface{}{
		"model": model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"max_tokens": opts.MaxOutputTokens,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", unavailable("build request", 0, err)
	}
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(provider.APIKey))
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 120 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", unavailable("AI request failed", 0, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", unavailable("read response", 0, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", unavailable("openai-compatible error: "+strings.TrimSpace(string(respBody)), resp.StatusCode, nil)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", unavailable("decode response", 0, err)
	}
	if result.Error != nil && strings.TrimSpace(result.Error.Message) != "" {
		return "", unavailable("openai-compatible error: "+result.Error.Message, 0, nil)
	}
	if len(result.Choices) == 0 || strings.TrimSpace(result.Choices[0].Message.Content) == "" {
		return "", empty()
	}
	return result.Choices[0].Message.Content, nil
}

func selectProvider(cfg appcfg.AIConfig, assignment *appcfg.AIModelAssignment) *appcfg.AIProvider {
	var providerID string
	var overrideModel string
	if assignment != nil {
		providerID = strings.TrimSpace(assignment.ProviderID)
		overrideModel = strings.TrimSpace(assignment.Model)
	}

	pick := func(provider appcfg.AIProvider) *appcfg.AIProvider {
		selected := provider
		if overrideModel != "" {
			selected.DefaultModel = overrideModel
		}
		return &selected
	}

	if providerID != "" {
		for _, provider := range cfg.Providers {
			if !provider.Enabled {
				continue
			}
			if strings.TrimSpace(provider.ID) != providerID {
				continue
			}
			return pick(provider)
		}
	}

	for _, provider := range cfg.Providers {
		if !provider.Enabled {
			continue
		}
		return pick(provider)
	}

	return nil
}

func normalizeOpenAIBaseURL(raw string) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		return ""
	}
	parsed, err := neturl.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return strings.TrimRight(base, "/")
	}

	path := strings.TrimRight(parsed.Path, "/")
	if !strings.HasSuffix(path, "/v1") {
		if path == "" {
			path = "/v1"
		} else {
			path += "/v1"
		}
	}
	parsed.Path = path
	return strings.TrimRight(parsed.String(), "/")
}

func normalizeOpenAICompatibleEndpoint(raw string) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		return "https://api.openai.com"
	}

	parsed, err := neturl.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		cleaned := strings.TrimRight(base, "/")
		return strings.TrimSuffix(cleaned, "/v1")
	}

	path := strings.TrimRight(parsed.Path, "/")
	path = strings.TrimSuffix(path, "/v1")
	parsed.Path = path
	return strings.TrimRight(parsed.String(), "/")
}
