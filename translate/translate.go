// Package translate implements AI-powered translation of localization file
// entries over HTTP providers: Google AI (Gemini), OpenAI-compatible
// endpoints, and a local Ollama server.
//
// Strings are sent as one JSON array per request and the model is asked to
// return a JSON array of the same length. Placeholders like {name} or
// %(count)s must survive translation; the system prompt pins that down.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lingokit/lingokit/langmeta"
)

// ---------------------------------------------------------------------------
// Provider IDs
// ---------------------------------------------------------------------------

const (
	ProviderGoogle = "google"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Provider describes one translation backend.
type Provider struct {
	// ID is the provider identifier (google, openai, ollama).
	ID string
	// Name is the display name.
	Name string
	// BaseURL is the API base URL.
	BaseURL string
	// APIKey is the authentication key (empty for local services).
	APIKey string
	// Model is the model identifier.
	Model string
	// Timeout is the per-request timeout.
	Timeout time.Duration
}

// DefaultProviders returns the pre-configured provider definitions.
func DefaultProviders() map[string]Provider {
	return map[string]Provider{
		ProviderGoogle: {
			ID:      ProviderGoogle,
			Name:    "Google AI (Gemini)",
			BaseURL: "https://generativelanguage.googleapis.com",
			Model:   "gemini-2.0-flash",
			Timeout: 120 * time.Second,
		},
		ProviderOpenAI: {
			ID:      ProviderOpenAI,
			Name:    "OpenAI-compatible endpoint",
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
			Timeout: 60 * time.Second,
		},
		ProviderOllama: {
			ID:      ProviderOllama,
			Name:    "Ollama",
			BaseURL: "http://localhost:11434/v1",
			Model:   "llama3.1",
			Timeout: 120 * time.Second,
		},
	}
}

// DefaultSystemPrompt instructs the model to return a parallel JSON array.
const DefaultSystemPrompt = `You are a professional translator specializing in software localization. Translate the following UI strings to {{targetLang}}.

Rules:
- Return ONLY a JSON array of translated strings, same length and order as the input array.
- Preserve placeholders exactly: {name}, {count}, %s, %(value)s, {{var}}.
- Preserve leading/trailing whitespace and newlines.
- Do not translate product names or file paths.`

// Options controls a translation run.
type Options struct {
	// Provider is the backend configuration.
	Provider Provider
	// Language is the target language code (as chosen by the user).
	Language string
	// LanguageName overrides the human-readable name put in the prompt.
	LanguageName string
	// SystemPrompt overrides DefaultSystemPrompt.
	SystemPrompt string
	// MaxRetries caps retries on 429/5xx responses. Default 3.
	MaxRetries int
	// Timeout overrides the provider timeout if set.
	Timeout time.Duration
}

func (o *Options) effectiveTimeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	if o.Provider.Timeout > 0 {
		return o.Provider.Timeout
	}
	return 120 * time.Second
}

func (o *Options) effectiveMaxRetries() int {
	if o.MaxRetries > 0 {
		return o.MaxRetries
	}
	return 3
}

// resolvedPrompt returns the system prompt with {{targetLang}} replaced.
func (o *Options) resolvedPrompt() string {
	prompt := o.SystemPrompt
	if prompt == "" {
		prompt = DefaultSystemPrompt
	}
	name := o.LanguageName
	if name == "" {
		name = langmeta.Resolve(o.Language).Name
	}
	return strings.ReplaceAll(prompt, "{{targetLang}}", name)
}

// ---------------------------------------------------------------------------
// Entry point
// ---------------------------------------------------------------------------

// Translate translates the given key → text map and returns key → translated
// text. Keys are sent in sorted order so identical inputs produce identical
// requests. Empty values are passed through untranslated.
func Translate(ctx context.Context, texts map[string]string, opts Options) (map[string]string, error) {
	keys := make([]string, 0, len(texts))
	for k, v := range texts {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	result := make(map[string]string, len(texts))
	for k, v := range texts {
		result[k] = v
	}
	if len(keys) == 0 {
		return result, nil
	}

	values := make([]string, len(keys))
	for i, k := range keys {
		values[i] = texts[k]
	}

	userPrompt, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("encoding strings: %w", err)
	}

	log.Debug().
		Str("provider", opts.Provider.ID).
		Str("lang", opts.Language).
		Int("strings", len(keys)).
		Msg("Sending translation request")

	content, err := callProvider(ctx, opts, opts.resolvedPrompt(), string(userPrompt))
	if err != nil {
		return nil, err
	}

	translated, err := parseTranslations(content, len(keys))
	if err != nil {
		return nil, err
	}

	for i, k := range keys {
		result[k] = translated[i]
	}
	return result, nil
}

// ---------------------------------------------------------------------------
// HTTP plumbing
// ---------------------------------------------------------------------------

func callProvider(ctx context.Context, opts Options, systemPrompt, userPrompt string) (string, error) {
	prov := opts.Provider

	var (
		endpoint string
		body     []byte
		err      error
		headers  = map[string]string{"Content-Type": "application/json"}
	)
	switch prov.ID {
	case ProviderGoogle:
		body, err = buildGeminiRequest(systemPrompt, userPrompt)
		endpoint = fmt.Sprintf("%s/v1beta/models/%s:generateContent",
			strings.TrimSuffix(prov.BaseURL, "/"), prov.Model)
		headers["x-goog-api-key"] = prov.APIKey
	default:
		// The OpenAI chat/completions shape covers openai, ollama, and any
		// compatible endpoint.
		body, err = buildOpenAIChatRequest(prov.Model, systemPrompt, userPrompt)
		endpoint = strings.TrimSuffix(prov.BaseURL, "/") + "/chat/completions"
		if prov.APIKey != "" {
			headers["Authorization"] = "Bearer " + prov.APIKey
		}
	}
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}

	client := &http.Client{Timeout: opts.effectiveTimeout()}
	maxRetries := opts.effectiveMaxRetries()

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(1<<attempt) * time.Second
			log.Warn().
				Str("provider", prov.ID).
				Dur("delay", delay).
				Msgf("Retrying after error: %v", lastErr)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("creating request: %w", err)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			lastErr = err
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("reading response: %w", err)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return extractResponseText(respBody)
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = fmt.Errorf("HTTP %d: %s", resp.StatusCode, truncate(string(respBody), 200))
			continue
		default:
			// Auth and request errors do not improve with retries.
			return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, truncate(string(respBody), 500))
		}
	}
	return "", fmt.Errorf("translation failed after %d retries: %w", maxRetries, lastErr)
}

func buildOpenAIChatRequest(model, systemPrompt, userPrompt string) ([]byte, error) {
	type msg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	req := struct {
		Model       string  `json:"model"`
		Messages    []msg   `json:"messages"`
		Temperature float64 `json:"temperature"`
		Stream      bool    `json:"stream"`
	}{
		Model: model,
		Messages: []msg{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.2,
	}
	return json.Marshal(req)
}

func buildGeminiRequest(systemPrompt, userPrompt string) ([]byte, error) {
	type part struct {
		Text string `json:"text"`
	}
	type content struct {
		Role  string `json:"role,omitempty"`
		Parts []part `json:"parts"`
	}
	req := struct {
		Contents          []content `json:"contents"`
		SystemInstruction *content  `json:"systemInstruction,omitempty"`
	}{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: userPrompt}}},
		},
		SystemInstruction: &content{Parts: []part{{Text: systemPrompt}}},
	}
	return json.Marshal(req)
}

// extractResponseText pulls the model output out of either the OpenAI chat
// or the Gemini generateContent response shape.
func extractResponseText(body []byte) (string, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("invalid JSON response: %w", err)
	}

	if errObj, ok := raw["error"]; ok {
		if errMap, ok := errObj.(map[string]any); ok {
			if msg, ok := errMap["message"].(string); ok {
				return "", fmt.Errorf("API error: %s", msg)
			}
		}
		return "", fmt.Errorf("API error: %v", errObj)
	}

	// OpenAI chat: choices[0].message.content
	if choices, ok := raw["choices"].([]any); ok && len(choices) > 0 {
		if choice, ok := choices[0].(map[string]any); ok {
			if message, ok := choice["message"].(map[string]any); ok {
				if content, ok := message["content"].(string); ok {
					return content, nil
				}
			}
		}
	}

	// Gemini: candidates[0].content.parts[0].text
	if candidates, ok := raw["candidates"].([]any); ok && len(candidates) > 0 {
		if candidate, ok := candidates[0].(map[string]any); ok {
			if content, ok := candidate["content"].(map[string]any); ok {
				if parts, ok := content["parts"].([]any); ok && len(parts) > 0 {
					if part, ok := parts[0].(map[string]any); ok {
						if text, ok := part["text"].(string); ok {
							return text, nil
						}
					}
				}
			}
		}
	}

	return "", fmt.Errorf("could not extract text from response: %s", truncate(string(body), 500))
}

// ---------------------------------------------------------------------------
// Response parsing
// ---------------------------------------------------------------------------

var markdownCodeBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// parseTranslations decodes the model output as a JSON array of exactly
// expected strings, stripping a markdown code fence if the model added one.
func parseTranslations(content string, expected int) ([]string, error) {
	content = strings.TrimSpace(content)
	if m := markdownCodeBlock.FindStringSubmatch(content); m != nil {
		content = m[1]
	}

	var translations []string
	if err := json.Unmarshal([]byte(content), &translations); err != nil {
		return nil, fmt.Errorf("response is not a JSON string array: %w", err)
	}
	if len(translations) != expected {
		return nil, fmt.Errorf("expected %d translations, got %d", expected, len(translations))
	}
	return translations, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
