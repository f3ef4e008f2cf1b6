// Package translate implements LLM-powered batch translation of UI strings
// using HTTP API-based providers: Google AI (Gemini), Groq, Custom OpenAI,
// and Ollama.
//
// The package owns all retry and fallback logic around the backends. A
// translation run partitions a flat key→English map into bounded batches,
// sends each batch as one request, validates the key→translation JSON that
// comes back, and degrades a persistently failing batch to its original
// English values instead of failing the run. Confidence scoring is a second,
// independent pass (see score.go) whose failures never touch translation
// output.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ---------------------------------------------------------------------------
// Provider IDs
// ---------------------------------------------------------------------------

const (
	ProviderGoogle       = "google"
	ProviderGroq         = "groq"
	ProviderCustomOpenAI = "custom-openai"
	ProviderOllama       = "ollama"
)

// ---------------------------------------------------------------------------
// Error taxonomy
// ---------------------------------------------------------------------------

// Fatal sentinel errors. Anything wrapping these aborts the run; transient
// and malformed-response conditions are retried instead.
var (
	// ErrAuth means the provider rejected the credentials (401/403).
	ErrAuth = errors.New("translation provider rejected credentials")
	// ErrRateLimited means 429 persisted through the retry budget. Fatal
	// for the run but user-correctable (wait, or switch provider).
	ErrRateLimited = errors.New("translation provider rate limited")
)

// IsFatal reports whether err should abort the whole run rather than
// degrade a single batch.
func IsFatal(err error) bool {
	return errors.Is(err, ErrAuth) ||
		errors.Is(err, ErrRateLimited) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// ---------------------------------------------------------------------------
// Provider configuration
// ---------------------------------------------------------------------------

// Provider holds the configuration for an LLM translation service.
type Provider struct {
	// ID is the provider identifier (google, groq, ...).
	ID string
	// Name is the display name.
	Name string
	// BaseURL is the API base URL.
	BaseURL string
	// APIKey is the authentication key (empty for local services).
	APIKey string
	// Model is the model identifier.
	Model string
	// Proxy is an optional HTTP/HTTPS proxy URL.
	Proxy string
	// Timeout is the request timeout.
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
		ProviderGroq: {
			ID:      ProviderGroq,
			Name:    "Groq",
			BaseURL: "https://api.groq.com/openai/v1",
			Model:   "llama-3.3-70b-versatile",
			Timeout: 60 * time.Second,
		},
		ProviderCustomOpenAI: {
			ID:      ProviderCustomOpenAI,
			Name:    "Custom OpenAI",
			Model:   "gpt-4o-mini",
			Timeout: 60 * time.Second,
		},
		ProviderOllama: {
			ID:      ProviderOllama,
			Name:    "Ollama",
			BaseURL: "http://localhost:11434",
			Model:   "llama3.2",
			Timeout: 120 * time.Second,
		},
	}
}

// ---------------------------------------------------------------------------
// Options
// ---------------------------------------------------------------------------

// Options controls a translation run for one target language.
type Options struct {
	// Provider is the LLM provider configuration.
	Provider Provider
	// Language is the target language code (e.g. "ru", "de").
	Language string
	// LanguageName is the human-readable English name (e.g. "Russian").
	LanguageName string
	// BatchSize is how many entries to translate per request. Default: 40.
	BatchSize int
	// ScoreBatchSize is how many entries to score per request. Scoring
	// batches are larger than translation batches because the response per
	// entry is a single integer. Default: 100.
	ScoreBatchSize int
	// MaxRetries bounds provider-level retries of transient failures
	// (transport errors, 5xx, 429 waits). Default: 3.
	MaxRetries int
	// BatchRetries bounds batch-level retries of malformed or
	// insufficiently translated responses. Default: 2.
	BatchRetries int
	// RequestDelay is the pause between consecutive batch requests.
	RequestDelay time.Duration
	// Timeout overrides the provider request timeout if set.
	Timeout time.Duration
	// SystemPrompt overrides the built-in translation prompt.
	SystemPrompt string
	// ScorePrompt overrides the built-in scoring prompt.
	ScorePrompt string
	// OnProgress is called after each translated batch.
	OnProgress func(lang string, done, total int)
	// OnLog emits log messages during translation.
	OnLog func(format string, args ...any)
	// OnError emits warning/error messages during translation.
	OnError func(format string, args ...any)
	// Verbose enables request-level debug logging.
	Verbose bool
}

func (o *Options) log(format string, args ...any) {
	if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) logError(format string, args ...any) {
	if o.OnError != nil {
		o.OnError(format, args...)
	} else if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) effectiveBatchSize() int {
	if o.BatchSize > 0 {
		return o.BatchSize
	}
	return 40
}

func (o *Options) effectiveScoreBatchSize() int {
	if o.ScoreBatchSize > 0 {
		return o.ScoreBatchSize
	}
	return 100
}

func (o *Options) effectiveMaxRetries() int {
	if o.MaxRetries > 0 {
		return o.MaxRetries
	}
	return 3
}

func (o *Options) effectiveBatchRetries() int {
	if o.BatchRetries > 0 {
		return o.BatchRetries
	}
	return 2
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

// ---------------------------------------------------------------------------
// HTTP client with proxy support
// ---------------------------------------------------------------------------

func makeHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if proxyURL != "" {
		if parsed, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(parsed)
		}
	} else {
		transport.Proxy = http.ProxyFromEnvironment
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// ---------------------------------------------------------------------------
// Request builders
// ---------------------------------------------------------------------------

func buildOpenAIChatRequest(model, systemPrompt, userPrompt string, temperature float64) ([]byte, error) {
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
		Temperature: temperature,
		Stream:      false,
	}
	return json.Marshal(req)
}

func buildGeminiRequest(systemPrompt, userPrompt string, temperature float64) ([]byte, error) {
	type part struct {
		Text string `json:"text"`
	}
	type content struct {
		Role  string `json:"role,omitempty"`
		Parts []part `json:"parts"`
	}
	type genConfig struct {
		Temperature float64 `json:"temperature"`
	}
	req := struct {
		Contents          []content `json:"contents"`
		GenerationConfig  genConfig `json:"generationConfig"`
		SystemInstruction *content  `json:"systemInstruction,omitempty"`
	}{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: userPrompt}}},
		},
		GenerationConfig: genConfig{Temperature: temperature},
	}
	if systemPrompt != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: systemPrompt}}}
	}
	return json.Marshal(req)
}

// ---------------------------------------------------------------------------
// Response parsing
// ---------------------------------------------------------------------------

// extractResponseText pulls the model's text out of either supported
// response envelope.
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

	// OpenAI chat format: choices[0].message.content
	if choices, ok := raw["choices"].([]any); ok && len(choices) > 0 {
		if choice, ok := choices[0].(map[string]any); ok {
			if message, ok := choice["message"].(map[string]any); ok {
				if content, ok := message["content"].(string); ok {
					return content, nil
				}
			}
		}
	}

	// Gemini format: candidates[0].content.parts[0].text
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

// parseRetryDelay extracts the retry delay from a 429 response body.
// Looks for Google's RetryInfo detail with retryDelay field.
// Returns the delay to wait, defaulting to 60s + 5s buffer.
func parseRetryDelay(body []byte) time.Duration {
	const defaultDelay = 65 * time.Second

	var errResp struct {
		Error struct {
			Details []struct {
				Type       string `json:"@type"`
				RetryDelay string `json:"retryDelay"`
			} `json:"details"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &errResp); err != nil {
		return defaultDelay
	}

	for _, detail := range errResp.Error.Details {
		if strings.Contains(detail.Type, "RetryInfo") && detail.RetryDelay != "" {
			d := strings.TrimSuffix(detail.RetryDelay, "s")
			if secs, err := strconv.ParseFloat(d, 64); err == nil {
				return time.Duration(secs*1000)*time.Millisecond + 5*time.Second
			}
		}
	}

	return defaultDelay
}

// ---------------------------------------------------------------------------
// Provider dispatch
// ---------------------------------------------------------------------------

// callProvider sends a prompt to the configured provider and returns the
// response text. Runs are sequential by design, so no cross-worker rate
// limit coordination is needed — a 429 simply blocks the current batch.
func callProvider(ctx context.Context, prov Provider, systemPrompt, userPrompt string, maxRetries int, timeout time.Duration, verbose bool) (string, error) {
	endpoint, headers, body, err := buildHTTPRequest(prov, systemPrompt, userPrompt)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}

	client := makeHTTPClient(prov.Proxy, timeout)

	for attempt := 0; attempt <= maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("creating request: %w", err)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		if verbose {
			logrus.WithFields(logrus.Fields{
				"provider": prov.Name,
				"attempt":  attempt + 1,
				"endpoint": endpoint,
			}).Debug("translate: POST")
		}

		resp, err := client.Do(req)
		if err != nil {
			if attempt < maxRetries {
				if werr := waitBackoff(ctx, attempt); werr != nil {
					return "", werr
				}
				continue
			}
			return "", fmt.Errorf("API request failed: %w", err)
		}

		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return "", fmt.Errorf("%w (status %d): %s — check the %s API key",
				ErrAuth, resp.StatusCode, truncate(string(respBody), 200), prov.Name)

		case resp.StatusCode == http.StatusTooManyRequests:
			retryDelay := parseRetryDelay(respBody)
			if verbose {
				logrus.WithField("delay", retryDelay).Debugf("translate: 429, attempt %d/%d", attempt+1, maxRetries)
			}
			if attempt < maxRetries {
				select {
				case <-ctx.Done():
					return "", ctx.Err()
				case <-time.After(retryDelay):
				}
				continue
			}
			return "", fmt.Errorf("%w after %d retries: %s", ErrRateLimited, maxRetries, truncate(string(respBody), 200))

		case resp.StatusCode >= 500:
			if attempt < maxRetries {
				if werr := waitBackoff(ctx, attempt); werr != nil {
					return "", werr
				}
				continue
			}
			return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncate(string(respBody), 500))

		case resp.StatusCode != http.StatusOK:
			return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncate(string(respBody), 500))
		}

		return extractResponseText(respBody)
	}

	return "", fmt.Errorf("exhausted all %d retries", maxRetries)
}

// buildHTTPRequest constructs the endpoint, headers, and body for the
// provider. Google uses the Gemini generateContent format; everything else
// speaks OpenAI chat completions.
func buildHTTPRequest(prov Provider, systemPrompt, userPrompt string) (string, map[string]string, []byte, error) {
	headers := map[string]string{
		"Content-Type": "application/json",
	}

	var endpoint string
	var body []byte
	var err error

	if prov.ID == ProviderGoogle {
		endpoint = fmt.Sprintf("%s/v1beta/models/%s:generateContent",
			strings.TrimRight(prov.BaseURL, "/"), prov.Model)
		if prov.APIKey != "" {
			headers["x-goog-api-key"] = prov.APIKey
		}
		body, err = buildGeminiRequest(systemPrompt, userPrompt, 0.3)
	} else {
		baseURL := strings.TrimRight(prov.BaseURL, "/")
		if !strings.HasSuffix(baseURL, "/chat/completions") {
			endpoint = baseURL + "/chat/completions"
		} else {
			endpoint = baseURL
		}
		if prov.APIKey != "" {
			headers["Authorization"] = "Bearer " + prov.APIKey
		}
		body, err = buildOpenAIChatRequest(prov.Model, systemPrompt, userPrompt, 0.3)
	}

	if err != nil {
		return "", nil, nil, err
	}
	return endpoint, headers, body, nil
}

// waitBackoff sleeps 2^attempt seconds or until ctx is done.
func waitBackoff(ctx context.Context, attempt int) error {
	wait := time.Duration(math.Pow(2, float64(attempt))) * time.Second
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
