// Package figma implements the Figma REST API client used to extract UI
// text from a design file.
//
// The pipeline only needs the document tree from GET /v1/files/{key}: typed
// nodes with a name, a child list, and — for text leaves — the rendered
// characters. Everything else in the Figma payload is ignored.
package figma

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// APIBase is the Figma REST API endpoint.
const APIBase = "https://api.figma.com"

// Node types the walker cares about. Any other container type still
// contributes its name to the path; unknown leaf types are skipped.
const (
	NodeDocument = "DOCUMENT"
	NodeCanvas   = "CANVAS"
	NodeText     = "TEXT"
)

// Sentinel errors for the caller's error taxonomy. All are fatal for the
// run; only transient failures are retried internally.
var (
	// ErrAuth means the access token was rejected (401/403).
	ErrAuth = errors.New("figma: invalid or expired access token")
	// ErrNotFound means the file key does not resolve to a document (404).
	ErrNotFound = errors.New("figma: file not found")
	// ErrRateLimited means 429 persisted through all retries.
	ErrRateLimited = errors.New("figma: rate limited")
)

// Node is one vertex of the Figma document tree.
type Node struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Characters string `json:"characters,omitempty"`
	Visible    *bool  `json:"visible,omitempty"`
	Children   []Node `json:"children,omitempty"`
}

// File is the subset of the GET /v1/files response the pipeline consumes.
type File struct {
	Name         string `json:"name"`
	LastModified string `json:"lastModified"`
	Document     Node   `json:"document"`
}

// TextNode is one translatable string found in the document, together with
// the ancestor names that scope its i18n key.
type TextNode struct {
	// Text is the node's rendered characters.
	Text string
	// Path holds the ancestor frame/component names, root-first.
	Path []string
	// NodeID is the Figma node id ("12:345").
	NodeID string
}

// Client talks to the Figma REST API for one file.
type Client struct {
	// Token is the personal access token sent as X-Figma-Token.
	Token string
	// FileKey identifies the design file.
	FileKey string
	// BaseURL overrides APIBase, for tests.
	BaseURL string
	// MaxRetries bounds retries of transient failures (default 3).
	MaxRetries int
	// HTTPClient overrides the default client, for tests.
	HTTPClient *http.Client

	log *logrus.Logger
}

// NewClient returns a Client for the given token and file key.
func NewClient(token, fileKey string) *Client {
	return &Client{
		Token:   token,
		FileKey: fileKey,
		log:     logrus.StandardLogger(),
	}
}

func (c *Client) baseURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	return APIBase
}

func (c *Client) maxRetries() int {
	if c.MaxRetries > 0 {
		return c.MaxRetries
	}
	return 3
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 60 * time.Second}
}

func (c *Client) logger() *logrus.Logger {
	if c.log != nil {
		return c.log
	}
	return logrus.StandardLogger()
}

// FetchFile downloads and decodes the document tree.
//
// Status handling: 401/403 wrap ErrAuth, 404 wraps ErrNotFound — both fatal
// and never retried. 429 honors Retry-After within the retry budget and
// wraps ErrRateLimited on exhaustion. 5xx and transport errors retry with
// exponential backoff.
func (c *Client) FetchFile(ctx context.Context) (*File, error) {
	endpoint := fmt.Sprintf("%s/v1/files/%s", c.baseURL(), c.FileKey)
	maxRetries := c.maxRetries()

	for attempt := 0; attempt <= maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("X-Figma-Token", c.Token)

		c.logger().WithFields(logrus.Fields{
			"attempt": attempt + 1,
			"file":    c.FileKey,
		}).Debug("figma: GET file")

		resp, err := c.httpClient().Do(req)
		if err != nil {
			if attempt < maxRetries {
				if werr := waitBackoff(ctx, attempt); werr != nil {
					return nil, werr
				}
				continue
			}
			return nil, fmt.Errorf("figma API request failed: %w", err)
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			var f File
			if err := json.Unmarshal(body, &f); err != nil {
				return nil, fmt.Errorf("parsing figma response: %w", err)
			}
			return &f, nil

		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return nil, fmt.Errorf("%w (status %d) — check FIGMA_TOKEN (generate one under Figma account settings)",
				ErrAuth, resp.StatusCode)

		case resp.StatusCode == http.StatusNotFound:
			return nil, fmt.Errorf("%w: %q — check FIGMA_FILE_KEY (the id in figma.com/file/<key>/...)",
				ErrNotFound, c.FileKey)

		case resp.StatusCode == http.StatusTooManyRequests:
			delay := retryAfter(resp.Header, attempt)
			c.logger().WithField("delay", delay).Debug("figma: 429, backing off")
			if attempt < maxRetries {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(delay):
				}
				continue
			}
			return nil, fmt.Errorf("%w after %d retries", ErrRateLimited, maxRetries)

		case resp.StatusCode >= 500:
			if attempt < maxRetries {
				if werr := waitBackoff(ctx, attempt); werr != nil {
					return nil, werr
				}
				continue
			}
			return nil, fmt.Errorf("figma API returned status %d: %s", resp.StatusCode, truncate(string(body), 300))

		default:
			return nil, fmt.Errorf("figma API returned status %d: %s", resp.StatusCode, truncate(string(body), 300))
		}
	}

	return nil, fmt.Errorf("figma: exhausted all %d retries", maxRetries)
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

// retryAfter parses the Retry-After header, falling back to exponential
// backoff.
func retryAfter(h http.Header, attempt int) time.Duration {
	if v := h.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return time.Duration(math.Pow(2, float64(attempt+1))) * time.Second
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
