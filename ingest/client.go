package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"dispodeals/models"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// DefaultPath is the batch ingest route on the backend
const DefaultPath = "/api/ingest/extension"

// ErrRejected is returned when the backend answers 2xx with ok=false
var ErrRejected = errors.New("ingest rejected")

// StatusError is returned for non-2xx ingest responses
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ingest failed: status %d: %s", e.StatusCode, e.Message)
}

// Config configures a Client
type Config struct {
	BaseURL   string
	Path      string
	APIKey    string
	InstallID string // anonymous install id; generated when empty
	Version   string
	Timeout   time.Duration
	RateLimit float64 // requests per second
	Burst     int
	Debug     bool
}

// Client posts scan payloads to the ingest backend
type Client struct {
	httpClient  *http.Client
	endpoint    string
	apiKey      string
	installID   string
	version     string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new ingest client
func NewClient(cfg Config) *Client {
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 12 * time.Second
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}
	if cfg.Version == "" {
		cfg.Version = "1.0.0"
	}
	if cfg.InstallID == "" {
		cfg.InstallID = uuid.NewString()
	}

	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		endpoint:    strings.TrimRight(cfg.BaseURL, "/") + cfg.Path,
		apiKey:      cfg.APIKey,
		installID:   cfg.InstallID,
		version:     cfg.Version,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		debug:       cfg.Debug,
	}
}

// InstallID returns the install id sent with every request
func (c *Client) InstallID() string {
	return c.installID
}

// Send posts a payload. A transport failure (including a timeout) is
// retried once; HTTP error statuses are not.
func (c *Client) Send(ctx context.Context, payload *models.ExtensionPayload, installID string) (*models.ExtensionIngestResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	if installID == "" {
		installID = c.installID
	}

	var lastErr error
	for attempt := 1; attempt <= 2; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		resp, err := c.post(ctx, body, installID)
		if err != nil {
			log.Printf("[ingest] request error (attempt %d): %v", attempt, err)
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}
		return c.readResponse(resp)
	}
	return nil, lastErr
}

func (c *Client) post(ctx context.Context, body []byte, installID string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("X-DDD-Install-Id", installID)
	req.Header.Set("X-DDD-Extension-Version", c.version)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", c.endpoint, err)
	}
	return resp, nil
}

func (c *Client) readResponse(resp *http.Response) (*models.ExtensionIngestResponse, error) {
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if c.debug {
		log.Printf("[ingest] response %d: %s", resp.StatusCode, snippet(string(raw), 200))
	}

	var out models.ExtensionIngestResponse
	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := out.Error
		if decodeErr != nil || msg == "" {
			msg = snippet(string(raw), 300)
		}
		if msg == "" {
			msg = "Request failed"
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	if !out.OK {
		return nil, fmt.Errorf("%w: %s", ErrRejected, out.Error)
	}
	log.Printf("[ingest] ✅ accepted ingest_id=%s", out.IngestID)
	return &out, nil
}

func snippet(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
