package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/teambalance/internal/domain/model"
)

// ErrRejected marks a request the service refused with a 4xx status.
var ErrRejected = errors.New("request rejected")

// GeneratePayload mirrors the POST /teams/generate body.
type GeneratePayload struct {
	Players   []model.Player      `json:"players"`
	Groups    []model.PlayerGroup `json:"groups,omitempty"`
	Config    *model.LeagueConfig `json:"config,omitempty"`
	Mode      model.Mode          `json:"mode,omitempty"`
	Seed      *int64              `json:"seed,omitempty"`
	TeamNames []string            `json:"teamNames,omitempty"`
}

// GenerateResponse mirrors the POST /teams/generate reply.
type GenerateResponse struct {
	RunID  string       `json:"runId"`
	Result model.Result `json:"result"`
}

// Client talks to a running service.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

// Health checks that the service answers on /healthz.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", http.NoBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	return nil
}

// Generate posts a roster and decodes the result.
func (c *Client) Generate(ctx context.Context, payload GeneratePayload) (GenerateResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return GenerateResponse{}, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/teams/generate", bytes.NewReader(body))
	if err != nil {
		return GenerateResponse{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return GenerateResponse{}, fmt.Errorf("post roster: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return GenerateResponse{}, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		var out GenerateResponse
		if err := json.Unmarshal(data, &out); err != nil {
			return GenerateResponse{}, fmt.Errorf("decode response: %w", err)
		}
		return out, nil
	case resp.StatusCode >= http.StatusBadRequest && resp.StatusCode < http.StatusInternalServerError:
		return GenerateResponse{}, fmt.Errorf("%w: %d %s", ErrRejected, resp.StatusCode, bytes.TrimSpace(data))
	default:
		return GenerateResponse{}, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(data))
	}
}
