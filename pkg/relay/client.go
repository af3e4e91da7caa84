// Package relay is the producer side HTTP client of the command queue API.
package relay

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PancyStudios/ModRelayGo/pkg/errors"
	"github.com/PancyStudios/ModRelayGo/pkg/models"
	"github.com/goccy/go-json"
)

// SecretHeader carries the shared secret on GET requests
const SecretHeader = "X-Modqueue-Secret"

// Client talks to the queue service. It never retries; callers decide what a
// failed relay means.
type Client struct {
	baseURL string
	secret  string
	http    *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a Client for the queue at baseURL
func New(baseURL, secret string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit enqueues a command and returns its id
func (c *Client) Submit(ctx context.Context, action models.Action, payload interface{}) (int64, error) {
	const op = "relay.Submit"

	data, err := json.Marshal(payload)
	if err != nil {
		return 0, errors.Internal(op, err)
	}

	var resp struct {
		Success   bool  `json:"success"`
		CommandID int64 `json:"commandId"`
	}
	body := map[string]interface{}{
		"action": action,
		"data":   json.RawMessage(data),
		"secret": c.secret,
	}
	if err := c.do(ctx, op, http.MethodPost, "/command", body, &resp); err != nil {
		return 0, err
	}
	return resp.CommandID, nil
}

// Pending lists up to limit pending commands, oldest first
func (c *Client) Pending(ctx context.Context, limit int) ([]models.Command, error) {
	path := "/commands"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	var rows []struct {
		ID        int64           `json:"id"`
		Action    models.Action   `json:"action"`
		Data      json.RawMessage `json:"data"`
		CreatedAt int64           `json:"created_at"`
	}
	if err := c.do(ctx, "relay.Pending", http.MethodGet, path, nil, &rows); err != nil {
		return nil, err
	}

	out := make([]models.Command, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.Command{
			ID:        r.ID,
			Action:    r.Action,
			Payload:   r.Data,
			CreatedAt: models.FromUnixMillis(r.CreatedAt),
		})
	}
	return out, nil
}

type banRow struct {
	RobloxID  string `json:"roblox_id"`
	Username  string `json:"username"`
	Reason    string `json:"reason"`
	Proof     string `json:"proof"`
	BannedBy  string `json:"banned_by"`
	BannedAt  int64  `json:"banned_at"`
	ExpiresAt *int64 `json:"expires_at"`
}

func (r banRow) ban() models.Ban {
	b := models.Ban{
		SubjectID: r.RobloxID,
		Username:  r.Username,
		Reason:    r.Reason,
		Proof:     r.Proof,
		IssuedBy:  r.BannedBy,
		IssuedAt:  models.FromUnixMillis(r.BannedAt),
	}
	if r.ExpiresAt != nil {
		t := models.FromUnixMillis(*r.ExpiresAt)
		b.ExpiresAt = &t
	}
	return b
}

// Bans returns the queue's ban mirror
func (c *Client) Bans(ctx context.Context) ([]models.Ban, error) {
	var rows []banRow
	if err := c.do(ctx, "relay.Bans", http.MethodGet, "/bans", nil, &rows); err != nil {
		return nil, err
	}
	out := make([]models.Ban, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ban())
	}
	return out, nil
}

// Ban returns a single mirrored ban, NotFound when absent
func (c *Client) Ban(ctx context.Context, subjectID string) (*models.Ban, error) {
	var row banRow
	if err := c.do(ctx, "relay.Ban", http.MethodGet, "/bans/"+url.PathEscape(subjectID), nil, &row); err != nil {
		return nil, err
	}
	b := row.ban()
	return &b, nil
}

// Groups returns the queue's blacklisted group mirror
func (c *Client) Groups(ctx context.Context) ([]models.BlacklistedGroup, error) {
	var rows []struct {
		GroupID       string `json:"group_id"`
		BlacklistedBy string `json:"blacklisted_by"`
		BlacklistedAt int64  `json:"blacklisted_at"`
	}
	if err := c.do(ctx, "relay.Groups", http.MethodGet, "/blacklistedcrews", nil, &rows); err != nil {
		return nil, err
	}
	out := make([]models.BlacklistedGroup, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.BlacklistedGroup{
			GroupID:  r.GroupID,
			IssuedBy: r.BlacklistedBy,
			IssuedAt: models.FromUnixMillis(r.BlacklistedAt),
		})
	}
	return out, nil
}

// Health is the queue liveness answer
type Health struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Instance  string `json:"instance"`
	Timestamp int64  `json:"timestamp"`
}

// Health calls the unauthenticated health endpoint
func (c *Client) Health(ctx context.Context) (Health, error) {
	var h Health
	err := c.do(ctx, "relay.Health", http.MethodGet, "/api/health", nil, &h)
	return h, err
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return errors.Internal(op, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Internal(op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(SecretHeader, c.secret)

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Upstream(op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return errors.Upstream(op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(op, resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Upstream(op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func statusError(op string, status int, body []byte) error {
	var payload struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(body, &payload)
	msg := payload.Error
	if msg == "" {
		msg = http.StatusText(status)
	}

	switch {
	case status == http.StatusUnauthorized:
		return errors.Unauthorized(op)
	case status == http.StatusBadRequest:
		return errors.Validation(op, "%s", msg)
	case status == http.StatusNotFound:
		return errors.NotFound(op, "%s", msg)
	default:
		return errors.Upstream(op, fmt.Errorf("queue returned %d: %s", status, msg))
	}
}
