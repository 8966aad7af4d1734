// File: internal/browser/client.go
package browser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/json-iterator/go"
	"github.com/xkilldash9x/accountforge/internal/proxy"
	"go.uber.org/zap"
)

// Session is an ephemeral remote browser session. It is owned by the request
// pipeline from creation until explicit retention or cleanup.
type Session struct {
	ID        string     `json:"sessionId"`
	Token     string     `json:"token"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// APIError is the single error channel out of the remote browser service: any
// non-success response surfaces as one of these, carrying the HTTP status and
// body text. The client never silently substitutes a default result.
type APIError struct {
	Op     string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("browser service %s failed: status %d: %s", e.Op, e.Status, e.Body)
}

// ErrNoAuthMode indicates neither the internal service key nor a per-call
// funding proof is available. Detected before any network call is attempted.
var ErrNoAuthMode = errors.New("no browser service authentication mode: internal key and funding proof both absent")

// Dispatcher sends single automation commands to a session. The form
// navigator depends on this interface, not the concrete client.
type Dispatcher interface {
	Send(ctx context.Context, session *Session, cmd Command) (Result, error)
}

// Client talks to the remote antidetect browser service over its REST API.
type Client struct {
	baseURL        string
	internalKey    string
	commandTimeout time.Duration
	httpClient     *http.Client
	logger         *zap.Logger
}

// NewClient builds a browser service client. commandTimeout bounds each
// command round trip; the service's own selector-wait timeouts ride inside it.
func NewClient(baseURL, internalKey string, commandTimeout time.Duration, logger *zap.Logger) *Client {
	if commandTimeout <= 0 {
		commandTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:        baseURL,
		internalKey:    internalKey,
		commandTimeout: commandTimeout,
		// No client-wide timeout: wait commands legitimately run long, and
		// each call carries its own context deadline.
		httpClient: &http.Client{},
		logger:     logger.Named("browser_client"),
	}
}

type createSessionRequest struct {
	Proxy           createSessionProxy `json:"proxy"`
	DurationMinutes int                `json:"durationMinutes"`
}

type createSessionProxy struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	Country  string `json:"country,omitempty"`
}

// CreateSession opens a new remote session bound to the given proxy. Two
// mutually exclusive authentication modes exist: the privileged internal key
// (internal endpoint, no per-call funding) or a caller-supplied funding proof.
// With neither, ErrNoAuthMode is returned before any network call. A single
// attempt is made: a failed creation has no partial side effects to reconcile,
// so there is nothing a retry would fix.
func (c *Client) CreateSession(ctx context.Context, p *proxy.Descriptor, duration time.Duration, fundingProof string) (*Session, error) {
	if c.internalKey == "" && fundingProof == "" {
		return nil, ErrNoAuthMode
	}

	payload := createSessionRequest{
		Proxy: createSessionProxy{
			Host:     p.Host,
			Port:     p.Port,
			Username: p.Username,
			Password: p.Password,
			Country:  p.Country,
		},
		DurationMinutes: int(duration.Minutes()),
	}
	body, err := json.ConfigCompatibleWithStandardLibrary.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal session request: %w", err)
	}

	url := c.baseURL + "/v1/sessions"
	if c.internalKey != "" {
		url = c.baseURL + "/v1/internal/sessions"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build session request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.internalKey != "" {
		req.Header.Set("X-Internal-Key", c.internalKey)
	} else {
		req.Header.Set("X-Payment-Signature", fundingProof)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("browser service unreachable: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Op: "create session", Status: resp.StatusCode, Body: string(raw)}
	}

	var session Session
	if err := json.ConfigCompatibleWithStandardLibrary.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session response: %w", err)
	}
	if session.ID == "" || session.Token == "" {
		return nil, fmt.Errorf("browser service returned incomplete session: %q", string(raw))
	}

	c.logger.Info("Remote browser session created.",
		zap.String("session_id", session.ID),
		zap.String("proxy_country", p.Country),
	)
	return &session, nil
}

// Send issues one command against the session and waits for its structured
// result. Calls against the same session are strictly sequential by design;
// page-state ordering depends on it.
func (c *Client) Send(ctx context.Context, session *Session, cmd Command) (Result, error) {
	// Per-command deadline; wait commands add their own timeout on top so the
	// round trip still gets headroom over the in-page wait.
	timeout := c.commandTimeout
	if cmd.TimeoutMs > 0 {
		timeout += time.Duration(cmd.TimeoutMs) * time.Millisecond
	}
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := json.ConfigCompatibleWithStandardLibrary.Marshal(cmd)
	if err != nil {
		return Result{}, fmt.Errorf("marshal command: %w", err)
	}

	url := fmt.Sprintf("%s/v1/sessions/%s/command", c.baseURL, session.ID)
	req, err := http.NewRequestWithContext(cmdCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build command request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+session.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("command %s: browser service unreachable: %w", cmd.Action, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, &APIError{Op: string(cmd.Action), Status: resp.StatusCode, Body: string(raw)}
	}

	var result Result
	if err := json.ConfigCompatibleWithStandardLibrary.Unmarshal(raw, &result); err != nil {
		return Result{}, fmt.Errorf("unmarshal command result: %w", err)
	}
	return result, nil
}

// DeleteSession tears down a remote session. Best effort at every call site:
// the caller decides whether a failure matters.
func (c *Client) DeleteSession(ctx context.Context, session *Session) error {
	url := fmt.Sprintf("%s/v1/sessions/%s", c.baseURL, session.ID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("build delete request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+session.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("browser service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Op: "delete session", Status: resp.StatusCode, Body: string(raw)}
	}
	return nil
}
