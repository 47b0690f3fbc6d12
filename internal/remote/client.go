package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ruminaider/salon-sync/internal/profile"
	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

// Client talks to the salon backend over HTTP/JSON. It implements
// editor.Store.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithToken sends token as a bearer credential on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New returns a client for the backend rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope mirrors the server's response wrapper.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// GetProfile fetches a customer's profile within a salon. A missing profile
// is reported as (nil, nil).
func (c *Client) GetProfile(ctx context.Context, subjectID, scopeID string) (*profile.ServerProfile, error) {
	path := "/api/customer-records/profile/" + url.PathEscape(subjectID) + "?salon_id=" + url.QueryEscape(scopeID)
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var out struct {
		Profile *profile.ServerProfile `json:"profile"`
	}
	if err := c.do(req, "get profile", &out); err != nil {
		return nil, err
	}
	return out.Profile, nil
}

// SaveProfile replaces the stored profile with payload.
func (c *Client) SaveProfile(ctx context.Context, payload profile.SavePayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/customer-records/profile", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, "save profile", nil)
}

// UploadAsset uploads file as multipart form data.
func (c *Client) UploadAsset(ctx context.Context, file profile.File) (profile.Photo, error) {
	if file.Body == nil {
		return profile.Photo{}, fmt.Errorf("upload asset: empty file")
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.Name))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		return profile.Photo{}, fmt.Errorf("creating form part: %w", err)
	}
	if _, err := io.Copy(part, file.Body); err != nil {
		return profile.Photo{}, fmt.Errorf("reading %s: %w", file.Name, err)
	}
	if err := mw.Close(); err != nil {
		return profile.Photo{}, fmt.Errorf("closing form: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/uploads", &buf)
	if err != nil {
		return profile.Photo{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var photo profile.Photo
	if err := c.do(req, "upload asset", &photo); err != nil {
		return profile.Photo{}, err
	}
	return photo, nil
}

// SubscribeResult is the outcome of a newsletter subscription.
type SubscribeResult struct {
	Message string `json:"message"`
}

// Subscribe adds email to the newsletter.
func (c *Client) Subscribe(ctx context.Context, email string) (*SubscribeResult, error) {
	body, err := json.Marshal(map[string]string{"email": email})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/newsletter/subscribe", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var out SubscribeResult
	if err := c.do(req, "subscribe", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListTables returns the table names the backend reports.
func (c *Client) ListTables(ctx context.Context) ([]string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/tables", nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Tables []string `json:"tables"`
	}
	if err := c.do(req, "list tables", &out); err != nil {
		return nil, err
	}
	return out.Tables, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// do executes req and decodes the envelope's data into out (when non-nil).
func (c *Client) do(req *http.Request, op string, out any) error {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("request completed",
		zap.String("op", op),
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
		zap.String("request_id", req.Header.Get("X-Request-ID")),
	)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode < 300 && len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode >= 300 || env.Status == "error" {
		apiErr := &APIError{Op: op, StatusCode: resp.StatusCode}
		if decodeErr == nil {
			apiErr.Message = env.Message
		}
		return apiErr
	}
	if decodeErr != nil {
		return fmt.Errorf("%s: decoding response: %w", op, decodeErr)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s: decoding data: %w", op, err)
	}
	return nil
}
