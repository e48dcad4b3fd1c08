// Package client is a typed REST client for the records API. The CLI uses
// it to fetch report data and render documents locally.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/barangay/records/internal/platform/reporting"
)

const defaultTimeout = 30 * time.Second

// Error is a failed API call. Message is the envelope's message.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("api error: %d %s", e.Status, e.Message)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// Session is the login response.
type Session struct {
	Token        string    `json:"token"`
	ExpiresAt    time.Time `json:"expires_at"`
	LandingRoute string    `json:"landing_route"`
	User         struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		FullName string `json:"full_name"`
		Role     string `json:"role"`
	} `json:"user"`
}

// ReportInfo describes one predefined report.
type ReportInfo struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Parameters  []string `json:"parameters"`
}

type Client struct {
	http *resty.Client
}

type Option func(*resty.Client)

func WithTimeout(d time.Duration) Option {
	return func(c *resty.Client) { c.SetTimeout(d) }
}

func WithToken(token string) Option {
	return func(c *resty.Client) { c.SetAuthToken(token) }
}

// New targets baseURL, for example http://localhost:8000. The /api/v1
// prefix is added here.
func New(baseURL string, opts ...Option) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/") + "/api/v1").
		SetTimeout(defaultTimeout).
		SetHeader("Accept", "application/json")
	for _, opt := range opts {
		opt(rc)
	}
	return &Client{http: rc}
}

func (c *Client) SetToken(token string) {
	c.http.SetAuthToken(token)
}

func apiError(resp *resty.Response) error {
	var env envelope
	_ = json.Unmarshal(resp.Body(), &env)
	return &Error{Status: resp.StatusCode(), Message: env.Message}
}

// getData performs a GET and decodes the envelope's data into out.
func (c *Client) getData(ctx context.Context, path string, query map[string]string, out interface{}) error {
	resp, err := c.http.R().SetContext(ctx).SetQueryParams(query).Get(path)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	if resp.IsError() {
		return apiError(resp)
	}
	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s data: %w", path, err)
	}
	return nil
}

// Login authenticates and keeps the token for later calls.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	resp, err := c.http.R().SetContext(ctx).
		SetBody(map[string]string{"username": username, "password": password}).
		Post("/auth/login")
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return nil, fmt.Errorf("decode login: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(env.Data, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	c.SetToken(sess.Token)
	return &sess, nil
}

func (c *Client) Reports(ctx context.Context) ([]ReportInfo, error) {
	var out []ReportInfo
	if err := c.getData(ctx, "/reports", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Dashboard(ctx context.Context) ([]reporting.MeasureResult, error) {
	var out []reporting.MeasureResult
	if err := c.getData(ctx, "/reports/dashboard", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Report fetches the document behind a report as data. id is a catalog id
// or "age-distribution".
func (c *Client) Report(ctx context.Context, id string, params map[string]string) (*reporting.Document, error) {
	query := map[string]string{"format": reporting.FormatJSON}
	for k, v := range params {
		query[k] = v
	}
	var doc reporting.Document
	if err := c.getData(ctx, "/reports/"+id, query, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Download fetches a report rendered by the server. The file name comes
// from Content-Disposition.
func (c *Client) Download(ctx context.Context, id, format string, params map[string]string) ([]byte, string, error) {
	query := map[string]string{"format": format}
	for k, v := range params {
		query[k] = v
	}
	resp, err := c.http.R().SetContext(ctx).SetQueryParams(query).Get("/reports/" + id)
	if err != nil {
		return nil, "", fmt.Errorf("download report %s: %w", id, err)
	}
	if resp.IsError() {
		return nil, "", apiError(resp)
	}
	name := id + "." + format
	if _, p, err := mime.ParseMediaType(resp.Header().Get("Content-Disposition")); err == nil && p["filename"] != "" {
		name = p["filename"]
	}
	return resp.Body(), name, nil
}
