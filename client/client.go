package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"resty.dev/v3"

	"github.com/sokinpui/maano.go/model"
)

const defaultTimeout = 2 * time.Minute

// ChatRequest holds parameters for a single-model chat.
type ChatRequest struct {
	Message   string         `json:"message"`
	ModelID   string         `json:"modelId"`
	ContextID *string        `json:"contextId,omitempty"`
	Options   *model.Options `json:"options,omitempty"`
}

// CompareRequest holds parameters for a side-by-side comparison.
type CompareRequest struct {
	Message string         `json:"message"`
	Models  []string       `json:"models"`
	Options *model.Options `json:"options,omitempty"`
}

type ChatResult struct {
	Message        string         `json:"message"`
	Model          string         `json:"model"`
	Provider       model.Provider `json:"provider"`
	Metadata       model.Metadata `json:"metadata"`
	ContextID      *string        `json:"contextId"`
	ConversationID string         `json:"conversationId"`
}

type CompareResult struct {
	Message        string           `json:"message"`
	Responses      []model.Envelope `json:"responses"`
	Timestamp      string           `json:"timestamp"`
	ConversationID string           `json:"conversationId"`
}

type Recommendation struct {
	Prompt            string             `json:"prompt"`
	Subject           string             `json:"subject,omitempty"`
	RecommendedModels []model.Descriptor `json:"recommendedModels"`
	Reasoning         string             `json:"reasoning"`
}

// Detail is one field rejected by server-side validation.
type Detail struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"msg"`
}

// APIError is returned when the server answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
	Model      string
	Details    []Detail
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "maano: %d %s", e.StatusCode, e.Message)
	if e.Model != "" {
		fmt.Fprintf(&b, " (model %s)", e.Model)
	}
	for _, d := range e.Details {
		fmt.Fprintf(&b, "; %s: %s", d.Field, d.Message)
	}
	return b.String()
}

// Client is an interface for interacting with the Maano comparison service.
type Client interface {
	// Models lists the registered models in catalog order.
	Models(ctx context.Context) ([]model.Descriptor, error)

	// Chat sends one prompt to one model. A provider failure is returned as
	// an *APIError carrying the model id.
	Chat(ctx context.Context, req ChatRequest) (*ChatResult, error)

	// Compare sends one prompt to several models at once.
	Compare(ctx context.Context, req CompareRequest) (*CompareResult, error)

	// Recommend asks which models suit prompt.
	Recommend(ctx context.Context, prompt, subject string) (*Recommendation, error)

	// Login exchanges credentials for a token and uses it on later calls.
	Login(ctx context.Context, email, password string) (string, error)

	// Close releases idle connections.
	Close() error
}

// Option configures the client returned by New.
type Option func(*resty.Client)

// WithToken authenticates every request with a bearer token.
func WithToken(token string) Option {
	return func(c *resty.Client) { c.SetAuthToken(token) }
}

func WithTimeout(d time.Duration) Option {
	return func(c *resty.Client) { c.SetTimeout(d) }
}

type httpClient struct {
	rest *resty.Client
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) Client {
	rest := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(defaultTimeout).
		SetHeader("Accept", "application/json")
	for _, opt := range opts {
		opt(rest)
	}
	return &httpClient{rest: rest}
}

func (c *httpClient) Close() error {
	return c.rest.Close()
}

type response[T any] struct {
	Success bool     `json:"success"`
	Data    T        `json:"data"`
	Error   string   `json:"error"`
	Model   string   `json:"model"`
	Details []Detail `json:"details"`
}

func call[T any](ctx context.Context, c *httpClient, method, path string, body any) (T, error) {
	var ok, failed response[T]
	req := c.rest.R().SetContext(ctx).SetResult(&ok).SetError(&failed)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		var zero T
		msg := failed.Error
		if msg == "" {
			msg = resp.Status()
		}
		return zero, &APIError{
			StatusCode: resp.StatusCode(),
			Message:    msg,
			Model:      failed.Model,
			Details:    failed.Details,
		}
	}
	return ok.Data, nil
}

func (c *httpClient) Models(ctx context.Context) ([]model.Descriptor, error) {
	return call[[]model.Descriptor](ctx, c, http.MethodGet, "/models", nil)
}

func (c *httpClient) Chat(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	res, err := call[ChatResult](ctx, c, http.MethodPost, "/chat", req)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *httpClient) Compare(ctx context.Context, req CompareRequest) (*CompareResult, error) {
	res, err := call[CompareResult](ctx, c, http.MethodPost, "/compare", req)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *httpClient) Recommend(ctx context.Context, prompt, subject string) (*Recommendation, error) {
	body := map[string]string{"prompt": prompt}
	if subject != "" {
		body["subject"] = subject
	}
	res, err := call[Recommendation](ctx, c, http.MethodPost, "/recommend", body)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *httpClient) Login(ctx context.Context, email, password string) (string, error) {
	type loginData struct {
		Token string `json:"token"`
	}
	res, err := call[loginData](ctx, c, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return "", err
	}
	c.rest.SetAuthToken(res.Token)
	return res.Token, nil
}
