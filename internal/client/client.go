// Package client is the typed HTTP client for the recipebox REST API.
//
// Every operation returns its payload or a *Error. Calls are made exactly once;
// retrying is left to the caller.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pageza/recipebox/internal/types"
)

// DefaultBaseURL points at a locally running API server
const DefaultBaseURL = "http://localhost:8080/api/v1"

// TokenSource supplies the bearer token for authenticated calls. It returns ""
// when there is no session.
type TokenSource interface {
	AccessToken(ctx context.Context) string
}

// TokenFunc adapts a function to TokenSource
type TokenFunc func(ctx context.Context) string

func (f TokenFunc) AccessToken(ctx context.Context) string {
	return f(ctx)
}

// StaticToken always hands out the same token
type StaticToken string

func (s StaticToken) AccessToken(context.Context) string {
	return string(s)
}

type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	userAgent  string
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithUserAgent sets the User-Agent header on every request
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if tokens == nil {
		tokens = StaticToken("")
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		httpClient: http.DefaultClient,
		userAgent:  "recipebox-cli",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root requests are sent to
func (c *Client) BaseURL() string {
	return c.baseURL
}

type enveloped interface {
	APIError() *types.ErrorBody
}

type request struct {
	method      string
	path        string
	body        io.Reader
	contentType string
	public      bool
}

func jsonRequest(method, path string, payload any) (request, error) {
	req := request{method: method, path: path}
	if payload == nil {
		return req, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return req, &Error{Kind: KindDecode, Message: "failed to encode request", Err: err}
	}
	req.body = bytes.NewReader(data)
	req.contentType = "application/json"
	return req, nil
}

func (c *Client) do(ctx context.Context, r request, out enveloped) error {
	httpReq, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, r.body)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: fmt.Sprintf("invalid request: %v", err), Err: err}
	}
	httpReq.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	if r.contentType != "" {
		httpReq.Header.Set("Content-Type", r.contentType)
	}
	if !r.public {
		// An absent session still sends the header; the server decides.
		httpReq.Header.Set("Authorization", "Bearer "+c.tokens.AccessToken(ctx))
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return networkError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return networkError(err)
	}

	success := resp.StatusCode >= 200 && resp.StatusCode < 300
	if len(bytes.TrimSpace(body)) == 0 {
		if success {
			return decodeError(resp.StatusCode, io.ErrUnexpectedEOF)
		}
		return httpError(resp.StatusCode, resp.Status)
	}
	if err := json.Unmarshal(body, out); err != nil {
		if success {
			return decodeError(resp.StatusCode, err)
		}
		return httpError(resp.StatusCode, resp.Status)
	}

	if apiErr := out.APIError(); apiErr != nil {
		status := apiErr.Status
		if status == 0 {
			status = resp.StatusCode
		}
		msg := apiErr.Message
		if msg == "" {
			msg = resp.Status
		}
		return &Error{Kind: KindBackend, Message: msg, Code: apiErr.CodeString(), Status: status}
	}
	if !success {
		return httpError(resp.StatusCode, resp.Status)
	}
	return nil
}

func (c *Client) call(ctx context.Context, method, path string, payload any, out enveloped) error {
	req, err := jsonRequest(method, path, payload)
	if err != nil {
		return err
	}
	return c.do(ctx, req, out)
}

func (c *Client) callPublic(ctx context.Context, method, path string, payload any, out enveloped) error {
	req, err := jsonRequest(method, path, payload)
	if err != nil {
		return err
	}
	req.public = true
	return c.do(ctx, req, out)
}
