// Package client provides a Go client for the Relic blob server API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Common constants
const (
	// Default timeout for HTTP requests
	DefaultTimeout = 60 * time.Second

	// Standard content types
	ContentTypeJSON   = "application/json"
	ContentTypeBinary = "application/octet-stream"
)

// Common error types
var (
	ErrNetworkError        = errors.New("network error occurred")
	ErrNotFound            = errors.New("resource not found")
	ErrAuthenticationError = errors.New("authentication failed")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrBadRequest          = errors.New("bad request")
	ErrConflict            = errors.New("conflict")
	ErrServerError         = errors.New("server error")
)

// Auth handles authentication for HTTP requests
type Auth interface {
	ApplyAuth(req *http.Request) error
}

// BasicAuth implements basic username/password authentication
type BasicAuth struct {
	Username string
	Password string
}

// ApplyAuth applies basic authentication to the request
func (a *BasicAuth) ApplyAuth(req *http.Request) error {
	req.SetBasicAuth(a.Username, a.Password)
	return nil
}

// TokenAuth implements token-based authentication
type TokenAuth struct {
	Token string
}

// ApplyAuth applies token authentication to the request
func (a *TokenAuth) ApplyAuth(req *http.Request) error {
	if a.Token != "" {
		req.Header.Set("Authorization", "Bearer "+a.Token)
	}
	return nil
}

// Repository represents a Relic repository
type Repository struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Owner     string `json:"owner"`
	OwnerID   uint   `json:"owner_id"`
	Private   bool   `json:"private"`
	Bare      bool   `json:"bare"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// RepoRequest represents the data needed to create or update a repository
type RepoRequest struct {
	Name    string `json:"name"`
	Private bool   `json:"private"`
	Bare    bool   `json:"bare"`
}

// Client represents the Relic client for interacting with a blob server
type Client struct {
	httpClient    *http.Client
	baseURL       string
	auth          Auth
	verbose       bool
	requestLogger func(string, ...interface{})
}

// ClientOption is a function that configures a Client
type ClientOption func(*Client)

// WithTimeout sets the timeout for HTTP requests
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithBasicAuth sets basic authentication
func WithBasicAuth(username, password string) ClientOption {
	return func(c *Client) {
		c.auth = &BasicAuth{
			Username: username,
			Password: password,
		}
	}
}

// WithTokenAuth sets token-based authentication
func WithTokenAuth(token string) ClientOption {
	return func(c *Client) {
		c.auth = &TokenAuth{
			Token: token,
		}
	}
}

// WithVerbose enables or disables verbose output
func WithVerbose(verbose bool) ClientOption {
	return func(c *Client) {
		c.verbose = verbose
	}
}

// WithLogger sets a custom logger function
func WithLogger(logger func(string, ...interface{})) ClientOption {
	return func(c *Client) {
		c.requestLogger = logger
	}
}

// NewClient creates a new Relic client
func NewClient(baseURL string, options ...ClientOption) *Client {
	// Ensure baseURL ends with a slash
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	client := &Client{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		baseURL: baseURL,
		verbose: false,
		requestLogger: func(format string, args ...interface{}) {
			// Default is to do nothing
		},
	}

	for _, option := range options {
		option(client)
	}

	return client
}

// SetAuth sets the authentication method
func (c *Client) SetAuth(auth Auth) {
	c.auth = auth
}

// logRequest logs a request if verbose mode is enabled
func (c *Client) logRequest(format string, args ...interface{}) {
	if c.verbose {
		c.requestLogger(format, args...)
	}
}

// buildURL builds a full URL from the path
func (c *Client) buildURL(urlPath string) string {
	return c.baseURL + strings.TrimPrefix(urlPath, "/")
}

// Do performs an HTTP request and returns the response
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.auth != nil {
		if err := c.auth.ApplyAuth(req); err != nil {
			return nil, fmt.Errorf("authentication error: %w", err)
		}
	}

	req.Header.Set("User-Agent", "Relic-Client/1.0")

	c.logRequest("Request: %s %s", req.Method, req.URL.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		errMsg := strings.TrimSpace(string(body))

		switch resp.StatusCode {
		case http.StatusNotFound:
			return nil, fmt.Errorf("%w: %s", ErrNotFound, errMsg)
		case http.StatusUnauthorized:
			return nil, fmt.Errorf("%w: %s", ErrAuthenticationError, errMsg)
		case http.StatusForbidden:
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, errMsg)
		case http.StatusBadRequest:
			return nil, fmt.Errorf("%w: %s", ErrBadRequest, errMsg)
		case http.StatusConflict:
			return nil, fmt.Errorf("%w: %s", ErrConflict, errMsg)
		default:
			return nil, fmt.Errorf("%w: %s (status code: %d)", ErrServerError, errMsg, resp.StatusCode)
		}
	}

	return resp, nil
}

// Get performs a GET request and returns the response body
func (c *Client) Get(ctx context.Context, urlPath string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(urlPath), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", ContentTypeJSON)

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// Post performs a POST request with JSON data and returns the response body
func (c *Client) Post(ctx context.Context, urlPath string, data interface{}) ([]byte, error) {
	var body io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal data: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL(urlPath), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", ContentTypeJSON)
	req.Header.Set("Accept", ContentTypeJSON)

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// Put performs a PUT request with JSON data and returns the response body
func (c *Client) Put(ctx context.Context, urlPath string, data interface{}) ([]byte, error) {
	var body io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal data: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.buildURL(urlPath), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", ContentTypeJSON)
	req.Header.Set("Accept", ContentTypeJSON)

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// Delete performs a DELETE request
func (c *Client) Delete(ctx context.Context, urlPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.buildURL(urlPath), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// PostBinary performs a POST request with a raw body and returns the
// response body
func (c *Client) PostBinary(ctx context.Context, urlPath string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL(urlPath), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", ContentTypeJSON)

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// Login exchanges credentials for a bearer token and configures the
// client to use it.
func (c *Client) Login(ctx context.Context, username, password string) error {
	body, err := c.Post(ctx, "/login", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return err
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("failed to parse login response: %w", err)
	}

	c.auth = &TokenAuth{Token: resp.Token}
	return nil
}

// ListRepositories lists repositories owned by a user
func (c *Client) ListRepositories(ctx context.Context, username string) ([]Repository, error) {
	body, err := c.Get(ctx, "/repos/"+username)
	if err != nil {
		return nil, err
	}

	var repos []Repository
	if err := json.Unmarshal(body, &repos); err != nil {
		return nil, fmt.Errorf("failed to parse repository list: %w", err)
	}
	return repos, nil
}

// GetRepository retrieves repository metadata
func (c *Client) GetRepository(ctx context.Context, username, repoName string) (*Repository, error) {
	body, err := c.Get(ctx, fmt.Sprintf("/%s/%s", username, repoName))
	if err != nil {
		return nil, err
	}

	var repo Repository
	if err := json.Unmarshal(body, &repo); err != nil {
		return nil, fmt.Errorf("failed to parse repository: %w", err)
	}
	return &repo, nil
}

// CreateRepository creates a new repository
func (c *Client) CreateRepository(ctx context.Context, request *RepoRequest) (*Repository, error) {
	body, err := c.Post(ctx, "/repos", request)
	if err != nil {
		return nil, err
	}

	var repo Repository
	if err := json.Unmarshal(body, &repo); err != nil {
		return nil, fmt.Errorf("failed to parse repository: %w", err)
	}
	return &repo, nil
}

// DeleteRepository deletes a repository
func (c *Client) DeleteRepository(ctx context.Context, username, repoName string) error {
	return c.Delete(ctx, fmt.Sprintf("/%s/%s", username, repoName))
}
