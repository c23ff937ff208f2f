// Package hub is a client for a dataset hub: named benchmark datasets
// resolved over HTTP and cached on disk.
package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultBaseURL is the public dataset hub endpoint.
const DefaultBaseURL = "https://datasets.interpret-eval.org"

// Client fetches datasets from a hub instance.
type Client struct {
	baseURL    string
	cacheDir   string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures the Client during construction.
type Option func(*clientConfig) error

type clientConfig struct {
	httpClient *http.Client
	logger     *slog.Logger
	timeout    time.Duration
	cacheDir   string
}

// New creates a Client for the given hub instance. An empty baseURL
// selects the default hub.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	cfg := &clientConfig{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if cfg.timeout > 0 {
		httpClient.Timeout = cfg.timeout
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	cacheDir := cfg.cacheDir
	if cacheDir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("hub: resolve cache dir: %w", err)
		}
		cacheDir = filepath.Join(base, "interpret-eval", "datasets")
	}

	return &Client{
		baseURL:    baseURL,
		cacheDir:   cacheDir,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *clientConfig) error {
		cfg.httpClient = c
		return nil
	}
}

// WithLogger configures structured logging.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *clientConfig) error {
		cfg.logger = l
		return nil
	}
}

// WithTimeout sets a timeout on the HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(cfg *clientConfig) error {
		cfg.timeout = d
		return nil
	}
}

// WithCacheDir overrides where downloaded datasets are stored.
func WithCacheDir(dir string) Option {
	return func(cfg *clientConfig) error {
		cfg.cacheDir = dir
		return nil
	}
}

// DatasetInfo describes one hub dataset.
type DatasetInfo struct {
	Name       string   `json:"name"`
	SubDataset string   `json:"sub_dataset,omitempty"`
	Task       string   `json:"task"`
	FileType   string   `json:"file_type"`
	Splits     []string `json:"splits"`
}

// errorRS is the hub's error response shape.
type errorRS struct {
	Message string `json:"message"`
}

// APIError is a failed hub response.
type APIError struct {
	Operation  string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: HTTP %d: %s", e.Operation, e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a hub 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Info fetches the dataset descriptor.
func (c *Client) Info(ctx context.Context, name, subDataset string) (*DatasetInfo, error) {
	u := fmt.Sprintf("%s/datasets/%s", c.baseURL, name)
	if subDataset != "" {
		u += "/" + subDataset
	}
	operation := "get dataset info"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", operation, err)
	}

	c.logger.InfoContext(ctx, "hub request", "operation", operation, "url", u)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: do request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, readAPIError(operation, resp)
	}

	var info DatasetInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", operation, err)
	}
	return &info, nil
}

// Fetch downloads one split of a dataset and returns the local file path.
// Downloads are cached; a cached file is returned without a request.
func (c *Client) Fetch(ctx context.Context, info *DatasetInfo, split string) (string, error) {
	operation := "fetch dataset"

	local := filepath.Join(c.cacheDir, info.Name, orDefault(info.SubDataset, "default"),
		fmt.Sprintf("%s.%s", split, info.FileType))
	if _, err := os.Stat(local); err == nil {
		c.logger.DebugContext(ctx, "dataset cache hit", "path", local)
		return local, nil
	}

	u := fmt.Sprintf("%s/datasets/%s", c.baseURL, info.Name)
	if info.SubDataset != "" {
		u += "/" + info.SubDataset
	}
	u += fmt.Sprintf("/%s.%s", split, info.FileType)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("%s: create request: %w", operation, err)
	}

	c.logger.InfoContext(ctx, "hub request", "operation", operation, "url", u)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: do request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", readAPIError(operation, resp)
	}

	if err := os.MkdirAll(filepath.Dir(local), 0755); err != nil {
		return "", fmt.Errorf("%s: create cache dir: %w", operation, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(local), ".download-*")
	if err != nil {
		return "", fmt.Errorf("%s: create temp file: %w", operation, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("%s: write: %w", operation, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("%s: close: %w", operation, err)
	}
	if err := os.Rename(tmp.Name(), local); err != nil {
		return "", fmt.Errorf("%s: finalize: %w", operation, err)
	}
	return local, nil
}

func readAPIError(operation string, resp *http.Response) error {
	respBody, _ := io.ReadAll(resp.Body)
	var e errorRS
	if json.Unmarshal(respBody, &e) == nil && e.Message != "" {
		return &APIError{Operation: operation, StatusCode: resp.StatusCode, Message: e.Message}
	}
	msg := strings.TrimSpace(string(respBody))
	if msg == "" {
		msg = resp.Status
	}
	return &APIError{Operation: operation, StatusCode: resp.StatusCode, Message: msg}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
