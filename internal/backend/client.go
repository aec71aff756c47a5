// Package backend is the HTTP client for the document QA service. The
// service is a black box: upload documents with POST /upload, ask questions
// with POST /query. Nothing beyond the two wire contracts is assumed.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultBaseURL matches the reference backend's dev address.
	DefaultBaseURL = "http://localhost:8000"

	defaultQueryTimeout  = 60 * time.Second
	defaultUploadTimeout = 2 * time.Minute
)

// Config holds client configuration.
type Config struct {
	BaseURL       string
	QueryTimeout  time.Duration
	UploadTimeout time.Duration
}

// Client talks to the backend service.
type Client struct {
	baseURL       string
	queryTimeout  time.Duration
	uploadTimeout time.Duration
	httpc         *http.Client
	logger        *zap.Logger
}

// NewClient creates a backend client. Zero-value config fields get defaults;
// a nil logger is replaced with a no-op.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = defaultQueryTimeout
	}
	if cfg.UploadTimeout <= 0 {
		cfg.UploadTimeout = defaultUploadTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		queryTimeout:  cfg.QueryTimeout,
		uploadTimeout: cfg.UploadTimeout,
		// Timeouts are applied per request via context so callers can
		// cancel early on teardown.
		httpc:  &http.Client{},
		logger: logger,
	}
}

type queryRequest struct {
	Query string `json:"query"`
}

type queryResponse struct {
	Status  string          `json:"status"`
	Answer  json.RawMessage `json:"answer"`
	Message string          `json:"message"`
}

// Query posts a question and returns the payload string the resolver should
// interpret: the compact answer JSON when status is "success", otherwise the
// response's message field. Transport failures and non-2xx statuses are
// errors; the caller maps them all to one uniform failure path.
func (c *Client) Query(ctx context.Context, query string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()

	body, err := json.Marshal(queryRequest{Query: query})
	if err != nil {
		return "", fmt.Errorf("marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/query", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create query request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("query request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("query returned status %d: %s", resp.StatusCode, string(b))
	}

	var result queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode query response: %w", err)
	}

	c.logger.Debug("query complete",
		zap.String("status", result.Status),
		zap.Duration("elapsed", time.Since(start)))

	if result.Status == "success" {
		return compactJSON(result.Answer), nil
	}
	return result.Message, nil
}

// Upload sends one or more documents as a multipart form with repeated
// "files" fields. The caller only depends on success or failure; any 2xx is
// acceptance.
func (c *Client) Upload(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("upload: no files")
	}

	ctx, cancel := context.WithTimeout(ctx, c.uploadTimeout)
	defer cancel()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, path := range paths {
		if err := writeFilePart(w, path); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &buf)
	if err != nil {
		return fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("upload returned status %d: %s", resp.StatusCode, string(b))
	}

	c.logger.Info("upload accepted", zap.Int("files", len(paths)))
	return nil
}

func writeFilePart(w *multipart.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	part, err := w.CreateFormFile("files", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("create form file for %s: %w", path, err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

// IsSupportedDocument reports whether a path has an accepted document
// extension (PDF, DOC, DOCX, plus plain text).
func IsSupportedDocument(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".doc", ".docx", ".txt":
		return true
	default:
		return false
	}
}

// compactJSON mirrors the stringification the resolver expects: the answer
// value as a single compact JSON text. Falls back to the raw bytes when the
// payload is not compactable.
func compactJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
