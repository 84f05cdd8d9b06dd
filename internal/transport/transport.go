// Package transport is the HTTP layer shared by every backend resource
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"resty.dev/v3"
)

const (
	// DefaultRateLimitRetries is how many times a 429 response is retried
	DefaultRateLimitRetries = 5
	// DefaultRetryWait is the fixed pause before retrying a 429 response
	DefaultRetryWait = time.Second
	// DefaultPageSize is the page size used by GetPage
	DefaultPageSize = 10

	apiKeyHeader = "X-API-Key"
)

// ErrRateLimited is returned when 429 responses outlast the retry budget
var ErrRateLimited = errors.New("rate limited by backend")

// APIError is a non-2xx response from the backend
type APIError struct {
	Status int
	Method string
	Path   string
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Body)
}

// IsNotFound reports whether err is an APIError with status 404
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Config holds the connection settings of a Requester
type Config struct {
	BaseURL          string
	APIKey           string
	Headers          map[string]string
	Timeout          time.Duration
	RateLimitRetries int
	RetryWait        time.Duration
	Logger           *slog.Logger
}

// Requester sends JSON requests to the backend
type Requester struct {
	client    *resty.Client
	logger    *slog.Logger
	retries   int
	retryWait time.Duration
}

// New builds a Requester from cfg. Zero values fall back to the defaults.
func New(cfg Config) *Requester {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	retries := cfg.RateLimitRetries
	if retries < 0 {
		retries = 0
	}
	wait := cfg.RetryWait
	if wait <= 0 {
		wait = DefaultRetryWait
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Accept", "application/json").
		SetHeaders(cfg.Headers)
	if cfg.APIKey != "" {
		client.SetHeader(apiKeyHeader, cfg.APIKey)
	}
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	return &Requester{
		client:    client,
		logger:    logger,
		retries:   retries,
		retryWait: wait,
	}
}

// Close releases idle connections
func (r *Requester) Close() error {
	return r.client.Close()
}

// Request describes one call to the backend
type Request struct {
	Method  string
	Path    string
	Query   map[string]string
	Body    any
	Timeout time.Duration

	// multipart upload
	FileField string
	FileName  string
	File      io.Reader
}

// Do sends req and returns the raw response body. 429 responses are retried
// after a fixed pause; any other non-2xx response is an *APIError.
func (r *Requester) Do(ctx context.Context, req Request) ([]byte, error) {
	for attempt := 0; ; attempt++ {
		rr := r.client.R().SetContext(ctx)
		if len(req.Query) > 0 {
			rr.SetQueryParams(req.Query)
		}
		if req.Body != nil {
			rr.SetBody(req.Body)
		}
		if req.Timeout > 0 {
			rr.SetTimeout(req.Timeout)
		}
		if req.File != nil {
			rr.SetFileReader(req.FileField, req.FileName, req.File)
		}

		r.logger.Debug("Sending request.", "method", req.Method, "path", req.Path, "attempt", attempt+1)
		resp, err := rr.Execute(req.Method, req.Path)
		if err != nil {
			return nil, errors.Wrapf(err, "%s %s", req.Method, req.Path)
		}

		status := resp.StatusCode()
		body := resp.Bytes()
		if status == http.StatusTooManyRequests {
			// a multipart body is consumed by the first attempt
			if attempt >= r.retries || req.File != nil {
				return nil, errors.Wrapf(ErrRateLimited, "%s %s after %d attempts", req.Method, req.Path, attempt+1)
			}
			r.logger.Warn("Rate limited, retrying.", "method", req.Method, "path", req.Path, "wait", r.retryWait)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(r.retryWait):
			}
			continue
		}
		if status < 200 || status > 299 {
			return nil, &APIError{Status: status, Method: req.Method, Path: req.Path, Body: string(body)}
		}
		return body, nil
	}
}

// DoJSON sends req and decodes the response into out, when out is non-nil
func (r *Requester) DoJSON(ctx context.Context, req Request, out any) error {
	body, err := r.Do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrapf(err, "failed to decode %s %s response", req.Method, req.Path)
	}
	return nil
}

// Get decodes the JSON response of GET path into out
func (r *Requester) Get(ctx context.Context, path string, query map[string]string, out any) error {
	return r.DoJSON(ctx, Request{Method: resty.MethodGet, Path: path, Query: query}, out)
}

// Post sends body as JSON and decodes the response into out
func (r *Requester) Post(ctx context.Context, path string, body, out any) error {
	return r.DoJSON(ctx, Request{Method: resty.MethodPost, Path: path, Body: body}, out)
}

// Patch sends body as JSON and decodes the response into out
func (r *Requester) Patch(ctx context.Context, path string, query map[string]string, body, out any) error {
	return r.DoJSON(ctx, Request{Method: resty.MethodPatch, Path: path, Query: query, Body: body}, out)
}

// Delete issues DELETE path and discards the response
func (r *Requester) Delete(ctx context.Context, path string) error {
	_, err := r.Do(ctx, Request{Method: resty.MethodDelete, Path: path})
	return err
}

// GetBytes returns the raw body of GET path
func (r *Requester) GetBytes(ctx context.Context, path string) ([]byte, error) {
	return r.Do(ctx, Request{Method: resty.MethodGet, Path: path})
}

// Upload posts a multipart form with a single file part and decodes the
// response into out
func (r *Requester) Upload(ctx context.Context, path, field, name string, file io.Reader, out any) error {
	return r.DoJSON(ctx, Request{
		Method:    resty.MethodPost,
		Path:      path,
		FileField: field,
		FileName:  name,
		File:      file,
	}, out)
}

type page[T any] struct {
	Items []T `json:"items"`
}

// GetPage fetches one page of a paginated listing. Pages start at 1. A response
// without an items envelope is an empty page.
func GetPage[T any](ctx context.Context, r *Requester, path string, pageNum, size int, query map[string]string) ([]T, error) {
	if pageNum < 1 {
		pageNum = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	params := make(map[string]string, len(query)+2)
	for k, v := range query {
		params[k] = v
	}
	params["page"] = strconv.Itoa(pageNum)
	params["size"] = strconv.Itoa(size)

	body, err := r.Do(ctx, Request{Method: resty.MethodGet, Path: path, Query: params})
	if err != nil {
		return nil, err
	}

	var p page[T]
	if len(body) > 0 && body[0] == '{' {
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, errors.Wrapf(err, "failed to decode page of %s", path)
		}
	}
	if p.Items == nil {
		return []T{}, nil
	}
	return p.Items, nil
}
