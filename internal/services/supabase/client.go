// Package supabase provides a PostgREST client for the hosted Supabase project.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// CodeNoSingleRow is the PostgREST error code for a single-object request that
// matched zero or several rows.
const CodeNoSingleRow = "PGRST116"

// ErrUnexpectedStatusCode is returned when PostgREST replies with a non-2xx
// status and no parseable error body.
var ErrUnexpectedStatusCode = errors.New("unexpected status code")

// maxResponseSize caps how much of a response body is read.
const maxResponseSize = 10 * 1024 * 1024

// APIError is the error body returned by PostgREST.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("postgrest %d %s: %s (%s)", e.Status, e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("postgrest %d %s: %s", e.Status, e.Code, e.Message)
}

// IsNoSingleRow reports whether err is the PostgREST "no single row" error.
func IsNoSingleRow(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == CodeNoSingleRow
}

// Filter is a column equality filter. A nil value filters on IS NULL.
type Filter struct {
	Column string
	Value  *string
}

// Eq builds an equality filter.
func Eq(column string, value *string) Filter {
	return Filter{Column: column, Value: value}
}

// Client talks to the PostgREST endpoint of a Supabase project.
type Client struct {
	httpClient *http.Client
	restURL    string
	apiKey     string
}

// NewClient creates a client for the project at projectURL.
func NewClient(projectURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		restURL:    projectURL + "/rest/v1",
		apiKey:     apiKey,
	}
}

// SelectSingle fetches exactly one row matching all filters into out.
func (c *Client) SelectSingle(ctx context.Context, table string, filters []Filter, out any) error {
	q := url.Values{}
	q.Set("select", "*")
	applyFilters(q, filters)

	return c.do(ctx, http.MethodGet, table, q, nil, true, out)
}

// Select fetches rows matching all filters into out, which must be a slice
// pointer.
func (c *Client) Select(ctx context.Context, table, columns string, filters []Filter, limit int, out any) error {
	q := url.Values{}
	q.Set("select", columns)
	applyFilters(q, filters)
	if limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", limit))
	}

	return c.do(ctx, http.MethodGet, table, q, nil, false, out)
}

// InsertSingle inserts row and decodes the created row into out.
func (c *Client) InsertSingle(ctx context.Context, table string, row any, out any) error {
	return c.do(ctx, http.MethodPost, table, url.Values{"select": {"*"}}, row, true, out)
}

// UpdateSingle patches the single row matching filters and decodes the result
// into out.
func (c *Client) UpdateSingle(ctx context.Context, table string, filters []Filter, row any, out any) error {
	q := url.Values{"select": {"*"}}
	applyFilters(q, filters)

	return c.do(ctx, http.MethodPatch, table, q, row, true, out)
}

func applyFilters(q url.Values, filters []Filter) {
	for _, f := range filters {
		if f.Value == nil {
			q.Add(f.Column, "is.null")
			continue
		}
		q.Add(f.Column, "eq."+*f.Value)
	}
}

func (c *Client) do(ctx context.Context, method, table string, query url.Values, body any, single bool, out any) (err error) {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	endpoint := c.restURL + "/" + url.PathEscape(table)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", "return=representation")
	}
	if single {
		req.Header.Set("Accept", "application/vnd.pgrst.object+json")
	} else {
		req.Header.Set("Accept", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close response body: %w", closeErr)
		}
	}()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		if jsonErr := json.Unmarshal(respBody, apiErr); jsonErr != nil || (apiErr.Code == "" && apiErr.Message == "") {
			return fmt.Errorf("%w: %d: %s", ErrUnexpectedStatusCode, resp.StatusCode, string(respBody))
		}
		return apiErr
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
