// Package sheets provides a client for the Google Sheets values API, scoped
// to the append-only operations the intake pipeline needs.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/contract-intake/internal/resilience"
)

const defaultBaseURL = "https://sheets.googleapis.com/v4"

// Client performs spreadsheet operations.
type Client interface {
	// AppendRow appends one row of values to the first sheet of the
	// spreadsheet identified by spreadsheetID.
	AppendRow(ctx context.Context, spreadsheetID string, values []string) error
}

// TokenSource supplies a bearer token for each request. Implementations
// handle caching and refresh; the client just asks.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource returning a fixed token, for tests and
// short-lived jobs.
type StaticToken string

func (t StaticToken) Token(ctx context.Context) (string, error) { return string(t), nil }

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) { c.baseURL = url }
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

// WithRateLimit caps requests per second across all spreadsheets.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		}
	}
}

type httpClient struct {
	tokens  TokenSource
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Sheets API client.
func NewClient(tokens TokenSource, opts ...Option) Client {
	c := &httpClient{
		tokens:  tokens,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type appendRequest struct {
	Values [][]string `json:"values"`
}

type appendResponse struct {
	Updates struct {
		UpdatedRows int `json:"updatedRows"`
	} `json:"updates"`
}

func (c *httpClient) AppendRow(ctx context.Context, spreadsheetID string, values []string) error {
	if spreadsheetID == "" {
		return eris.New("sheets: empty spreadsheet id")
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "sheets: rate limit wait")
		}
	}

	body, err := json.Marshal(appendRequest{Values: [][]string{values}})
	if err != nil {
		return eris.Wrap(err, "sheets: marshal append body")
	}

	url := fmt.Sprintf(
		"%s/spreadsheets/%s/values/A:Z:append?valueInputOption=USER_ENTERED&insertDataOption=INSERT_ROWS",
		c.baseURL, spreadsheetID,
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "sheets: build request")
	}
	req.Header.Set("Content-Type", "application/json")

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return eris.Wrap(err, "sheets: fetch token")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "sheets: append request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := eris.Errorf("sheets: append to %s: status %d: %s", spreadsheetID, resp.StatusCode, msg)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return resilience.NewTransientError(err, resp.StatusCode)
		}
		return err
	}

	var parsed appendResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return eris.Wrap(err, "sheets: decode append response")
	}
	if parsed.Updates.UpdatedRows == 0 {
		return eris.Errorf("sheets: append to %s reported no updated rows", spreadsheetID)
	}
	return nil
}
