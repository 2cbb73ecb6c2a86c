// Package servicecenter provides a client for the service center lead API:
// lead creation, lookup by order number, and bounded acquisition of the
// permanent service center identifier.
package servicecenter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/contract-intake/internal/resilience"
)

const defaultBaseURL = "https://api.hs.homedepot.com/iconx/v1"

// Client performs lead operations against the service center API.
type Client interface {
	// CreateLead submits a new lead and returns the order number assigned
	// to it. The order number is the handle later used to acquire the
	// permanent service center ID.
	CreateLead(ctx context.Context, lead Lead) (string, error)

	// LookupOrder queries for the lead with the given order number. It
	// returns the service center ID and true when the lead has been
	// processed, or empty and false while it is still pending.
	LookupOrder(ctx context.Context, orderNumber string) (string, bool, error)
}

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

// WithRateLimit caps requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		}
	}
}

// Config carries the credentials and store identity for the API.
type Config struct {
	APIKey        string
	APISecret     string
	MVendorID     int
	StoreID       string
	ReferralStore string
}

type httpClient struct {
	cfg     Config
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	tokens  *tokenCache
}

// NewClient creates a service center API client.
func NewClient(cfg Config, opts ...Option) Client {
	c := &httpClient{
		cfg:     cfg,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	if c.cfg.ReferralStore == "" {
		c.cfg.ReferralStore = c.cfg.StoreID
	}
	for _, o := range opts {
		o(c)
	}
	c.tokens = newTokenCache(c)
	return c
}

// newOrderNumber generates a unique order number for a lead submission.
func newOrderNumber() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "ORD" + strings.ToUpper(id[:16])
}

func (c *httpClient) CreateLead(ctx context.Context, lead Lead) (string, error) {
	if err := lead.validate(); err != nil {
		return "", &CreationError{Err: err}
	}

	orderNumber := lead.OrderNumber
	if orderNumber == "" {
		orderNumber = newOrderNumber()
	}

	payload := buildLeadPayload(lead, orderNumber, c.cfg)
	var parsed batchResponse
	if err := c.post(ctx, "/leads/pobatch", payload, &parsed); err != nil {
		if resilience.IsTransient(err) {
			return "", err
		}
		return "", &CreationError{OrderNumber: orderNumber, Err: err}
	}
	if msg := parsed.errorMessage(); msg != "" {
		return "", &CreationError{OrderNumber: orderNumber, Err: eris.New(msg)}
	}
	return orderNumber, nil
}

func (c *httpClient) LookupOrder(ctx context.Context, orderNumber string) (string, bool, error) {
	if orderNumber == "" {
		return "", false, eris.New("servicecenter: empty order number")
	}

	payload := buildLookupPayload(orderNumber)
	var parsed lookupResponse
	if err := c.post(ctx, "/leads/lookup", payload, &parsed); err != nil {
		return "", false, err
	}

	leads := parsed.Output.ListOfLeads.Headers
	if len(leads) == 0 || leads[0].ID == "" {
		return "", false, nil
	}
	return leads[0].ID, true, nil
}

func (c *httpClient) post(ctx context.Context, path string, payload, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "servicecenter: rate limit wait")
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrap(err, "servicecenter: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "servicecenter: build request")
	}

	token, err := c.tokens.token(ctx)
	if err != nil {
		return err
	}
	// The API reads the token from a bespoke appToken header, not from
	// an Authorization bearer.
	req.Header.Set("appToken", token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return resilience.NewTransientError(eris.Wrapf(err, "servicecenter: %s request", path), 0)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := eris.Errorf("servicecenter: %s: status %d: %s", path, resp.StatusCode, msg)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return resilience.NewTransientError(err, resp.StatusCode)
		}
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return eris.Wrapf(err, "servicecenter: decode %s response", path)
	}
	return nil
}

// CreationError is a terminal lead creation failure. Callers must not
// retry the submission or proceed to ID acquisition.
type CreationError struct {
	OrderNumber string
	Err         error
}

func (e *CreationError) Error() string {
	if e.OrderNumber == "" {
		return fmt.Sprintf("servicecenter: lead creation rejected: %v", e.Err)
	}
	return fmt.Sprintf("servicecenter: lead creation failed for %s: %v", e.OrderNumber, e.Err)
}

func (e *CreationError) Unwrap() error { return e.Err }
