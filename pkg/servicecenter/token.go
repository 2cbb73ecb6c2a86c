package servicecenter

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/contract-intake/internal/resilience"
)

// tokenExpiryMargin is subtracted from the reported lifetime so a token
// is never used right at its expiry boundary.
const tokenExpiryMargin = 5 * time.Minute

// tokenCache obtains OAuth access tokens via the client credentials grant
// and reuses them until shortly before expiry.
type tokenCache struct {
	client *httpClient

	mu      sync.Mutex
	cached  string
	expires time.Time
}

func newTokenCache(c *httpClient) *tokenCache {
	return &tokenCache{client: c}
}

func (t *tokenCache) token(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cached != "" && time.Now().Before(t.expires) {
		return t.cached, nil
	}

	token, expiresIn, err := t.fetch(ctx)
	if err != nil {
		return "", err
	}
	t.cached = token
	t.expires = time.Now().Add(expiresIn - tokenExpiryMargin)
	return t.cached, nil
}

func (t *tokenCache) fetch(ctx context.Context) (string, time.Duration, error) {
	url := t.client.baseURL + "/auth/accesstoken?grant_type=client_credentials"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", 0, eris.Wrap(err, "servicecenter: build token request")
	}

	creds := t.client.cfg.APIKey + ":" + t.client.cfg.APISecret
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(creds)))
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.http.Do(req)
	if err != nil {
		return "", 0, resilience.NewTransientError(eris.Wrap(err, "servicecenter: token request"), 0)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := eris.Errorf("servicecenter: token request: status %d: %s", resp.StatusCode, msg)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return "", 0, resilience.NewTransientError(err, resp.StatusCode)
		}
		return "", 0, err
	}

	// expires_in comes back as either a number or a quoted string
	// depending on the gateway, so accept both.
	var parsed struct {
		AccessToken string          `json:"access_token"`
		ExpiresIn   json.RawMessage `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", 0, eris.Wrap(err, "servicecenter: decode token response")
	}
	if parsed.AccessToken == "" {
		return "", 0, eris.New("servicecenter: token response missing access_token")
	}
	expiresIn := time.Duration(parseSeconds(parsed.ExpiresIn)) * time.Second
	if expiresIn <= tokenExpiryMargin {
		expiresIn = 30 * time.Minute
	}
	return parsed.AccessToken, expiresIn, nil
}

func parseSeconds(raw json.RawMessage) int64 {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
