package usageapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bnema/claude-usage-tracker/internal/domain"
	"github.com/bnema/claude-usage-tracker/internal/ports"
)

const (
	DefaultBaseURL   = "https://claude.ai/api"
	DefaultUserAgent = "Claude Usage Tracker/1.0"
	DefaultTimeout   = 10 * time.Second

	sessionCookieName = "sessionKey"
	maxResponseBytes  = 1 << 20
)

// Client performs the single authenticated GET against the usage endpoint.
// All failures (transport, non-2xx status, malformed body) collapse into
// errors wrapping domain.ErrFetchFailed; the wrapped detail is kept for
// display only.
type Client struct {
	baseURL    string
	userAgent  string
	creds      domain.Credentials
	httpClient *http.Client
}

var _ ports.UsageSource = (*Client)(nil)

func New(baseURL, userAgent string, creds domain.Credentials, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	return &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		creds:      creds,
		httpClient: httpClient,
	}
}

func (c *Client) Fetch(ctx context.Context) (domain.UsageSnapshot, error) {
	endpoint := strings.TrimRight(c.baseURL, "/") + "/organizations/" + url.PathEscape(c.creds.OrgID) + "/usage"

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.UsageSnapshot{}, fmt.Errorf("%w: create request: %w", domain.ErrFetchFailed, err)
	}
	request.Header.Set("User-Agent", c.userAgent)
	request.Header.Set("Accept", "application/json")
	request.AddCookie(&http.Cookie{Name: sessionCookieName, Value: c.creds.SessionKey})

	response, err := c.httpClient.Do(request)
	if err != nil {
		return domain.UsageSnapshot{}, fmt.Errorf("%w: perform request: %w", domain.ErrFetchFailed, err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return domain.UsageSnapshot{}, fmt.Errorf("%w: read response: %w", domain.ErrFetchFailed, err)
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return domain.UsageSnapshot{}, fmt.Errorf("%w: status %d: %s", domain.ErrFetchFailed, response.StatusCode, strings.TrimSpace(string(body)))
	}

	var snapshot domain.UsageSnapshot
	if err := json.Unmarshal(body, &snapshot); err != nil {
		return domain.UsageSnapshot{}, fmt.Errorf("%w: decode payload: %w", domain.ErrFetchFailed, err)
	}

	return snapshot, nil
}
