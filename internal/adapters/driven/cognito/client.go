package cognito

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/waterapps/portal/internal/core/domain"
	"github.com/waterapps/portal/internal/core/ports/driven"
	"github.com/waterapps/portal/internal/metrics"
)

// Ensure Client implements TokenEndpoint.
var _ driven.TokenEndpoint = (*Client)(nil)

// DefaultTimeout bounds a token exchange when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// Client talks to the Cognito hosted UI token endpoint.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a new token endpoint client.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ExchangeCode performs the authorization_code grant with a PKCE verifier.
func (c *Client) ExchangeCode(ctx context.Context, req driven.CodeExchange) (*driven.TokenResponse, error) {
	params := url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {req.ClientID},
		"code":          {req.Code},
		"redirect_uri":  {req.RedirectURI},
		"code_verifier": {req.CodeVerifier},
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.TokenURL, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		metrics.TokenExchangeDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	metrics.TokenExchangeDuration.WithLabelValues(strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.TokenExchangeError{
			Status: resp.StatusCode,
			Detail: errorDetail(body),
		}
	}

	var tokenResp driven.TokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &tokenResp, nil
}

// errorDetail renders an error body as compact JSON when it parses,
// raw text otherwise.
func errorDetail(body []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, body); err == nil && buf.Len() > 0 {
		return buf.String()
	}
	return string(body)
}
