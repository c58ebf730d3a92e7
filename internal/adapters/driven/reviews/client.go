package reviews

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

// Ensure Client implements ReviewAPI.
var _ driven.ReviewAPI = (*Client)(nil)

const (
	defaultListMessage     = "Failed to load pending reviews."
	defaultModerateMessage = "Failed to update review."
)

// Client talks to the review moderation API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a review API client. An empty baseURL leaves the client
// unconfigured.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Configured reports whether a base URL is set.
func (c *Client) Configured() bool {
	return c.baseURL != ""
}

// ListPending fetches pending reviews.
func (c *Client) ListPending(ctx context.Context, bearer string, limit int) ([]*domain.Review, error) {
	endpoint := fmt.Sprintf("%s/reviews?status=pending&limit=%d", c.baseURL, limit)

	var out struct {
		Reviews []*domain.Review `json:"reviews"`
	}
	if err := c.do(ctx, "list_pending", http.MethodGet, endpoint, bearer, nil, defaultListMessage, &out); err != nil {
		return nil, err
	}
	if out.Reviews == nil {
		return []*domain.Review{}, nil
	}
	return out.Reviews, nil
}

// Moderate posts a decision for a review.
func (c *Client) Moderate(ctx context.Context, bearer, reviewID string, req domain.ModerationRequest) (*domain.ModerationResult, error) {
	endpoint := c.baseURL + "/reviews/" + url.PathEscape(reviewID) + "/moderate"

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var result domain.ModerationResult
	if err := c.do(ctx, "moderate", http.MethodPost, endpoint, bearer, body, defaultModerateMessage, &result); err != nil {
		return nil, err
	}
	if result.ReviewID == "" {
		result.ReviewID = reviewID
	}
	if result.Decision == "" {
		result.Decision = req.Decision
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, operation, method, endpoint, bearer string, payload []byte, failureMessage string, out any) error {
	if !c.Configured() {
		return domain.ErrReviewAPINotConfigured
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ReviewAPIRequests.WithLabelValues(operation, "error").Inc()
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	metrics.ReviewAPIRequests.WithLabelValues(operation, strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(body, &apiErr)
		msg := apiErr.Message
		if msg == "" {
			msg = failureMessage
		}
		return &domain.ReviewAPIError{Status: resp.StatusCode, Message: msg}
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
