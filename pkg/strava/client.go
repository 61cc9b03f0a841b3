package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"stravadump/pkg/logger"
)

const bodyPreviewLimit = 200

// Client issues paginated requests against the Strava API. It classifies
// every HTTP response into a FetchOutcome; retry policy lives with the
// caller, not here.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     logger.Logger
}

// NewClient creates a new Strava API client.
func NewClient(baseURL string, timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if baseURL == "" {
		baseURL = BaseURL
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		logger:  log,
	}
}

// FetchActivitiesPage issues a single GET for one page of athlete
// activities and classifies the response. A non-nil error is returned only
// when the request could not be built or sent at all.
func (c *Client) FetchActivitiesPage(ctx context.Context, token string, window Window, page, perPage int) (*FetchOutcome, error) {
	url := ActivitiesURL(c.baseURL, window, page, perPage)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	c.logger.DebugWithFields("sending activities request", map[string]interface{}{
		"url":  url,
		"page": page,
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("activities request failed", map[string]interface{}{
			"url":      url,
			"page":     page,
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.DebugWithFields("activities request completed", map[string]interface{}{
		"url":      url,
		"page":     page,
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return c.classify(resp, page)
}

// classify turns an HTTP response into a tagged FetchOutcome.
func (c *Client) classify(resp *http.Response, page int) (*FetchOutcome, error) {
	outcome := &FetchOutcome{
		Status: resp.StatusCode,
		Usage: RateUsage{
			Usage: resp.Header.Get("X-RateLimit-Usage"),
			Limit: resp.Header.Get("X-RateLimit-Limit"),
		},
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		outcome.Kind = OutcomeUnauthorized
		c.logger.WarnWithFields("credential rejected", map[string]interface{}{
			"status": resp.StatusCode,
			"page":   page,
		})
		return outcome, nil

	case resp.StatusCode == http.StatusTooManyRequests:
		outcome.Kind = OutcomeThrottled
		if header := resp.Header.Get("Retry-After"); header != "" {
			if seconds, err := strconv.Atoi(header); err == nil && seconds >= 0 {
				outcome.RetryAfter = time.Duration(seconds) * time.Second
				outcome.HasRetryAfter = true
			}
		}
		c.logger.WarnWithFields("rate limited by server", map[string]interface{}{
			"status":          resp.StatusCode,
			"page":            page,
			"has_retry_after": outcome.HasRetryAfter,
		})
		return outcome, nil

	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		body, _ := io.ReadAll(resp.Body)
		outcome.Kind = OutcomeUpstreamError
		outcome.Body = preview(body)
		c.logger.ErrorWithFields("unexpected API response", map[string]interface{}{
			"status": resp.StatusCode,
			"page":   page,
			"body":   outcome.Body,
		})
		return outcome, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		outcome.Kind = OutcomeUpstreamError
		outcome.Body = fmt.Sprintf("failed to read response body: %v", err)
		return outcome, nil
	}

	var records []json.RawMessage
	if err := json.Unmarshal(body, &records); err != nil {
		outcome.Kind = OutcomeUpstreamError
		outcome.Body = preview(body)
		c.logger.ErrorWithFields("response body is not a JSON array", map[string]interface{}{
			"status": resp.StatusCode,
			"page":   page,
			"error":  err.Error(),
			"body":   outcome.Body,
		})
		return outcome, nil
	}
	// A JSON null unmarshals into a nil slice without error. That is not an
	// activity list, and must not read as an empty final page.
	if records == nil {
		outcome.Kind = OutcomeUpstreamError
		outcome.Body = preview(body)
		c.logger.ErrorWithFields("response body is not a JSON array", map[string]interface{}{
			"status": resp.StatusCode,
			"page":   page,
			"body":   outcome.Body,
		})
		return outcome, nil
	}

	outcome.Kind = OutcomeSuccess
	outcome.Records = records
	return outcome, nil
}

func preview(body []byte) string {
	s := string(body)
	if len(s) > bodyPreviewLimit {
		return s[:bodyPreviewLimit] + "..."
	}
	return s
}
