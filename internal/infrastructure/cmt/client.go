package cmt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/oms/backend/internal/domain/tracking"
)

// maxResponseSize is the maximum allowed response size from the middleware (10MB)
const maxResponseSize = 10 * 1024 * 1024

// Client is the HTTP adapter to the CMT logistics middleware. It performs no
// retries; the sync driver owns the failure policy.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// NewClient creates a new CMT client with the given configuration
func NewClient(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}, nil
}

// FetchEventsPage fetches one page of the event feed
func (c *Client) FetchEventsPage(ctx context.Context, creds tracking.Credentials, filters map[string]string, page int) (*tracking.EventPage, error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: page must be >= 1, got %d", tracking.ErrFeedRequestFailed, page)
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	for key, value := range filters {
		query.Set(key, value)
	}

	body, err := c.get(ctx, creds, c.config.Endpoint+"/events?"+query.Encode())
	if err != nil {
		return nil, err
	}

	var resp eventsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", tracking.ErrFeedInvalidResponse, err)
	}

	result := &tracking.EventPage{
		Events:     make([]tracking.Event, 0, len(resp.Events)),
		TotalItems: resp.TotalItems,
	}
	for i := range resp.Events {
		result.Events = append(result.Events, resp.Events[i].toDomain())
	}
	return result, nil
}

// FetchExpedition fetches the tracking detail for one expedition
func (c *Client) FetchExpedition(ctx context.Context, creds tracking.Credentials, expeditionID string) (*tracking.Expedition, error) {
	if expeditionID == "" {
		return nil, fmt.Errorf("%w: empty expedition id", tracking.ErrFeedRequestFailed)
	}

	body, err := c.get(ctx, creds, c.config.Endpoint+"/expeditions/"+url.PathEscape(expeditionID))
	if err != nil {
		return nil, err
	}

	var resp expeditionPayload
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", tracking.ErrFeedInvalidResponse, err)
	}
	return resp.toDomain(), nil
}

// get performs an authenticated GET against the middleware
func (c *Client) get(ctx context.Context, creds tracking.Credentials, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("cmt: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+creds.SecretToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", tracking.ErrFeedUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("cmt: failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", tracking.ErrExpeditionNotFound, rawURL)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: HTTP %d", tracking.ErrFeedRequestFailed, resp.StatusCode)
	}

	return body, nil
}

// Ensure Client implements the feed port
var _ tracking.Feed = (*Client)(nil)
