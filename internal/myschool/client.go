package myschool

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	appLog "roomcal/internal/log"
	"roomcal/internal/model"
	"roomcal/internal/window"
)

// maxErrorBodyLen bounds how much of an error response body is kept for
// diagnostics.
const maxErrorBodyLen = 200

// APIError is a non-2xx response from the planning API.
type APIError struct {
	Status int
	// Body is the response body truncated to maxErrorBodyLen characters.
	Body string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("myschool: API error %d: %s", e.Status, e.Body)
}

// Client queries the planning API with a captured bearer token.
type Client struct {
	http *resty.Client
}

// NewClient creates a planning API client rooted at baseURL, e.g.
// "https://myschool.centralesupelec.fr/plannings/api".
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
	}
}

// FetchRoomEvents retrieves the raw booking payload for one room over the
// given window. Non-2xx responses fail with *APIError.
func (c *Client) FetchRoomEvents(ctx context.Context, roomID int, w model.TimeWindow, token string) (*Payload, error) {
	appLog.Debug("fetching room events",
		"room_id", roomID,
		"date_start", window.EncodeStart(w.Start),
		"date_end", window.EncodeEnd(w.End),
	)

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"dateStart": window.EncodeStart(w.Start),
			"dateEnd":   window.EncodeEnd(w.End),
			"expand":    "true",
			"withTitle": "true",
			"rooms[]":   strconv.Itoa(roomID),
		}).
		SetAuthToken(token).
		Get("/events/resources")
	if err != nil {
		return nil, fmt.Errorf("myschool: fetch room %d: %w", roomID, err)
	}

	if !resp.IsSuccess() {
		return nil, &APIError{
			Status: resp.StatusCode(),
			Body:   truncate(resp.String(), maxErrorBodyLen),
		}
	}

	var payload Payload
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("myschool: decode room %d payload: %w", roomID, err)
	}

	return &payload, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
