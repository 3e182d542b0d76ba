package openf1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.openf1.org/v1"
	latestWindow   = 7 * 24 * time.Hour
)

// ErrNoSessionsFound is returned by Sync when the session query is empty
var ErrNoSessionsFound = errors.New("no sessions found")

// APIError is a non-2xx response from the data source
type APIError struct {
	StatusCode int
	Status     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("OpenF1 API error: %d %s", e.StatusCode, e.Status)
}

// Client reads the OpenF1 REST API
type Client interface {
	FetchSessions(ctx context.Context, params SessionParams) ([]Session, error)
	FetchDrivers(ctx context.Context, params DriverParams) ([]Driver, error)
	FetchTeamRadio(ctx context.Context, params TeamRadioParams) ([]TeamRadioMessage, error)
	FetchMeetings(ctx context.Context, params MeetingParams) ([]Meeting, error)
	FetchLatestTeamRadio(ctx context.Context) ([]TeamRadioMessage, error)
}

type client struct {
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

// NewClient creates a Client. An empty baseURL uses the public API.
func NewClient(baseURL string, httpClient *http.Client) Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &client{baseURL: baseURL, httpClient: httpClient, now: time.Now}
}

// query keeps OpenF1 comparison operators (date>=) unescaped in keys
type query []string

func (q *query) addInt(key string, v int) {
	if v != 0 {
		*q = append(*q, key+"="+strconv.Itoa(v))
	}
}

func (q *query) addString(key, v string) {
	q.addOp(key, "=", v)
}

// addOp writes key, a comparison operator (=, >=, <=) and the escaped value
func (q *query) addOp(key, op, v string) {
	if v != "" {
		*q = append(*q, key+op+url.QueryEscape(v))
	}
}

func (q query) encode() string {
	return strings.Join(q, "&")
}

func (c *client) get(ctx context.Context, path string, q query, out any) error {
	endpoint := c.baseURL + path
	if len(q) > 0 {
		endpoint += "?" + q.encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("OpenF1 request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("OpenF1 decode %s: %w", path, err)
	}
	return nil
}

func (c *client) FetchSessions(ctx context.Context, params SessionParams) ([]Session, error) {
	var q query
	q.addInt("session_key", params.SessionKey)
	q.addInt("meeting_key", params.MeetingKey)
	q.addInt("year", params.Year)
	q.addString("session_name", params.SessionName)

	var sessions []Session
	if err := c.get(ctx, "/sessions", q, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (c *client) FetchDrivers(ctx context.Context, params DriverParams) ([]Driver, error) {
	var q query
	q.addInt("session_key", params.SessionKey)
	q.addInt("driver_number", params.DriverNumber)

	var drivers []Driver
	if err := c.get(ctx, "/drivers", q, &drivers); err != nil {
		return nil, err
	}
	return drivers, nil
}

func (c *client) FetchTeamRadio(ctx context.Context, params TeamRadioParams) ([]TeamRadioMessage, error) {
	var q query
	q.addInt("session_key", params.SessionKey)
	q.addInt("driver_number", params.DriverNumber)
	q.addOp("date", ">=", params.DateStart)
	q.addOp("date", "<=", params.DateEnd)

	var messages []TeamRadioMessage
	if err := c.get(ctx, "/team_radio", q, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (c *client) FetchMeetings(ctx context.Context, params MeetingParams) ([]Meeting, error) {
	var q query
	q.addInt("meeting_key", params.MeetingKey)
	q.addInt("year", params.Year)

	var meetings []Meeting
	if err := c.get(ctx, "/meetings", q, &meetings); err != nil {
		return nil, err
	}
	return meetings, nil
}

// FetchLatestTeamRadio returns radio messages from the last seven days
func (c *client) FetchLatestTeamRadio(ctx context.Context) ([]TeamRadioMessage, error) {
	since := c.now().UTC().Add(-latestWindow).Format("2006-01-02T15:04:05.000Z")
	return c.FetchTeamRadio(ctx, TeamRadioParams{DateStart: since})
}
