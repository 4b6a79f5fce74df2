// Package upstream reaches availability and meetings held by a remote scheduling backend.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/config"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/model"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/store"
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Client implements store.AvailabilityStore and store.MeetingStore over HTTP.
type Client struct {
	baseURL  string
	headers  map[string]string
	client   *http.Client
	meetings *cache.Cache
	loc      *time.Location
	logger   *zap.Logger
}

var (
	_ store.AvailabilityStore = (*Client)(nil)
	_ store.MeetingStore      = (*Client)(nil)
)

// NewClient creates a client from the upstream config section. Timestamps without an offset
// are read in loc.
func NewClient(cfg config.UpstreamConfig, loc *time.Location, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}

	var transport http.RoundTripper = &http.Transport{}
	if cfg.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.HTTPProxy)
		if err != nil {
			logger.Warn("invalid upstream proxy URL, not using a proxy", zap.String("proxy", cfg.HTTPProxy), zap.Error(err))
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		headers:  cfg.Headers,
		client:   &http.Client{Transport: transport, Timeout: timeout},
		meetings: cache.New(ttl, 2*ttl),
		loc:      loc,
		logger:   logger,
	}
}

// ListAvailability fetches the employee's records for date. Records with unparseable times
// are dropped.
func (c *Client) ListAvailability(ctx context.Context, employeeID string, date time.Time) ([]model.AvailabilityRecord, error) {
	q := url.Values{}
	q.Set("employeeId", employeeID)
	q.Set("date", date.In(c.loc).Format("2006-01-02"))

	var resp envelope[[]wireRecord]
	if err := c.do(ctx, http.MethodGet, "/api/availability?"+q.Encode(), nil, &resp); err != nil {
		return nil, fmt.Errorf("list availability for %s: %w", employeeID, err)
	}

	records := make([]model.AvailabilityRecord, 0, len(resp.Data))
	for _, w := range resp.Data {
		r, err := w.record(c.loc)
		if err != nil {
			c.logger.Debug("dropping malformed availability record", zap.String("record_id", w.ID), zap.Error(err))
			continue
		}
		records = append(records, r)
	}
	return records, nil
}

// UpsertAvailability submits one batch write.
func (c *Client) UpsertAvailability(ctx context.Context, employeeID string, slots []model.SlotInput) error {
	if len(slots) == 0 {
		return nil
	}
	body := upsertRequest{EmployeeID: employeeID, Slots: slots}
	if err := c.do(ctx, http.MethodPost, "/api/availability", body, nil); err != nil {
		return fmt.Errorf("upsert availability for %s: %w", employeeID, err)
	}
	return nil
}

// DeleteAvailability deletes one record. A 404 maps to store.ErrNotFound.
func (c *Client) DeleteAvailability(ctx context.Context, id string) error {
	err := c.do(ctx, http.MethodDelete, "/api/availability/"+url.PathEscape(id), nil, nil)
	var se *StatusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete availability %s: %w", id, err)
	}
	return nil
}

// ListMeetingsForUser fetches meetings hosted by or including the user. Results are cached
// per user; time slots that fail to parse are dropped.
func (c *Client) ListMeetingsForUser(ctx context.Context, userID string) ([]model.Meeting, error) {
	if cached, ok := c.meetings.Get(userID); ok {
		return cached.([]model.Meeting), nil
	}

	var resp envelope[[]wireMeeting]
	if err := c.do(ctx, http.MethodGet, "/api/meetings/user/"+url.PathEscape(userID), nil, &resp); err != nil {
		return nil, fmt.Errorf("list meetings for %s: %w", userID, err)
	}

	meetings := make([]model.Meeting, 0, len(resp.Data))
	for _, w := range resp.Data {
		meetings = append(meetings, w.meeting(c.loc, c.logger))
	}
	c.meetings.SetDefault(userID, meetings)
	return meetings, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	c.logger.Debug("upstream request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
