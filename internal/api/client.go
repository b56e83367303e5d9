//go:generate go run github.com/golang/mock/mockgen -destination=./mocks/backend.go -package=mocks . Backend

// Package api talks to the turbine monitoring backend.
//
// Collection endpoints answer either with a plain JSON array or with a page
// envelope, depending on whether paging parameters were sent. The client
// decides which once, at decode time, and hands callers a models.Listing.
//
// Failures come back as *StatusError carrying the HTTP status, with 0
// meaning no response was received at all.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/tejusbharadwaj/turbinewatch/internal/models"
)

// Backend is everything the orchestrator needs from the server.
type Backend interface {
	Farms(ctx context.Context) ([]models.Farm, error)
	Turbines(ctx context.Context, q TurbineQuery) (models.Listing[models.Turbine], error)
	Turbine(ctx context.Context, id int64) (models.Turbine, error)
	Alerts(ctx context.Context, q AlertQuery) (models.Listing[models.HealthAlert], error)
	DailyMetrics(ctx context.Context, q RangeQuery) ([]models.DailyMetric, error)
	GraphData(ctx context.Context, q RangeQuery) ([]models.GraphPoint, error)
	ResolveAlert(ctx context.Context, id int64) error
}

var (
	ErrRequest = errors.New("backend request failed")
	ErrStatus  = errors.New("backend returned error status")
)

// StatusError is returned for every failed backend call.
type StatusError struct {
	Endpoint string
	Status   int
	Err      error
}

func (e *StatusError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: no response: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("%s: status %d: %v", e.Endpoint, e.Status, e.Err)
}

func (e *StatusError) Unwrap() error { return e.Err }

// StatusOf extracts the HTTP status from err.
func StatusOf(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status, true
	}
	return 0, false
}

// IsUnreachable is true when the backend gave no response or answered
// 404, which is how a missing backend shows up behind a dev proxy.
func IsUnreachable(err error) bool {
	status, ok := StatusOf(err)
	return ok && (status == 0 || status == http.StatusNotFound)
}

// IsNotFound is true for a 404 answer.
func IsNotFound(err error) bool {
	status, ok := StatusOf(err)
	return ok && status == http.StatusNotFound
}

// Paging selects one page; nil means "send no paging parameters".
type Paging struct {
	Page int
	Size int
}

type TurbineQuery struct {
	Farm   string
	Region string
	Status string
	Paging *Paging
}

type AlertQuery struct {
	TurbineID int64
	Farm      string
	Region    string
	Paging    *Paging
}

// RangeQuery selects pre-aggregated analytics between Start and End.
type RangeQuery struct {
	Start  time.Time
	End    time.Time
	Farm   string
	Region string
}

// RangeLayout is the zone-less ISO format the backend parses.
const RangeLayout = "2006-01-02T15:04:05"

// Options configures the HTTP client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
}

// Client is the resty-backed Backend.
type Client struct {
	http   *resty.Client
	logger logrus.FieldLogger
}

// NewClient creates a client for the backend at opts.BaseURL.
func NewClient(opts Options, logger logrus.FieldLogger) *Client {
	client := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		SetHeader("Accept", "application/json")

	return &Client{
		http:   client,
		logger: logger,
	}
}

func (c *Client) Farms(ctx context.Context) ([]models.Farm, error) {
	body, err := c.get(ctx, "/farms", nil)
	if err != nil {
		return nil, err
	}
	var farms []models.Farm
	if err := decode(body, &farms); err != nil {
		return nil, err
	}
	return farms, nil
}

func (c *Client) Turbines(ctx context.Context, q TurbineQuery) (models.Listing[models.Turbine], error) {
	params := map[string]string{}
	setIf(params, "farm", q.Farm)
	setIf(params, "region", q.Region)
	setIf(params, "status", q.Status)
	setPaging(params, q.Paging)

	body, err := c.get(ctx, "/turbines", params)
	if err != nil {
		return models.Listing[models.Turbine]{}, err
	}
	return models.DecodeListing[models.Turbine](body)
}

func (c *Client) Turbine(ctx context.Context, id int64) (models.Turbine, error) {
	body, err := c.get(ctx, "/turbines/"+strconv.FormatInt(id, 10), nil)
	if err != nil {
		return models.Turbine{}, err
	}
	var t models.Turbine
	if err := decode(body, &t); err != nil {
		return models.Turbine{}, err
	}
	return t, nil
}

func (c *Client) Alerts(ctx context.Context, q AlertQuery) (models.Listing[models.HealthAlert], error) {
	params := map[string]string{}
	if q.TurbineID != 0 {
		params["turbineId"] = strconv.FormatInt(q.TurbineID, 10)
	}
	setIf(params, "farm", q.Farm)
	setIf(params, "region", q.Region)
	setPaging(params, q.Paging)

	body, err := c.get(ctx, "/health/alerts", params)
	if err != nil {
		return models.Listing[models.HealthAlert]{}, err
	}
	return models.DecodeListing[models.HealthAlert](body)
}

func (c *Client) DailyMetrics(ctx context.Context, q RangeQuery) ([]models.DailyMetric, error) {
	body, err := c.get(ctx, "/analytics/daily", rangeParams(q))
	if err != nil {
		return nil, err
	}
	var rows []models.DailyMetric
	if err := decode(body, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) GraphData(ctx context.Context, q RangeQuery) ([]models.GraphPoint, error) {
	body, err := c.get(ctx, "/analytics/graph", rangeParams(q))
	if err != nil {
		return nil, err
	}
	var points []models.GraphPoint
	if err := decode(body, &points); err != nil {
		return nil, err
	}
	return points, nil
}

func (c *Client) ResolveAlert(ctx context.Context, id int64) error {
	const endpoint = "/health/alerts/{id}/resolve"
	start := time.Now()

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", strconv.FormatInt(id, 10)).
		SetBody(map[string]any{}).
		Put(endpoint)

	return c.check(ctx, endpoint, start, resp, err)
}

func (c *Client) get(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	start := time.Now()

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(endpoint)

	if err := c.check(ctx, endpoint, start, resp, err); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

// check turns a resty outcome into a StatusError and records metrics.
func (c *Client) check(ctx context.Context, endpoint string, start time.Time, resp *resty.Response, err error) error {
	status := 0
	if resp != nil && resp.RawResponse != nil {
		status = resp.StatusCode()
	}
	observeFetch(endpoint, status, err, time.Since(start))

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		c.logger.WithFields(logrus.Fields{
			"endpoint": endpoint,
			"error":    err,
		}).Warn("Backend request failed")
		return &StatusError{Endpoint: endpoint, Status: 0, Err: fmt.Errorf("%w: %v", ErrRequest, err)}
	}
	if resp.IsError() {
		c.logger.WithFields(logrus.Fields{
			"endpoint": endpoint,
			"status":   status,
		}).Warn("Backend returned error status")
		return &StatusError{Endpoint: endpoint, Status: status, Err: ErrStatus}
	}
	return nil
}

func decode(body []byte, v any) error {
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", models.ErrUnexpectedShape, err)
	}
	return nil
}

func setIf(params map[string]string, key, value string) {
	if value != "" {
		params[key] = value
	}
}

func setPaging(params map[string]string, p *Paging) {
	if p == nil {
		return
	}
	params["page"] = strconv.Itoa(p.Page)
	params["size"] = strconv.Itoa(p.Size)
}

func rangeParams(q RangeQuery) map[string]string {
	params := map[string]string{
		"startTime": q.Start.Format(RangeLayout),
		"endTime":   q.End.Format(RangeLayout),
	}
	setIf(params, "farm", q.Farm)
	setIf(params, "region", q.Region)
	return params
}

// Compile-time interface implementation check
var _ Backend = (*Client)(nil)
