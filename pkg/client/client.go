// Package client calls the flight proxy over HTTP. Its methods never return
// errors: transport failures are folded into the same envelope the proxy
// itself produces, so callers only ever branch on Envelope.Success.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/travelmate/flightproxy/internal/models"
)

const (
	DefaultBaseURL = "http://localhost:3001/api"

	ErrFetchFailed = "Nie udało się pobrać danych o lotach. Spróbuj ponownie później."
)

type Envelope = models.Envelope

type SearchParams struct {
	Origin        string
	Destination   string
	DepartureDate string
	ReturnDate    string
	Adults        int
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Entry
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithLogger(l *logrus.Entry) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New returns a client for the proxy API rooted at baseURL, or at
// DefaultBaseURL when baseURL is empty.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		logger:     logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (p SearchParams) values() url.Values {
	q := url.Values{}
	q.Set("origin", p.Origin)
	q.Set("destination", p.Destination)
	q.Set("departureDate", p.DepartureDate)
	q.Set("adults", strconv.Itoa(p.Adults))
	if p.ReturnDate != "" {
		q.Set("returnDate", p.ReturnDate)
	}
	return q
}

// SearchFlights returns the proxy's envelope as received, whatever the HTTP
// status.
func (c *Client) SearchFlights(ctx context.Context, params SearchParams) Envelope {
	var envelope Envelope
	if err := c.getJSON(ctx, "/flights/search?"+params.values().Encode(), &envelope); err != nil {
		c.logger.WithError(err).Warn("Flight search request failed")
		return models.Failure(ErrFetchFailed)
	}
	return envelope
}

// CheckAPIHealth reports whether the proxy answers its health check with
// status OK.
func (c *Client) CheckAPIHealth(ctx context.Context) bool {
	var health struct {
		Status string `json:"status"`
	}
	if err := c.getJSON(ctx, "/health", &health); err != nil {
		c.logger.WithError(err).Warn("API health check failed")
		return false
	}
	return health.Status == models.HealthStatusOK
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	return nil
}
