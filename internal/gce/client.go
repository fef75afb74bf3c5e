package gce

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultEndpoint = "http://metadata.google.internal/computeMetadata/v1"
	DefaultTimeout  = 5 * time.Second
	ProbeTimeout    = 5 * time.Second

	FlavorHeader = "Metadata-Flavor"
	FlavorValue  = "Google"
)

var (
	ErrUnreachable  = errors.New("metadata service unreachable")
	ErrStatus       = errors.New("unexpected metadata status")
	ErrNotAvailable = errors.New("not available")
)

// Fetcher retrieves one metadata value relative to the service endpoint.
type Fetcher interface {
	Fetch(ctx context.Context, path string) (string, error)
}

type Client struct {
	httpClient  *http.Client
	probeClient *http.Client
	endpoint    string
	header      http.Header
	timeout     time.Duration
}

func WithEndpoint(endpoint string) func(*Client) {
	return func(c *Client) { c.endpoint = strings.TrimSuffix(endpoint, "/") }
}

func WithTimeout(timeout time.Duration) func(*Client) {
	return func(c *Client) { c.timeout = timeout }
}

// WithHTTPClient sets the client whose transport is used for requests. The
// client is copied, never modified.
func WithHTTPClient(hc *http.Client) func(*Client) {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(options ...func(*Client)) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		endpoint:   DefaultEndpoint,
		header:     http.Header{FlavorHeader: []string{FlavorValue}},
		timeout:    DefaultTimeout,
	}

	for _, fn := range options {
		fn(c)
	}

	request := *c.httpClient
	request.Timeout = c.timeout
	probe := request
	probe.Timeout = ProbeTimeout

	c.httpClient = &request
	c.probeClient = &probe

	return c
}

// Probe checks that the metadata service answers at the endpoint root within
// ProbeTimeout, regardless of the per-request timeout. Any failure is
// reported as ErrUnreachable.
func (c *Client) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()

	if _, err := c.get(ctx, c.probeClient, c.endpoint+"/"); err != nil {
		return fmt.Errorf("%w: %w", ErrUnreachable, err)
	}

	return nil
}

func (c *Client) Fetch(ctx context.Context, path string) (string, error) {
	path = strings.TrimPrefix(path, "/")
	return c.get(ctx, c.httpClient, fmt.Sprintf("%s/%s", c.endpoint, path))
}

func (c *Client) get(ctx context.Context, hc *http.Client, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	for k, v := range c.header {
		req.Header[k] = v
	}

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	log.WithFields(log.Fields{
		"url":     url,
		"status":  resp.StatusCode,
		"size":    humanize.Bytes(uint64(len(body))),
		"elapsed": time.Since(start).Round(time.Microsecond),
	}).Debug("metadata request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	return string(body), nil
}
