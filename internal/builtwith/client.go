package builtwith

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"builtwith/internal/config"
)

const maxResponseBytes = 64 << 20

type Client struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg config.Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		apiKey:     cfg.BuiltWithAPIKey,
		endpoint:   cfg.BuiltWithAPIURL,
		httpClient: &http.Client{Timeout: time.Duration(cfg.BuiltWithTimeoutMs) * time.Millisecond},
		logger:     logger,
	}
}

// Lookup fetches the technology profile of domain. It makes exactly one
// request; failures are terminal and mapped onto the package's sentinels.
func (c *Client) Lookup(ctx context.Context, domain string) (Profile, error) {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return Profile{}, errors.WithStack(ErrEmptyDomain)
	}
	if strings.TrimSpace(c.apiKey) == "" {
		return Profile{}, errors.WithStack(ErrMissingAPIKey)
	}

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return Profile{}, errors.Wrapf(err, "invalid BuiltWith endpoint %q", c.endpoint)
	}
	q := u.Query()
	q.Set("KEY", c.apiKey)
	q.Set("LOOKUP", domain)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Profile{}, errors.Wrap(err, "failed to create HTTP request")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("builtwith request failed", zap.String("domain", domain), zap.Error(err))
		if isTimeout(err) {
			return Profile{}, errors.WithStack(ErrTimeout)
		}
		return Profile{}, errors.WithStack(&TransportError{Detail: redactKey(err.Error(), c.apiKey)})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if isTimeout(err) {
			return Profile{}, errors.WithStack(ErrTimeout)
		}
		return Profile{}, errors.WithStack(&TransportError{Detail: "failed to read response body: " + redactKey(err.Error(), c.apiKey)})
	}

	c.logger.Debug("builtwith response",
		zap.String("domain", domain),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)),
	)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return Profile{}, errors.WithStack(ErrUnauthorized)
	case resp.StatusCode == http.StatusNotFound:
		return Profile{}, errors.WithStack(&NotFoundError{Domain: domain})
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return Profile{}, errors.WithStack(&StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))})
	}

	profile, err := Parse(body)
	if err != nil {
		return Profile{}, errors.Wrap(err, "invalid JSON response from API")
	}
	return profile, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// redactKey keeps the API key out of error messages, which echo the request URL.
func redactKey(msg, key string) string {
	if key == "" {
		return msg
	}
	msg = strings.ReplaceAll(msg, url.QueryEscape(key), "REDACTED")
	return strings.ReplaceAll(msg, key, "REDACTED")
}
