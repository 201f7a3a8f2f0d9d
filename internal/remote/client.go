// Package remote talks to the authoritative staff endpoint over HTTP.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/staff-roster/internal/domain"
	"github.com/spec-kit/staff-roster/internal/sanitize"
	apperrors "github.com/spec-kit/staff-roster/pkg/util/errorutil"
)

// Default bounds for a single exchange. Writes carry the whole list.
const (
	DefaultReadTimeout  = 9 * time.Second
	DefaultWriteTimeout = 12 * time.Second
)

// maxBodyBytes caps how much of a response is read.
const maxBodyBytes = 4 << 20

// Config bounds remote calls. Zero values fall back to the defaults.
type Config struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Client performs bounded reads and writes against one endpoint URL.
type Client struct {
	http         *http.Client
	sanitizer    *sanitize.Sanitizer
	readTimeout  time.Duration
	writeTimeout time.Duration
	logger       *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewClient builds a Client.
func NewClient(cfg Config, sanitizer *sanitize.Sanitizer, logger *zap.Logger, opts ...Option) *Client {
	if sanitizer == nil {
		sanitizer = sanitize.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		http:         &http.Client{},
		sanitizer:    sanitizer,
		readTimeout:  cfg.ReadTimeout,
		writeTimeout: cfg.WriteTimeout,
		logger:       logger,
	}
	if c.readTimeout <= 0 {
		c.readTimeout = DefaultReadTimeout
	}
	if c.writeTimeout <= 0 {
		c.writeTimeout = DefaultWriteTimeout
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load fetches the list at endpoint. A non-2xx status or a body that is not
// a JSON array is a remote error; exceeding the read bound is a timeout.
func (c *Client) Load(ctx context.Context, endpoint string) (domain.StaffList, error) {
	ctx, cancel := context.WithTimeout(ctx, c.readTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperrors.NewRemoteError("build load request", 0, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, "load", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, c.transportError(ctx, "load", err)
	}
	if !success(resp.StatusCode) {
		return nil, apperrors.NewRemoteError("remote load rejected", resp.StatusCode, nil)
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, apperrors.NewRemoteError("remote load returned malformed json", resp.StatusCode, err)
	}
	if _, ok := raw.([]any); !ok {
		return nil, apperrors.NewRemoteError("remote load did not return a list", resp.StatusCode, nil)
	}

	list := c.sanitizer.List(raw)
	c.logger.Debug("remote load",
		zap.String("endpoint", endpoint),
		zap.Int("count", len(list)),
		zap.Duration("elapsed", time.Since(start)))
	return list, nil
}

// Save replaces the remote list, authorizing with credential. A 401 is
// reported as unauthorized, distinct from other failures.
func (c *Client) Save(ctx context.Context, endpoint string, list domain.StaffList, credential string) error {
	ctx, cancel := context.WithTimeout(ctx, c.writeTimeout)
	defer cancel()

	payload, err := json.Marshal(c.sanitizer.List(list))
	if err != nil {
		return apperrors.NewRemoteError("encode staff list", 0, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(payload))
	if err != nil {
		return apperrors.NewRemoteError("build save request", 0, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(domain.CredentialHeader, credential)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return c.transportError(ctx, "save", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return c.transportError(ctx, "save", err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return apperrors.NewUnauthorized("admin pin rejected by remote store")
	}
	if !success(resp.StatusCode) {
		return apperrors.NewRemoteError("remote save rejected", resp.StatusCode, nil)
	}
	if err := checkAck(body); err != nil {
		return apperrors.NewRemoteError("remote save not acknowledged", resp.StatusCode, err)
	}

	c.logger.Debug("remote save",
		zap.String("endpoint", endpoint),
		zap.Int("bytes", len(payload)),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// transportError classifies a failed round trip. The request context carries
// the bound, so its deadline firing means the call timed out.
func (c *Client) transportError(ctx context.Context, op string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperrors.NewTimeout(fmt.Sprintf("remote %s timed out", op), err)
	}
	return apperrors.NewRemoteError(fmt.Sprintf("remote %s failed", op), 0, err)
}

// checkAck accepts an empty body or any JSON document except an explicit
// {"ok": false}.
func checkAck(body []byte) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	var ack struct {
		OK *bool `json:"ok"`
	}
	if err := json.Unmarshal(body, &ack); err != nil {
		var list []any
		if json.Unmarshal(body, &list) == nil {
			return nil
		}
		return err
	}
	if ack.OK != nil && !*ack.OK {
		return errors.New("remote reported ok=false")
	}
	return nil
}

func success(status int) bool {
	return status >= 200 && status < 300
}
