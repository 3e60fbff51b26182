package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/jpillora/backoff"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Mukul-Bhagat/AttendanceMark-sub003/core"
)

type Option func(c *Client) error

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) error {
		c.hc = client
		return nil
	}
}

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(c *Client) error {
		c.logger = logger.Named("rest")
		return nil
	}
}

// WithMaxAttempts bounds the retry loop for idempotent GETs.
func WithMaxAttempts(n int) Option {
	return func(c *Client) error {
		if n < 1 {
			return errors.Errorf("max attempts must be at least 1, got %d", n)
		}
		c.maxAttempts = n
		return nil
	}
}

// Client talks to the attendance backend. It implements core.API.
//
// The bearer token is attached with SetBearer and sent on every request
// until ClearBearer; both are safe to call concurrently with requests.
type Client struct {
	hc          *http.Client
	logger      *zap.SugaredLogger
	url         url.URL
	maxAttempts int

	mu     sync.RWMutex
	bearer string
}

var _ core.API = (*Client)(nil)

func Open(serviceURL url.URL, opts ...Option) (*Client, error) {
	c := Client{
		hc:          http.DefaultClient,
		logger:      zap.NewNop().Sugar(),
		url:         serviceURL,
		maxAttempts: 3,
	}
	for _, opt := range opts {
		if err := opt(&c); err != nil {
			return nil, err
		}
	}
	return &c, nil
}

func (c *Client) SetBearer(token string) {
	c.mu.Lock()
	c.bearer = token
	c.mu.Unlock()
}

func (c *Client) ClearBearer() {
	c.mu.Lock()
	c.bearer = ""
	c.mu.Unlock()
}

// Bearer returns the currently attached token. Test hooks and the CLI's
// debug output use it; nothing else should.
func (c *Client) Bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bearer
}

func (c *Client) Me(ctx context.Context) (*core.UserProfile, error) {
	var out meResponse
	if err := c.doGET(ctx, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, errors.New("me response missing user")
	}
	return out.User, nil
}

func (c *Client) Login(ctx context.Context, creds core.Credentials) (*core.LoginResult, error) {
	var out core.LoginResult
	err := c.doPOST(ctx, "/auth/login", loginRequest{Email: creds.Email, Password: creds.Password}, &out)
	if err != nil {
		return nil, credentialError(err)
	}
	return &out, nil
}

func (c *Client) SelectOrganization(ctx context.Context, tempToken, prefix string) (*core.LoginResult, error) {
	var out core.LoginResult
	err := c.doPOST(ctx, "/auth/select-organization", selectOrganizationRequest{TempToken: tempToken, Prefix: prefix}, &out)
	if err != nil {
		return nil, credentialError(err)
	}
	return &out, nil
}

func (c *Client) SwitchOrganization(ctx context.Context, prefix string) (*core.LoginResult, error) {
	var out core.LoginResult
	err := c.doPOST(ctx, "/auth/switch-organization", switchOrganizationRequest{Prefix: prefix}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MyOrganizations(ctx context.Context) ([]core.OrganizationMembership, error) {
	var out organizationsResponse
	if err := c.doGET(ctx, "/auth/my-organizations", nil, &out); err != nil {
		return nil, err
	}
	return out.Organizations, nil
}

func (c *Client) ForceResetPassword(ctx context.Context, oldPassword, newPassword string) error {
	var out messageResponse
	return c.doPOST(ctx, "/auth/force-reset-password", forceResetPasswordRequest{
		OldPassword: oldPassword,
		NewPassword: newPassword,
	}, &out)
}

func (c *Client) MarkAttendance(ctx context.Context, mark core.AttendanceMark) error {
	var out messageResponse
	return c.doPOST(ctx, "/attendance/mark", mark, &out)
}

func (c *Client) doGET(ctx context.Context, path string, params url.Values, output interface{}) error {
	bckoff := &backoff.Backoff{Jitter: true}
	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(bckoff.Duration()):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		req, err := c.newRequest(http.MethodGet, path, params, nil)
		if err != nil {
			return err
		}
		req = req.WithContext(ctx)

		startTime := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			lastErr = errors.Wrapf(err, "GET request to %s failed", req.URL)
			c.logger.Warnf("Request error, will retry: %s", lastErr)
			continue
		}

		err, done := c.checkResponse(req, resp, startTime)
		if done {
			_ = resp.Body.Close()
			if err != nil && retryable(err) {
				lastErr = err
				c.logger.Warnf("Response error, will retry: %s", err)
				continue
			}
			return err
		}

		err = decodeResponseAsJSON(resp, output)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = err
			c.logger.Warnf("Decode error, will retry: %s", err)
			continue
		}
		return nil
	}
	return lastErr
}

func (c *Client) doPOST(ctx context.Context, path string, input, output interface{}) error {
	body, err := json.Marshal(input)
	if err != nil {
		return errors.Wrap(err, "encoding request body")
	}

	req, err := c.newRequest(http.MethodPost, path, nil, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req = req.WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")

	startTime := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		return errors.Wrapf(err, "POST request to %s failed", req.URL)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	err, done := c.checkResponse(req, resp, startTime)
	if done {
		return err
	}

	return decodeResponseAsJSON(resp, output)
}

func (c *Client) newRequest(method, path string, params url.Values, body *bytes.Reader) (*http.Request, error) {
	target := c.formatURL(path, params)

	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, target, body)
	} else {
		req, err = http.NewRequest(method, target, nil)
	}
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	if b := c.Bearer(); b != "" {
		req.Header.Set("Authorization", "Bearer "+b)
	}

	return req, nil
}

func (c *Client) formatURL(path string, params url.Values) string {
	u := c.url
	u.Path = "/api" + path
	if params != nil {
		u.RawQuery = params.Encode()
	}
	return u.String()
}

// checkResponse logs the exchange and converts non-2xx statuses to errors.
// The second return value is true when the caller must not read the body.
func (c *Client) checkResponse(req *http.Request, resp *http.Response, startTime time.Time) (error, bool) {
	c.logger.Infow(req.Method,
		"url", req.URL.String(),
		"time", time.Since(startTime).Seconds(),
		"status", resp.StatusCode)
	return errorFromResponse(req, resp)
}
