// Package authclient talks to the authentication collaborator over HTTP.
package authclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/coursedesk/sessiongate"
)

// Client implements sessiongate.Authenticator against POST {BaseURL}{LoginPath}.
type Client struct {
	client    *resty.Client
	loginPath string
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (e errorBody) text() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

// New builds a Client from cfg.
func New(cfg sessiongate.AuthConfig) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("base URL must be absolute, got: %s", cfg.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base URL scheme must be http or https, got: %s", u.Scheme)
	}
	loginPath := cfg.LoginPath
	if loginPath == "" {
		loginPath = "/auth/login"
	}

	wait := cfg.RetryWait
	if wait <= 0 {
		wait = 100 * time.Millisecond
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(wait).
		SetRetryMaxWaitTime(2 * time.Second)
	client.AddRetryCondition(retryCondition)

	return &Client{client: client, loginPath: loginPath}, nil
}

// retryCondition retries transport faults and server-side trouble, never credential
// faults.
func retryCondition(r *resty.Response, err error) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	if r == nil {
		return false
	}
	code := r.StatusCode()
	return code >= 500 || code == http.StatusTooManyRequests || code == http.StatusRequestTimeout
}

// Login submits creds. 401 and 403 wrap sessiongate.ErrCredentialsRejected; every other
// failure wraps sessiongate.ErrAuthUnavailable.
func (c *Client) Login(ctx context.Context, creds sessiongate.Credentials) (sessiongate.LoginResponse, error) {
	var (
		out     sessiongate.LoginResponse
		failure errorBody
	)
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(creds).
		SetResult(&out).
		SetError(&failure).
		Post(c.loginPath)
	if err != nil {
		return sessiongate.LoginResponse{}, fmt.Errorf("%w: %w", sessiongate.ErrAuthUnavailable, err)
	}

	switch code := resp.StatusCode(); {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return sessiongate.LoginResponse{}, fmt.Errorf("%w: %s", sessiongate.ErrCredentialsRejected, orStatus(failure.text(), code))
	case resp.IsError():
		return sessiongate.LoginResponse{}, fmt.Errorf("%w: %s", sessiongate.ErrAuthUnavailable, orStatus(failure.text(), code))
	}

	if out.Token == "" {
		return sessiongate.LoginResponse{}, fmt.Errorf("%w: response carried no token", sessiongate.ErrAuthUnavailable)
	}
	return out, nil
}

func orStatus(msg string, code int) string {
	if msg != "" {
		return msg
	}
	return fmt.Sprintf("status %d", code)
}
