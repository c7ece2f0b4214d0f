// Package api talks to the remote storefront REST backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/pkg/apierror"
	"github.com/your-org/storefront/internal/pkg/auth"
)

const maxBodyBytes = 4 << 20

// TokenSource yields the bearer token to attach to a request; "" sends none
type TokenSource func(ctx context.Context) (string, error)

// Client is a JSON client for the backend. A Client is safe for concurrent use;
// WithToken derives per-session clients that share the same transport.
type Client struct {
	baseURL string
	http    *http.Client
	token   TokenSource
	log     logrus.FieldLogger
}

// NewClient creates an anonymous client
func NewClient(cfg config.APIConfig, log logrus.FieldLogger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		log:     log.WithField("component", "api"),
	}
}

// WithToken returns a client that authenticates with tokens from src
func (c *Client) WithToken(src TokenSource) *Client {
	clone := *c
	clone.token = src
	return &clone
}

// envelope is the response contract every backend endpoint follows
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

// do sends a request and decodes the envelope's data into dest (when non-nil).
// Every failure is returned as *apierror.Error.
func (c *Client) do(ctx context.Context, method, path string, body, dest interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return apierror.FromTransport(fmt.Errorf("failed to encode request: %w", err))
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return apierror.FromTransport(fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		token, err := c.token(ctx)
		if err != nil {
			return apierror.FromTransport(fmt.Errorf("failed to read session token: %w", err))
		}
		if token != "" {
			req.Header.Set("Authorization", auth.BearerHeader(token))
		}
	}

	fields := logrus.Fields{
		"method": method,
		"path":   path,
	}
	c.log.WithFields(fields).Debug("backend request")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.WithFields(fields).WithError(err).Warn("backend request failed")
		return apierror.FromTransport(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return apierror.FromTransport(fmt.Errorf("failed to read response: %w", err))
	}

	fields["status_code"] = resp.StatusCode
	fields["latency"] = time.Since(start).String()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := apierror.FromResponse(resp.StatusCode, raw)
		c.log.WithFields(fields).WithField("error", apiErr.Message).Warn("backend error response")
		return apiErr
	}
	c.log.WithFields(fields).Debug("backend response")

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return apierror.FromTransport(fmt.Errorf("failed to decode response: %w", err))
	}
	if env.Success != nil && !*env.Success {
		return apierror.FromResponse(resp.StatusCode, raw)
	}
	if dest == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return apierror.FromTransport(fmt.Errorf("failed to decode response data: %w", err))
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, dest interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, dest)
}

func (c *Client) post(ctx context.Context, path string, body, dest interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, dest)
}

func (c *Client) put(ctx context.Context, path string, body, dest interface{}) error {
	return c.do(ctx, http.MethodPut, path, body, dest)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}
