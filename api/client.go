// Package api is the kiosk's client for the backend REST service.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Config holds backend connection settings.
type Config struct {
	URL         string `yaml:"url"`
	CAFile      string `yaml:"ca_file"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

const (
	defaultTimeout = 10 * time.Second
	maxBody        = 1 << 20
)

// Client talks JSON to the backend. Sessions are cookie based, so one
// Client carries at most one signed-in user at a time.
type Client struct {
	base    string
	kioskID string
	http    *http.Client
}

// New creates a backend client. A CA file, when given, replaces the
// system roots.
func New(cfg Config, kioskID string) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("api url not configured")
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.CAFile != "" {
		caCert, err := os.ReadFile(cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read CA cert: %w", err)
		}
		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("no certificates in %s", cfg.CAFile)
		}
		transport.TLSClientConfig = &tls.Config{RootCAs: caCertPool}
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	timeout := defaultTimeout
	if cfg.TimeoutSecs > 0 {
		timeout = time.Duration(cfg.TimeoutSecs) * time.Second
	}

	return &Client{
		base:    strings.TrimRight(cfg.URL, "/"),
		kioskID: kioskID,
		http:    &http.Client{Transport: transport, Jar: jar, Timeout: timeout},
	}, nil
}

// envelope is the status part every backend reply shares.
type envelope struct {
	OK      *bool  `json:"ok"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// do sends in as JSON (when non-nil) and decodes the reply into out. An
// empty body decodes as {}.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.kioskID != "" {
		req.Header.Set("X-Kiosk-ID", c.kioskID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("%w: read %s: %w", ErrNetwork, path, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("{}")
	} else if !json.Valid(raw) {
		log.Printf("API %s %s: non-JSON response (status %d)", method, path, resp.StatusCode)
		return fmt.Errorf("%w: %s %s: expected JSON (status %d)", ErrNetwork, method, path, resp.StatusCode)
	}

	var env envelope
	_ = json.Unmarshal(raw, &env) // arrays carry no envelope

	if resp.StatusCode >= 400 || (env.OK != nil && !*env.OK) {
		msg := env.Error
		if resp.StatusCode == http.StatusConflict && env.Message != "" {
			msg = env.Message
		}
		return &Error{Status: resp.StatusCode, Message: msg}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
	}
	return nil
}
