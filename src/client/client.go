// Package client talks to the FriendLynk API. AuthStore and PostStore keep a
// local copy of server state for an application and issue the HTTP calls that
// change it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// Client holds the API base URL and an HTTP client whose cookie jar carries
// the session.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the API mounted at baseURL, e.g.
// "http://localhost:3000/api".
func New(baseURL string, timeout time.Duration) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Jar: jar, Timeout: timeout},
	}, nil
}

type envelope struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
	Code    string `json:"code"`
}

// do sends a JSON request and decodes the payload into out. It returns the
// envelope message.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) (string, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return "", err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%s %s: reading body: %w", method, path, err)
	}

	var env envelope
	if len(data) > 0 {
		_ = json.Unmarshal(data, &env)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", newAPIError(resp.StatusCode, env)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return "", fmt.Errorf("%s %s: decoding body: %w", method, path, err)
		}
	}
	return env.Msg, nil
}
