// Package client is a small HTTP client for the sessiongate API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/sessiongate/internal/common"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the server at baseURL. A bare host:port gets an
// http:// scheme.
func New(baseURL string) *Client {
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Register creates an account and returns its id.
func (c *Client) Register(ctx context.Context, username, password, adminSecret string) (string, error) {
	body := map[string]string{"username": username, "password": password, "adminSecret": adminSecret}

	var out struct {
		UserID string `json:"userId"`
	}
	if err := c.do(ctx, http.MethodPost, "/sign-up", "", body, &out); err != nil {
		return "", err
	}
	return out.UserID, nil
}

func (c *Client) SignIn(ctx context.Context, username, password string) (*Session, error) {
	body := map[string]string{"username": username, "password": password}

	out := &Session{}
	if err := c.do(ctx, http.MethodPost, "/sign-in", "", body, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Verify spends token and returns the session carrying its replacement.
func (c *Client) Verify(ctx context.Context, token string) (*Session, error) {
	out := &Session{}
	if err := c.do(ctx, http.MethodGet, "/verify-token", token, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/logout", token, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerHeader(token))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
