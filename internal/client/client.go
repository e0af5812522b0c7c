// Package client is a thin HTTP client for the portfolio API used by the
// command line tool. It keeps the bearer token between runs in a TokenStore.
package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/atinyakov/portfolio-api/internal/certgen"
	"github.com/atinyakov/portfolio-api/internal/middleware"
	"github.com/atinyakov/portfolio-api/internal/models"
	api "github.com/atinyakov/portfolio-api/internal/server/handler/http"
)

// ErrNotLoggedIn is returned by calls that need a token when none is stored.
var ErrNotLoggedIn = errors.New("not logged in: run -cmd login first")

// APIError is a non-2xx answer of the API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

// Client calls the API rooted at baseURL, e.g. https://localhost:3001/portfolio-api.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  *TokenStore
}

// New returns a Client. When caFile is set, the server certificate must
// chain to it; otherwise the system roots are used.
func New(baseURL, caFile string, tokens *TokenStore) (*Client, error) {
	hc := &http.Client{Timeout: 10 * time.Second}
	if caFile != "" {
		pool, err := certgen.LoadCAPool(caFile)
		if err != nil {
			return nil, err
		}
		hc.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12},
		}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc, tokens: tokens}, nil
}

// Signup creates an account. The stored token, if any, is sent so an admin
// can sign others up.
func (c *Client) Signup(ctx context.Context, req api.SignupRequest) (models.UserSummary, error) {
	token, err := c.tokens.Load()
	if err != nil {
		return models.UserSummary{}, err
	}
	var resp api.SignupResponse
	if err := c.do(ctx, http.MethodPost, "/auth/signup", token, req, &resp); err != nil {
		return models.UserSummary{}, err
	}
	return resp.User, nil
}

// Login exchanges credentials for a token and stores it.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var resp api.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", api.LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return err
	}
	return c.tokens.Save(resp.AccessToken)
}

// Logout revokes the stored token and forgets it.
func (c *Client) Logout(ctx context.Context) error {
	token, err := c.tokens.Load()
	if err != nil {
		return err
	}
	if token == "" {
		return ErrNotLoggedIn
	}
	if err := c.do(ctx, http.MethodPost, "/auth/logout", token, nil, nil); err != nil {
		return err
	}
	return c.tokens.Clear()
}

// Profile fetches a public profile.
func (c *Client) Profile(ctx context.Context, id string) (*models.Profile, error) {
	var p models.Profile
	if err := c.do(ctx, http.MethodGet, "/profiles/"+id, "", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Projects lists the projects of a profile.
func (c *Client) Projects(ctx context.Context, profileID string) ([]models.Project, error) {
	var projects []models.Project
	if err := c.do(ctx, http.MethodGet, "/profiles/"+profileID+"/projects", "", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// Contact sends a contact form message and returns the server's reply.
func (c *Client) Contact(ctx context.Context, req api.ContactRequest) (string, error) {
	var resp api.MessageResponse
	if err := c.do(ctx, http.MethodPost, "/contact", "", req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var eb middleware.ErrorBody
		if err := json.NewDecoder(resp.Body).Decode(&eb); err == nil {
			apiErr.Code, apiErr.Message = eb.Code, eb.Error
		} else {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
