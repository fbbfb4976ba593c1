// Package identity is the HTTP client of the remote identity service.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	autherrors "github.com/gogotex/gogotex/backend/auth-widget/internal/errors"
	"github.com/gogotex/gogotex/backend/auth-widget/pkg/logger"
)

// DefaultRegisterMessage is returned when registration succeeds without a message.
const DefaultRegisterMessage = "Registration successful. Please check your email to verify your account."

var log = logger.Named("identity")

// TokenPair is the body of a successful login or refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Client talks to {base}/auth/*.
type Client struct {
	base string
	http *http.Client
}

// NewClient builds a client for baseURL. A nil httpClient gets a 15s timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// Login exchanges credentials for a token pair.
func (c *Client) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	var tp TokenPair
	if _, err := c.post(ctx, "/auth/login", credentials{Email: email, Password: password}, &tp); err != nil {
		return nil, err
	}
	if tp.AccessToken == "" || tp.RefreshToken == "" {
		return nil, autherrors.Wrapf(autherrors.ErrMalformedResponse, "login response without tokens")
	}
	return &tp, nil
}

// Register creates an account. No tokens are issued; the returned message
// asks the user to verify their email.
func (c *Client) Register(ctx context.Context, email, password string) (string, error) {
	msg, err := c.post(ctx, "/auth/register", credentials{Email: email, Password: password}, nil)
	if err != nil {
		return "", err
	}
	if msg == "" {
		msg = DefaultRegisterMessage
	}
	return msg, nil
}

// Refresh exchanges a refresh token for a new token pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var tp TokenPair
	if _, err := c.post(ctx, "/auth/refresh", refreshRequest{RefreshToken: refreshToken}, &tp); err != nil {
		return nil, err
	}
	if tp.AccessToken == "" || tp.RefreshToken == "" {
		return nil, autherrors.Wrapf(autherrors.ErrMalformedResponse, "refresh response without tokens")
	}
	return &tp, nil
}

// OAuthURL is the browser redirect target for third-party login, e.g. "linkedin".
func (c *Client) OAuthURL(provider string) string {
	return c.base + "/auth/" + url.PathEscape(provider)
}

// post sends body as JSON. It returns the response message (JSON "message" or
// raw text) and decodes a JSON body into out on success.
func (c *Client) post(ctx context.Context, path string, body, out interface{}) (string, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warnf("POST %s failed: %v", path, err)
		return "", fmt.Errorf("%w: %v", autherrors.ErrNetwork, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", autherrors.ErrNetwork, err)
	}

	isJSON := strings.Contains(resp.Header.Get("Content-Type"), "application/json")
	msg := responseMessage(raw, isJSON)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if msg == "" {
			msg = "Operation failed"
		}
		log.Debugf("POST %s rejected with %d", path, resp.StatusCode)
		return "", &autherrors.RejectedError{Status: resp.StatusCode, Message: msg}
	}
	if out != nil {
		if !isJSON {
			return "", autherrors.Wrapf(autherrors.ErrMalformedResponse, "content type %q", resp.Header.Get("Content-Type"))
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return "", autherrors.Wrapf(autherrors.ErrMalformedResponse, "%v", err)
		}
	}
	return msg, nil
}

// responseMessage extracts the human readable text of a response body.
func responseMessage(raw []byte, isJSON bool) string {
	if !isJSON {
		return strings.TrimSpace(string(raw))
	}
	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return strings.TrimSpace(string(raw))
	}
	for _, k := range []string{"message", "error_description", "error"} {
		if s, ok := data[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
