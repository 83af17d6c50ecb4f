// Package api is the HTTP client for the credkeeper server.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/credkeeper/internal/netx"
)

// APIError is a rejection reported by the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

type RegisterRequest struct {
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateEmailRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	NewEmail string `json:"new_email"`
}

type UpdatePasswordRequest struct {
	Email           string `json:"email"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	NewPassword string `json:"new_password"`
	ResetMethod string `json:"reset_method,omitempty"`
	ResetToken  string `json:"reset_token,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Client calls the credential endpoints. Every method returns the server's
// confirmation message or an *APIError.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Register(ctx context.Context, r RegisterRequest) (string, error) {
	return c.call(ctx, http.MethodPost, "/register", r)
}

func (c *Client) Login(ctx context.Context, r LoginRequest) (string, error) {
	return c.call(ctx, http.MethodPost, "/login", r)
}

func (c *Client) UpdateEmail(ctx context.Context, r UpdateEmailRequest) (string, error) {
	return c.call(ctx, http.MethodPut, "/update-email", r)
}

func (c *Client) UpdatePassword(ctx context.Context, r UpdatePasswordRequest) (string, error) {
	return c.call(ctx, http.MethodPut, "/update-password", r)
}

func (c *Client) ResetPassword(ctx context.Context, r ResetPasswordRequest) (string, error) {
	return c.call(ctx, http.MethodPut, "/reset-password", r)
}

func (c *Client) call(ctx context.Context, method, path string, in any) (string, error) {
	var out messageResponse
	err := netx.DoJSON(ctx, c.http, method, c.baseURL+path, in, &out)

	var se *netx.StatusError
	if errors.As(err, &se) {
		return "", toAPIError(se)
	}
	if err != nil {
		return "", err
	}
	return out.Message, nil
}

func toAPIError(se *netx.StatusError) *APIError {
	var body errorResponse
	if err := json.Unmarshal(se.Body, &body); err != nil || body.Error == "" {
		return &APIError{StatusCode: se.StatusCode, Message: http.StatusText(se.StatusCode)}
	}
	return &APIError{StatusCode: se.StatusCode, Message: body.Error}
}
