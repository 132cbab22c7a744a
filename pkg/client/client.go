// Package client is a Go client for the portal API.
//
// Authenticated calls take the *Session returned by Register or Login. A guest
// session from GuestSession has no token and fails those calls locally with
// ErrGuestSession.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultTimeout = 15 * time.Second

var ErrGuestSession = errors.New("guest sessions cannot call authenticated endpoints")

// APIError is a non-2xx response. Message carries the server's "message" field.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("portal api: %d %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   defaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type RegisterRequest struct {
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	Correo   string `json:"correo"`
	Clave    string `json:"clave"`
}

// ProfileUpdate sends only the non-nil fields.
type ProfileUpdate struct {
	Nombre   *string `json:"nombre,omitempty"`
	Apellido *string `json:"apellido,omitempty"`
	Correo   *string `json:"correo,omitempty"`
	Foto     *string `json:"foto,omitempty"`
}

type PhotoUpload struct {
	UploadURL     string `json:"upload_url"`
	FinalImageURL string `json:"final_image_url"`
}

type userEnvelope struct {
	User User `json:"user"`
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	var session Session
	if err := c.do(ctx, http.MethodPost, "/register", "", req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) Login(ctx context.Context, correo, clave string) (*Session, error) {
	body := map[string]string{"correo": correo, "clave": clave}

	var session Session
	if err := c.do(ctx, http.MethodPost, "/login", "", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) ListUsers(ctx context.Context, s *Session) ([]User, error) {
	token, err := s.bearer()
	if err != nil {
		return nil, err
	}

	var users []User
	if err := c.do(ctx, http.MethodGet, "/users", token, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) DeleteUser(ctx context.Context, s *Session, id int64) error {
	token, err := s.bearer()
	if err != nil {
		return err
	}

	return c.do(ctx, http.MethodDelete, "/users/"+strconv.FormatInt(id, 10), token, nil, nil)
}

// GetProfile fetches the caller's profile and refreshes s.User.
func (c *Client) GetProfile(ctx context.Context, s *Session) (*User, error) {
	return c.profileCall(ctx, s, http.MethodGet, "/profile", nil)
}

func (c *Client) UpdateProfile(ctx context.Context, s *Session, update ProfileUpdate) (*User, error) {
	return c.profileCall(ctx, s, http.MethodPut, "/profile", update)
}

func (c *Client) UpdatePhoto(ctx context.Context, s *Session, foto string) (*User, error) {
	return c.profileCall(ctx, s, http.MethodPost, "/profile/photo", map[string]string{"foto": foto})
}

func (c *Client) PhotoUploadURL(ctx context.Context, s *Session) (*PhotoUpload, error) {
	token, err := s.bearer()
	if err != nil {
		return nil, err
	}

	var upload PhotoUpload
	if err := c.do(ctx, http.MethodPost, "/profile/photo/upload-url", token, nil, &upload); err != nil {
		return nil, err
	}
	return &upload, nil
}

func (c *Client) profileCall(ctx context.Context, s *Session, method, path string, body interface{}) (*User, error) {
	token, err := s.bearer()
	if err != nil {
		return nil, err
	}

	var envelope userEnvelope
	if err := c.do(ctx, method, path, token, body, &envelope); err != nil {
		return nil, err
	}

	s.User = envelope.User
	return &envelope.User, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&payload); err == nil {
		apiErr.Message = payload.Message
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}

	return apiErr
}
