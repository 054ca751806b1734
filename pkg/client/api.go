package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

type User struct {
	ID             string    `json:"_id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone,omitempty"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
	Role           string    `json:"role"`
	Posts          []string  `json:"posts"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type Owner struct {
	ID             string `json:"_id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

type Property struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Amenities   []string  `json:"amenities"`
	Area        float64   `json:"area"`
	Price       float64   `json:"price"`
	Location    string    `json:"location"`
	Images      []string  `json:"images"`
	Thumbnail   string    `json:"thumbnail"`
	OwnerID     string    `json:"ownerId"`
	Owner       *Owner    `json:"owner,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type RegisterRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	Name           string `json:"name"`
	Phone          string `json:"phone,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

// PropertyUpdate is a partial update; nil fields are not sent.
type PropertyUpdate struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Type        *string  `json:"type,omitempty"`
	Amenities   []string `json:"amenities,omitempty"`
	Area        *float64 `json:"area,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Location    *string  `json:"location,omitempty"`
}

type authResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Register creates an account and starts a session for it.
func (c *Client) Register(ctx context.Context, in RegisterRequest) (User, error) {
	var out authResponse
	if err := c.call(ctx, http.MethodPost, "/auth/register", in, &out, false); err != nil {
		return User{}, err
	}
	c.session.Set(out.Token)
	return out.User, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (User, error) {
	in := map[string]string{"email": email, "password": password}
	var out authResponse
	if err := c.call(ctx, http.MethodPost, "/auth/login", in, &out, false); err != nil {
		return User{}, err
	}
	c.session.Set(out.Token)
	return out.User, nil
}

// Logout clears the session even when the call fails.
func (c *Client) Logout(ctx context.Context) error {
	defer c.session.Clear()
	return c.call(ctx, http.MethodPost, "/auth/logout", nil, nil, false)
}

func (c *Client) Me(ctx context.Context) (User, error) {
	var out User
	err := c.call(ctx, http.MethodGet, "/auth/me", nil, &out, true)
	return out, err
}

func (c *Client) ListProperties(ctx context.Context) ([]Property, error) {
	var out []Property
	err := c.call(ctx, http.MethodGet, "/properties", nil, &out, true)
	return out, err
}

func (c *Client) GetProperty(ctx context.Context, id string) (Property, error) {
	var out Property
	err := c.call(ctx, http.MethodGet, "/properties/"+url.PathEscape(id), nil, &out, true)
	return out, err
}

func (c *Client) UpdateProperty(ctx context.Context, id string, update PropertyUpdate) (Property, error) {
	var out struct {
		Property Property `json:"property"`
	}
	err := c.call(ctx, http.MethodPut, "/properties/"+url.PathEscape(id), update, &out, true)
	return out.Property, err
}

func (c *Client) DeleteProperty(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, "/properties/"+url.PathEscape(id), nil, nil, true)
}

// call sends a JSON request. With renew unset a 401 is returned to the caller
// instead of triggering a refresh, as for the credential endpoints.
func (c *Client) call(ctx context.Context, method, path string, in, out any, renew bool) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	if !renew {
		ctx = context.WithValue(ctx, retryKey{}, true)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
