package ghost

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dinner-planner/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

const (
	adminAudience = "/admin/"
	tokenTTL      = 5 * time.Minute
)

// Post is a post as returned by the Ghost Admin API.
type Post struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	URL    string `json:"url"`
	Status string `json:"status"`
}

type postsEnvelope struct {
	Posts []Post `json:"posts"`
}

type newPost struct {
	Title  string   `json:"title"`
	HTML   string   `json:"html"`
	Status string   `json:"status"`
	Tags   []string `json:"tags,omitempty"`
}

// Publisher creates posts on a Ghost site.
type Publisher interface {
	CreatePost(ctx context.Context, title, html string, publish bool) (*Post, error)
}

// Client is a Ghost Admin API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	adminKey   string
	tags       []string
	now        func() time.Time
}

// NewClient creates a new Ghost Admin API client. Posts are tagged "dinners".
func NewClient(cfg *config.Config) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    cfg.GhostURL,
		adminKey:   cfg.GhostAdminKey,
		tags:       []string{"dinners"},
		now:        time.Now,
	}
}

// CreatePost creates a post from HTML, as a draft unless publish is set.
func (c *Client) CreatePost(ctx context.Context, title, html string, publish bool) (*Post, error) {
	token, err := c.createAdminToken()
	if err != nil {
		return nil, fmt.Errorf("failed to create admin token: %w", err)
	}

	status := "draft"
	if publish {
		status = "published"
	}

	body, err := json.Marshal(map[string][]newPost{
		"posts": {{Title: title, HTML: html, Status: status, Tags: c.tags}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal post: %w", err)
	}

	url := c.baseURL + "/ghost/api/admin/posts/?source=html"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Ghost "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("admin api error: status %d, body: %s", resp.StatusCode, errBody)
	}

	var envelope postsEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(envelope.Posts) == 0 {
		return nil, errors.New("no post returned from api")
	}
	return &envelope.Posts[0], nil
}

// createAdminToken generates a short-lived JWT for the Admin API.
func (c *Client) createAdminToken() (string, error) {
	id, secretHex, ok := strings.Cut(c.adminKey, ":")
	if !ok || id == "" || secretHex == "" {
		return "", errors.New("invalid admin key format: expected id:secret")
	}

	secret, err := hex.DecodeString(secretHex)
	if err != nil {
		return "", fmt.Errorf("failed to decode secret hex: %w", err)
	}

	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		Audience:  jwt.ClaimStrings{adminAudience},
	})
	token.Header["kid"] = id

	return token.SignedString(secret)
}
