package jellyfin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mediato115/internal/services"
)

// HTTPDoer describes the HTTP client used by the Jellyfin client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Item is a movie or series as reported by Jellyfin.
type Item struct {
	ID   string `json:"Id"`
	Name string `json:"Name"`
	Type string `json:"Type"`
	Path string `json:"Path"`
}

type itemsResponse struct {
	Items            []Item `json:"Items"`
	TotalRecordCount int    `json:"TotalRecordCount"`
}

// SystemInfo is the subset of /System/Info used for health checks.
type SystemInfo struct {
	ServerName string `json:"ServerName"`
	Version    string `json:"Version"`
}

// Client talks to a single Jellyfin server.
type Client struct {
	baseURL string
	apiKey  string
	userID  string
	client  HTTPDoer
}

// NewClient constructs a Jellyfin client. When userID is set, searches are
// scoped to that user's libraries.
func NewClient(baseURL, apiKey, userID string, client HTTPDoer) *Client {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  strings.TrimSpace(apiKey),
		userID:  strings.TrimSpace(userID),
		client:  client,
	}
}

// Search returns movies and series whose name matches term, in server order.
func (c *Client) Search(ctx context.Context, term string) ([]Item, error) {
	query := url.Values{}
	query.Set("searchTerm", term)
	query.Set("Recursive", "true")
	query.Set("IncludeItemTypes", "Movie,Series")
	query.Set("Fields", "Path")
	return c.items(ctx, "search", query)
}

// ItemsByID returns the item with the given Jellyfin ID, if any.
func (c *Client) ItemsByID(ctx context.Context, id string) ([]Item, error) {
	query := url.Values{}
	query.Set("Ids", id)
	query.Set("Fields", "Path")
	return c.items(ctx, "lookup", query)
}

// Ping fetches /System/Info to confirm the server is reachable and the key works.
func (c *Client) Ping(ctx context.Context) (SystemInfo, error) {
	var info SystemInfo
	if err := c.getJSON(ctx, "ping", "/System/Info", nil, &info); err != nil {
		return SystemInfo{}, err
	}
	return info, nil
}

func (c *Client) items(ctx context.Context, operation string, query url.Values) ([]Item, error) {
	path := "/Items"
	if c.userID != "" {
		path = "/Users/" + url.PathEscape(c.userID) + "/Items"
	}
	var resp itemsResponse
	if err := c.getJSON(ctx, operation, path, query, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *Client) getJSON(ctx context.Context, operation, path string, query url.Values, out any) error {
	if c.baseURL == "" || c.apiKey == "" {
		return services.Wrap(services.ErrConfiguration, "jellyfin", operation, "url and api key are required", nil)
	}
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build jellyfin request: %w", err)
	}
	req.Header.Set("X-Emby-Token", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, "jellyfin", operation, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return services.Wrap(services.ErrConfiguration, "jellyfin", operation, fmt.Sprintf("server rejected api key (%d)", resp.StatusCode), nil)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return services.Wrap(services.ErrExternalTool, "jellyfin", operation,
			fmt.Sprintf("returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrExternalTool, "jellyfin", operation, "decode response", err)
	}
	return nil
}
