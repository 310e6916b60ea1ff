package plex

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"runtime"
	"strings"
	"time"

	"mediato115/internal/services"
)

const (
	productName    = "mediato115"
	productVersion = "0.1.0"
	userAgent      = "mediato115-Go/0.1.0"
)

// Item types reported by Plex.
const (
	TypeMovie = "movie"
	TypeShow  = "show"
)

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Item is a movie or show with its local path resolved.
type Item struct {
	RatingKey string
	Title     string
	Type      string
	Path      string
}

// Identity is the server identity returned by /identity.
type Identity struct {
	MachineIdentifier string `xml:"machineIdentifier,attr"`
	Version           string `xml:"version,attr"`
}

type mediaContainer struct {
	Videos      []video     `xml:"Video"`
	Directories []directory `xml:"Directory"`
}

type video struct {
	RatingKey string  `xml:"ratingKey,attr"`
	Title     string  `xml:"title,attr"`
	Type      string  `xml:"type,attr"`
	Media     []media `xml:"Media"`
}

type media struct {
	Parts []part `xml:"Part"`
}

type part struct {
	File string `xml:"file,attr"`
}

type directory struct {
	RatingKey string     `xml:"ratingKey,attr"`
	Title     string     `xml:"title,attr"`
	Type      string     `xml:"type,attr"`
	Locations []location `xml:"Location"`
}

type location struct {
	Path string `xml:"path,attr"`
}

// Client talks to a single Plex Media Server.
type Client struct {
	baseURL  string
	token    string
	clientID string
	client   HTTPDoer
}

// NewClient constructs a Plex client for the server at baseURL.
func NewClient(baseURL, token string, client HTTPDoer) *Client {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:    strings.TrimSpace(token),
		clientID: productName,
		client:   client,
	}
}

// Search returns movies matching query followed by matching shows, each in
// server order. Episodes, seasons and other hub results are skipped.
func (c *Client) Search(ctx context.Context, query string) ([]Item, error) {
	values := url.Values{}
	values.Set("query", query)
	var container mediaContainer
	if err := c.getXML(ctx, "search", "/search", values, &container); err != nil {
		return nil, err
	}
	return c.resolve(ctx, container)
}

// Metadata returns the movie or show identified by ratingKey.
func (c *Client) Metadata(ctx context.Context, ratingKey string) ([]Item, error) {
	var container mediaContainer
	if err := c.getXML(ctx, "metadata", "/library/metadata/"+url.PathEscape(ratingKey), nil, &container); err != nil {
		return nil, err
	}
	return c.resolve(ctx, container)
}

// Identity fetches the server identity to confirm reachability.
func (c *Client) Identity(ctx context.Context) (Identity, error) {
	var identity Identity
	if err := c.getXML(ctx, "identity", "/identity", nil, &identity); err != nil {
		return Identity{}, err
	}
	return identity, nil
}

func (c *Client) resolve(ctx context.Context, container mediaContainer) ([]Item, error) {
	items := make([]Item, 0, len(container.Videos)+len(container.Directories))
	for _, v := range container.Videos {
		if v.Type != TypeMovie {
			continue
		}
		items = append(items, Item{RatingKey: v.RatingKey, Title: v.Title, Type: TypeMovie, Path: firstPart(v.Media)})
	}
	for _, d := range container.Directories {
		if d.Type != TypeShow {
			continue
		}
		path := firstLocation(d.Locations)
		if path == "" && d.RatingKey != "" {
			var detail mediaContainer
			if err := c.getXML(ctx, "metadata", "/library/metadata/"+url.PathEscape(d.RatingKey), nil, &detail); err != nil {
				return nil, err
			}
			for _, dd := range detail.Directories {
				if p := firstLocation(dd.Locations); p != "" {
					path = p
					break
				}
			}
		}
		items = append(items, Item{RatingKey: d.RatingKey, Title: d.Title, Type: TypeShow, Path: path})
	}
	return items, nil
}

func firstPart(media []media) string {
	for _, m := range media {
		for _, p := range m.Parts {
			if p.File != "" {
				return p.File
			}
		}
	}
	return ""
}

func firstLocation(locations []location) string {
	for _, l := range locations {
		if l.Path != "" {
			return l.Path
		}
	}
	return ""
}

func (c *Client) getXML(ctx context.Context, operation, path string, query url.Values, out any) error {
	if c.baseURL == "" || c.token == "" {
		return services.Wrap(services.ErrConfiguration, "plex", operation, "url and token are required", nil)
	}
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build plex request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Plex-Token", c.token)
	applyStandardHeaders(req, c.clientID)

	resp, err := c.client.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, "plex", operation, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return services.Wrap(services.ErrConfiguration, "plex", operation, "server rejected token", nil)
	}
	if resp.StatusCode == http.StatusNotFound && operation == "metadata" {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return services.Wrap(services.ErrExternalTool, "plex", operation,
			fmt.Sprintf("returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}
	if err := xml.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrExternalTool, "plex", operation, "decode response", err)
	}
	return nil
}

func applyStandardHeaders(req *http.Request, clientIdentifier string) {
	req.Header.Set("X-Plex-Client-Identifier", clientIdentifier)
	req.Header.Set("X-Plex-Product", productName)
	req.Header.Set("X-Plex-Version", productVersion)
	req.Header.Set("X-Plex-Device-Name", productName)
	req.Header.Set("X-Plex-Platform", runtime.GOOS)
}
