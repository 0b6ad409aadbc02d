package plex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/isaacrego/plex-poster-display/config"
	"github.com/isaacrego/plex-poster-display/models"
	"github.com/isaacrego/plex-poster-display/services/mediasource"
)

const (
	defaultPort     = "32400"
	defaultTimeout  = 5 * time.Second
	defaultPageSize = 200
	maxPages        = 100
	maxImageBytes   = 20 << 20

	clientID = "plex-poster-display"
	product  = "Poster Display"
	version  = "1.0"
)

var (
	ErrNotConfigured = errors.New("plex server address or token not set")
	ErrServerOffline = errors.New("plex server unreachable")
	ErrAuthFailed    = errors.New("plex token rejected")
	ErrForeignImage  = errors.New("image is not hosted on the plex server")
)

// Client talks to a Plex Media Server over its JSON API.
type Client struct {
	baseURL    string
	token      string
	pageSize   int
	httpClient *http.Client
}

// NewClient creates a client for host (an address, host:port or URL) and token.
func NewClient(host, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    NormalizeBaseURL(host),
		token:      strings.TrimSpace(token),
		pageSize:   defaultPageSize,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// NewFactory returns a mediasource.Factory producing Plex clients.
func NewFactory(timeout time.Duration) mediasource.Factory {
	return func(conn config.Connection) mediasource.Source {
		return NewClient(conn.Host(), conn.Token(), timeout)
	}
}

// NormalizeBaseURL turns a user supplied server address into a base URL,
// defaulting the scheme to http and the port to 32400.
func NormalizeBaseURL(host string) string {
	host = strings.TrimSpace(host)
	if host == "" {
		return ""
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}

	u, err := url.Parse(host)
	if err != nil || u.Host == "" {
		return strings.TrimRight(host, "/")
	}
	if u.Port() == "" {
		u.Host = net.JoinHostPort(u.Hostname(), defaultPort)
	}
	u.RawQuery = ""
	u.Fragment = ""
	return strings.TrimRight(u.String(), "/")
}

// BaseURL returns the normalized server URL.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) configured() bool {
	return c.baseURL != "" && c.token != ""
}

// setPlexHeaders adds required Plex headers to a request
func (c *Client) setPlexHeaders(req *http.Request) {
	req.Header.Set("X-Plex-Token", c.token)
	req.Header.Set("X-Plex-Client-Identifier", clientID)
	req.Header.Set("X-Plex-Product", product)
	req.Header.Set("X-Plex-Version", version)
	req.Header.Set("Accept", "application/json")
}

func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if !c.configured() {
		return nil, ErrNotConfigured
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setPlexHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServerOffline, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrAuthFailed
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("plex %s failed: %s", path, resp.Status)
	}
	return body, nil
}

func (c *Client) getContainer(ctx context.Context, path string, query url.Values) (*mediaContainer, error) {
	body, err := c.doRequest(ctx, path, query)
	if err != nil {
		return nil, err
	}
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &resp.MediaContainer, nil
}

// Sessions lists what is currently being played on the server.
func (c *Client) Sessions(ctx context.Context) ([]models.Session, error) {
	container, err := c.getContainer(ctx, "/status/sessions", nil)
	if err != nil {
		return nil, err
	}
	return mapSessions(container.Metadata), nil
}

// Libraries lists the movie and show sections.
func (c *Client) Libraries(ctx context.Context) ([]models.Library, error) {
	container, err := c.getContainer(ctx, "/library/sections", nil)
	if err != nil {
		return nil, err
	}
	return mapLibraries(container.Directory), nil
}

// LibraryItems pages through a section and returns its movies and shows.
func (c *Client) LibraryItems(ctx context.Context, key string) ([]models.ArtworkItem, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errors.New("library key required")
	}

	path := fmt.Sprintf("/library/sections/%s/all", url.PathEscape(key))
	var items []models.ArtworkItem
	start := 0

	for page := 0; page < maxPages; page++ {
		query := url.Values{}
		query.Set("X-Plex-Container-Start", strconv.Itoa(start))
		query.Set("X-Plex-Container-Size", strconv.Itoa(c.pageSize))

		container, err := c.getContainer(ctx, path, query)
		if err != nil {
			return nil, err
		}
		if len(container.Metadata) == 0 {
			break
		}

		for _, m := range container.Metadata {
			if item, ok := mapArtwork(m); ok {
				items = append(items, item)
			}
		}

		size := container.Size
		if size == 0 {
			size = len(container.Metadata)
		}
		if start+size >= container.TotalSize {
			break
		}
		start += c.pageSize
	}

	return items, nil
}

// ImageURL resolves an image reference against the server, appending the token.
func (c *Client) ImageURL(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	if c.baseURL == "" {
		return ""
	}
	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}

	sep := "?"
	if strings.Contains(ref, "?") {
		sep = "&"
	}
	return c.baseURL + ref + sep + "X-Plex-Token=" + url.QueryEscape(c.token)
}

// FetchImage downloads an image hosted by the server.
func (c *Client) FetchImage(ctx context.Context, ref string) ([]byte, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, errors.New("image reference required")
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		if !strings.HasPrefix(ref, c.baseURL+"/") {
			return nil, ErrForeignImage
		}
		ref = strings.TrimPrefix(ref, c.baseURL)
	}

	path, rawQuery, _ := strings.Cut(ref, "?")
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return nil, fmt.Errorf("parse image query: %w", err)
	}
	query.Del("X-Plex-Token")

	body, err := c.doRequest(ctx, path, query)
	if err != nil {
		return nil, err
	}
	if len(body) > maxImageBytes {
		return nil, fmt.Errorf("image larger than %d bytes", maxImageBytes)
	}
	return body, nil
}

// TestConnection checks that the server answers the sessions endpoint with
// the configured token.
func (c *Client) TestConnection(ctx context.Context) (bool, string) {
	if !c.configured() {
		return false, "Server address and token are required"
	}
	if _, err := c.getContainer(ctx, "/status/sessions", nil); err != nil {
		switch {
		case errors.Is(err, ErrAuthFailed):
			return false, "Authentication failed: check the Plex token"
		case errors.Is(err, ErrServerOffline):
			return false, "Failed to fetch /status/sessions: server unreachable"
		default:
			return false, "Failed to fetch /status/sessions"
		}
	}
	return true, "OK"
}
