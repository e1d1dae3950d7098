package cover

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL points at the Google Books volumes API.
	DefaultBaseURL = "https://www.googleapis.com/books/v1"

	requestTimeout = 10 * time.Second

	// Stay well under the public quota; a personal tracker never needs more.
	rateLimit = 5
	rateBurst = 5
)

var zoomParam = regexp.MustCompile(`&zoom=\d+`)

// Client looks up cover image URLs for a book by title and author. Lookups
// are strictly best-effort: every failure resolves to "no cover" and is
// never surfaced to the caller.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

func NewClient(baseURL string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(rateLimit), rateBurst),
		logger:  logger,
	}
}

// volumesResponse matches the slice of the volumes payload we care about.
type volumesResponse struct {
	Items []struct {
		VolumeInfo struct {
			ImageLinks struct {
				ExtraLarge     string `json:"extraLarge"`
				Large          string `json:"large"`
				Medium         string `json:"medium"`
				Thumbnail      string `json:"thumbnail"`
				SmallThumbnail string `json:"smallThumbnail"`
			} `json:"imageLinks"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// Lookup returns the best available cover URL for the given title and
// optional author. The second return is false when no usable image was
// found for any reason.
func (c *Client) Lookup(ctx context.Context, title string, author *string) (string, bool) {
	parts := []string{"intitle:" + title}
	if author != nil && *author != "" {
		parts = append(parts, "inauthor:"+*author)
	}
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.QueryEscape(p)
	}

	u := c.baseURL + "/volumes?q=" + strings.Join(escaped, "+") + "&maxResults=1"

	if err := c.limiter.Wait(ctx); err != nil {
		return "", false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		c.logger.Debug("cover lookup: build request failed", "error", err)
		return "", false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("cover lookup: request failed", "title", title, "error", err)
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("cover lookup: unexpected status", "title", title, "status", resp.StatusCode)
		return "", false
	}

	var payload volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.Debug("cover lookup: decode failed", "title", title, "error", err)
		return "", false
	}

	if len(payload.Items) == 0 {
		return "", false
	}

	links := payload.Items[0].VolumeInfo.ImageLinks
	raw := firstNonEmpty(
		links.ExtraLarge,
		links.Large,
		links.Medium,
		links.Thumbnail,
		links.SmallThumbnail,
	)
	if raw == "" {
		return "", false
	}

	return upgradeImageURL(raw), true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// upgradeImageURL forces https and asks for a larger render when the URL
// carries a zoom parameter.
func upgradeImageURL(raw string) string {
	if strings.HasPrefix(raw, "http:") {
		raw = "https:" + strings.TrimPrefix(raw, "http:")
	}
	return zoomParam.ReplaceAllString(raw, "&zoom=2")
}
