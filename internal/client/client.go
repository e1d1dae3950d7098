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

	"booktrack/internal/model"
)

// APIError carries the status and server message of a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

// Client is a typed HTTP client over the book API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// BookInput is the add-book payload. Zero-value fields are omitted so the
// server applies its own defaults.
type BookInput struct {
	Title       string      `json:"title"`
	Author      string      `json:"author,omitempty"`
	Shelf       model.Shelf `json:"shelf,omitempty"`
	Genres      []string    `json:"genres,omitempty"`
	ReleaseDate string      `json:"releaseDate,omitempty"`
}

// ListBooks fetches one shelf, or every book when shelf is empty.
func (c *Client) ListBooks(ctx context.Context, shelf model.Shelf) ([]model.Book, error) {
	path := "/books"
	if shelf != "" {
		path += "?shelf=" + url.QueryEscape(string(shelf))
	}

	var books []model.Book
	if err := c.do(ctx, http.MethodGet, path, nil, &books); err != nil {
		return nil, err
	}
	return normalizeBooks(books), nil
}

func (c *Client) CreateBook(ctx context.Context, in BookInput) (*model.Book, error) {
	var book model.Book
	if err := c.do(ctx, http.MethodPost, "/books", in, &book); err != nil {
		return nil, err
	}
	return normalizeBook(&book), nil
}

// UpdateBook sends a partial update; only the keys present in patch are
// applied server-side.
func (c *Client) UpdateBook(ctx context.Context, id string, patch map[string]any) (*model.Book, error) {
	var book model.Book
	if err := c.do(ctx, http.MethodPatch, "/books/"+id, patch, &book); err != nil {
		return nil, err
	}
	return normalizeBook(&book), nil
}

func (c *Client) DeleteBook(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/books/"+id, nil, nil)
}

func (c *Client) FetchCover(ctx context.Context, id string) (*model.Book, error) {
	var book model.Book
	if err := c.do(ctx, http.MethodPost, "/books/"+id+"/fetch-cover", nil, &book); err != nil {
		return nil, err
	}
	return normalizeBook(&book), nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    readErrorMessage(resp.Body, resp.StatusCode),
		}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func readErrorMessage(body io.Reader, status int) string {
	data, err := io.ReadAll(body)
	if err == nil {
		var envelope struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &envelope) == nil && envelope.Message != "" {
			return envelope.Message
		}
	}
	return fmt.Sprintf("request failed (%d)", status)
}

// normalizeBooks guarantees a non-nil genre list on every record so
// consumers never branch on null.
func normalizeBooks(books []model.Book) []model.Book {
	for i := range books {
		normalizeBook(&books[i])
	}
	return books
}

func normalizeBook(b *model.Book) *model.Book {
	if b.Genres == nil {
		b.Genres = model.GenreList{}
	}
	return b
}
