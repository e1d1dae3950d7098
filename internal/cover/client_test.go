package cover

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func volumesJSON(links map[string]string) string {
	body := `{"items":[{"volumeInfo":{"imageLinks":{`
	first := true
	for k, v := range links {
		if !first {
			body += ","
		}
		body += `"` + k + `":"` + v + `"`
		first = false
	}
	return body + `}}}]}`
}

func newStubServer(t *testing.T, status int, body string) (*httptest.Server, *http.Request) {
	t.Helper()

	captured := &http.Request{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = *r
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func author(s string) *string { return &s }

func TestLookup_PrefersLargestImage(t *testing.T) {
	srv, _ := newStubServer(t, http.StatusOK, volumesJSON(map[string]string{
		"smallThumbnail": "https://img.example/s",
		"thumbnail":      "https://img.example/t",
		"large":          "https://img.example/l",
	}))

	c := NewClient(srv.URL, nil)
	url, ok := c.Lookup(context.Background(), "Dune", nil)

	require.True(t, ok)
	assert.Equal(t, "https://img.example/l", url)
}

func TestLookup_FallsBackToSmallThumbnail(t *testing.T) {
	srv, _ := newStubServer(t, http.StatusOK, volumesJSON(map[string]string{
		"smallThumbnail": "https://img.example/s",
	}))

	c := NewClient(srv.URL, nil)
	url, ok := c.Lookup(context.Background(), "Dune", nil)

	require.True(t, ok)
	assert.Equal(t, "https://img.example/s", url)
}

func TestLookup_RewritesSchemeAndZoom(t *testing.T) {
	srv, _ := newStubServer(t, http.StatusOK, volumesJSON(map[string]string{
		"thumbnail": "http://img.example/dune?printsec=frontcover&zoom=1&edge=curl",
	}))

	c := NewClient(srv.URL, nil)
	url, ok := c.Lookup(context.Background(), "Dune", nil)

	require.True(t, ok)
	assert.Equal(t, "https://img.example/dune?printsec=frontcover&zoom=2&edge=curl", url)
}

func TestLookup_QueryIncludesTitleAndAuthor(t *testing.T) {
	srv, captured := newStubServer(t, http.StatusOK, volumesJSON(map[string]string{
		"thumbnail": "https://img.example/t",
	}))

	c := NewClient(srv.URL, nil)
	_, ok := c.Lookup(context.Background(), "Dune", author("Frank Herbert"))

	require.True(t, ok)
	q := captured.URL.Query()
	assert.Equal(t, "intitle:Dune inauthor:Frank Herbert", q.Get("q"))
	assert.Equal(t, "1", q.Get("maxResults"))
}

func TestLookup_NoAuthorOmitsInauthor(t *testing.T) {
	srv, captured := newStubServer(t, http.StatusOK, volumesJSON(map[string]string{
		"thumbnail": "https://img.example/t",
	}))

	c := NewClient(srv.URL, nil)
	_, ok := c.Lookup(context.Background(), "Dune", nil)

	require.True(t, ok)
	assert.Equal(t, "intitle:Dune", captured.URL.Query().Get("q"))
}

func TestLookup_FailuresResolveToNoCover(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, ""},
		{"rate limited", http.StatusTooManyRequests, ""},
		{"malformed json", http.StatusOK, "{not json"},
		{"no items", http.StatusOK, `{"items":[]}`},
		{"no image links", http.StatusOK, `{"items":[{"volumeInfo":{}}]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := newStubServer(t, tc.status, tc.body)

			c := NewClient(srv.URL, nil)
			url, ok := c.Lookup(context.Background(), "Dune", nil)

			assert.False(t, ok)
			assert.Empty(t, url)
		})
	}
}

func TestLookup_UnreachableServerResolvesToNoCover(t *testing.T) {
	srv, _ := newStubServer(t, http.StatusOK, "{}")
	srv.Close()

	c := NewClient(srv.URL, nil)
	url, ok := c.Lookup(context.Background(), "Dune", nil)

	assert.False(t, ok)
	assert.Empty(t, url)
}
