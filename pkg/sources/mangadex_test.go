package sources

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kerbaras/mangadex-dl/pkg/data"
	"github.com/kerbaras/mangadex-dl/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mangaJSON = `{
	"manga": {"title": "Tom &amp; Jerry: Part 2"},
	"chapter": {
		"2002": {"chapter": "2", "volume": "1", "title": "Second", "lang_code": "gb", "group_name": "Alpha"},
		"2001": {"chapter": "1", "volume": "1", "title": "First", "lang_code": "gb", "group_name": "Alpha"},
		"2003": {"chapter": "", "volume": "", "title": "Special", "lang_code": "it", "group_name": "Beta"}
	},
	"status": "OK"
}`

func newTestMangaDex(t *testing.T, handler http.HandlerFunc) *MangaDex {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	session, err := utils.NewSession(utils.SessionOptions{})
	require.NoError(t, err)
	return NewMangaDex(session, server.URL)
}

func TestMangaDex_GetManga(t *testing.T) {
	md := newTestMangaDex(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/manga/12345/", r.URL.Path)
		io.WriteString(w, mangaJSON)
	})

	manga, err := md.GetManga(context.Background(), "12345")
	require.NoError(t, err)

	assert.Equal(t, "12345", manga.ID)
	assert.Equal(t, "Tom & Jerry: Part 2", manga.Title)
	assert.Equal(t, []data.ChapterRecord{
		{ID: "2002", Number: "2", Language: "gb", Group: "Alpha", Title: "Second", Volume: "1"},
		{ID: "2001", Number: "1", Language: "gb", Group: "Alpha", Title: "First", Volume: "1"},
		{ID: "2003", Number: "", Language: "it", Group: "Beta", Title: "Special", Volume: ""},
	}, manga.Chapters)
}

func TestMangaDex_GetMangaNotAManga(t *testing.T) {
	md := newTestMangaDex(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"status": "error", "message": "Manga not found"}`)
	})

	_, err := md.GetManga(context.Background(), "1")
	assert.ErrorIs(t, err, ErrNotAManga)
}

func TestMangaDex_GetMangaMalformed(t *testing.T) {
	md := newTestMangaDex(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, "<html>Checking your browser</html>")
	})

	_, err := md.GetManga(context.Background(), "1")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestMangaDex_GetMangaBadChapterList(t *testing.T) {
	md := newTestMangaDex(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"manga": {"title": "X"}, "chapter": ["not", "an", "object"]}`)
	})

	_, err := md.GetManga(context.Background(), "1")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestMangaDex_GetPagesRelativeServer(t *testing.T) {
	var baseURL string
	md := newTestMangaDex(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chapter/2001/", r.URL.Path)
		io.WriteString(w, `{"server": "/data/", "hash": "abc123", "page_array": ["x1.png", "x2.png"]}`)
	})
	baseURL = md.BaseURL()

	pages, err := md.GetPages(context.Background(), "2001")
	require.NoError(t, err)

	assert.Equal(t, "2001", pages.ChapterID)
	assert.Equal(t, []string{
		baseURL + "/data/abc123/x1.png",
		baseURL + "/data/abc123/x2.png",
	}, pages.URLs)
}

func TestMangaDex_GetPagesAbsoluteServer(t *testing.T) {
	md := newTestMangaDex(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"server": "https://s2.mangadex.org/data/", "hash": "h", "page_array": ["p1.jpg"]}`)
	})

	pages, err := md.GetPages(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://s2.mangadex.org/data/h/p1.jpg"}, pages.URLs)
}

func TestMangaDex_GetPagesMissingHash(t *testing.T) {
	md := newTestMangaDex(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"status": "deleted"}`)
	})

	_, err := md.GetPages(context.Background(), "7")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestParseURL(t *testing.T) {
	tests := []struct {
		url, id, base string
	}{
		{"https://mangadex.org/title/12345/some-manga", "12345", "https://mangadex.org"},
		{"https://mangadex.cc/manga/678", "678", "https://mangadex.cc"},
		{"mangadex.org/title/9", "9", "https://mangadex.org"},
		{"https://example.com/title/55", "55", DefaultBaseURL},
		{"https://www.mangadex.org/title/123/x", "123", "https://mangadex.org"},
		{"www.mangadex.cc/title/7/slug", "7", "https://mangadex.cc"},
		{"https://mangadex.org/title/123/mangadex.fan", "123", "https://mangadex.org"},
		{"https://MangaDex.ORG/title/4", "4", "https://mangadex.org"},
	}
	for _, tt := range tests {
		id, base, err := ParseURL(tt.url)
		require.NoError(t, err, tt.url)
		assert.Equal(t, tt.id, id, tt.url)
		assert.Equal(t, tt.base, base, tt.url)
	}
}

func TestParseURLWithoutID(t *testing.T) {
	_, _, err := ParseURL("https://mangadex.org/title/some-manga")
	assert.ErrorIs(t, err, ErrInvalidURL)
}
