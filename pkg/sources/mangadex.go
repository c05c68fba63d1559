package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/kerbaras/mangadex-dl/pkg/data"
	"github.com/kerbaras/mangadex-dl/pkg/utils"
)

const DefaultBaseURL = "https://mangadex.org"

var (
	ErrInvalidURL        = errors.New("not a MangaDex manga URL")
	ErrMalformedResponse = errors.New("malformed response")
	ErrNotAManga         = errors.New("please enter a MangaDex manga (not chapter) URL")
)

var mangaIDPattern = regexp.MustCompile(`[0-9]+`)

// ParseURL extracts the manga id from a MangaDex URL and the base URL of
// the site it points to (mangadex.org, mangadex.cc, ...).
func ParseURL(rawURL string) (id string, baseURL string, err error) {
	id = mangaIDPattern.FindString(rawURL)
	if id == "" {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidURL, rawURL)
	}

	baseURL = DefaultBaseURL
	if tld := siteTLD(rawURL); tld != "" {
		baseURL = "https://mangadex." + tld
	}
	return id, baseURL, nil
}

// siteTLD returns the host label following "mangadex", so both
// "mangadex.cc" and "www.mangadex.org" resolve. URLs without a scheme are
// read as if they had one.
func siteTLD(rawURL string) string {
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	labels := strings.Split(strings.ToLower(u.Hostname()), ".")
	for i := 0; i < len(labels)-1; i++ {
		if labels[i] == "mangadex" && labels[i+1] != "" {
			return labels[i+1]
		}
	}
	return ""
}

type mangaResponse struct {
	Manga *struct {
		Title string `json:"title"`
	} `json:"manga"`
	Chapter chapterIndex `json:"chapter"`
}

type chapterEntry struct {
	Chapter   string `json:"chapter"`
	Volume    string `json:"volume"`
	Title     string `json:"title"`
	LangCode  string `json:"lang_code"`
	GroupName string `json:"group_name"`
}

// chapterIndex decodes the "chapter" object (id -> entry) into records,
// keeping the key order of the document.
type chapterIndex []data.ChapterRecord

func (c *chapterIndex) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*c = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("chapter list: expected object, got %v", tok)
	}

	var records []data.ChapterRecord
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		id, _ := tok.(string)

		var entry chapterEntry
		if err := dec.Decode(&entry); err != nil {
			return fmt.Errorf("chapter %s: %w", id, err)
		}
		records = append(records, data.ChapterRecord{
			ID:       id,
			Number:   entry.Chapter,
			Language: entry.LangCode,
			Group:    entry.GroupName,
			Title:    entry.Title,
			Volume:   entry.Volume,
		})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*c = records
	return nil
}

type chapterResponse struct {
	Server    string   `json:"server"`
	Hash      string   `json:"hash"`
	PageArray []string `json:"page_array"`
}

type MangaDex struct {
	session *utils.Session
	baseURL string
}

func NewMangaDex(session *utils.Session, baseURL string) *MangaDex {
	return &MangaDex{session: session, baseURL: strings.TrimRight(baseURL, "/")}
}

func (m *MangaDex) BaseURL() string {
	return m.baseURL
}

func (m *MangaDex) get(ctx context.Context, path string, v any) error {
	err := m.session.GetJSON(ctx, m.baseURL+path, v)
	if errors.Is(err, utils.ErrDecode) {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return err
}

// GetManga fetches the title and chapter listing of a manga.
func (m *MangaDex) GetManga(ctx context.Context, id string) (*data.Manga, error) {
	var resp mangaResponse
	if err := m.get(ctx, fmt.Sprintf("/api/manga/%s/", id), &resp); err != nil {
		return nil, err
	}
	if resp.Manga == nil || resp.Manga.Title == "" {
		return nil, ErrNotAManga
	}
	return &data.Manga{
		ID:       id,
		Title:    html.UnescapeString(resp.Manga.Title),
		Chapters: resp.Chapter,
	}, nil
}

// GetPages fetches the page URLs of a chapter. The image server may be
// given relative to the site.
func (m *MangaDex) GetPages(ctx context.Context, chapterID string) (*data.ChapterPages, error) {
	var resp chapterResponse
	if err := m.get(ctx, fmt.Sprintf("/api/chapter/%s/", chapterID), &resp); err != nil {
		return nil, err
	}
	if resp.Hash == "" {
		return nil, fmt.Errorf("%w: chapter %s has no hash", ErrMalformedResponse, chapterID)
	}

	server := resp.Server
	if u, err := url.Parse(server); err != nil || !u.IsAbs() {
		server = m.baseURL + server
	}

	pages := &data.ChapterPages{ChapterID: chapterID, URLs: make([]string, len(resp.PageArray))}
	for i, page := range resp.PageArray {
		pages.URLs[i] = fmt.Sprintf("%s%s/%s", server, resp.Hash, page)
	}
	return pages, nil
}
