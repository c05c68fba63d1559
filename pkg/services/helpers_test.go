package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"sync"
	"testing"

	"github.com/kerbaras/mangadex-dl/pkg/data"
	"github.com/kerbaras/mangadex-dl/pkg/integrations"
	"github.com/kerbaras/mangadex-dl/pkg/utils"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

type mockSource struct {
	getMangaFunc func(ctx context.Context, id string) (*data.Manga, error)
	getPagesFunc func(ctx context.Context, chapterID string) (*data.ChapterPages, error)
}

func (m *mockSource) GetManga(ctx context.Context, id string) (*data.Manga, error) {
	if m.getMangaFunc != nil {
		return m.getMangaFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockSource) GetPages(ctx context.Context, chapterID string) (*data.ChapterPages, error) {
	if m.getPagesFunc != nil {
		return m.getPagesFunc(ctx, chapterID)
	}
	return &data.ChapterPages{ChapterID: chapterID}, nil
}

type mockRecorder struct {
	mu      sync.Mutex
	records []*data.DownloadRecord
	err     error
}

func (m *mockRecorder) SaveDownload(record *data.DownloadRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, record)
	return m.err
}

type fetcherFunc func(ctx context.Context, url string) (*http.Response, error)

func (f fetcherFunc) Get(ctx context.Context, url string) (*http.Response, error) {
	return f(ctx, url)
}

func testOptions(root string) Options {
	return Options{
		Layout:      integrations.Layout{Root: root},
		Language:    "gb",
		MaxAttempts: 10,
	}
}

func newTestSession(t *testing.T) *utils.Session {
	t.Helper()

	session, err := utils.NewSession(utils.SessionOptions{Logger: testLogger()})
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	return session
}

func testLogger() *logrus.Logger {
	logger, _ := test.NewNullLogger()
	return logger
}

func createTestPNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{B: 255, A: 255})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func drain(ch <-chan DownloadProgress) []DownloadProgress {
	var updates []DownloadProgress
	for {
		select {
		case p := <-ch:
			updates = append(updates, p)
		default:
			return updates
		}
	}
}
