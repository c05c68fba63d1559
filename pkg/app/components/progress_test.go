package components

import (
	"errors"
	"strings"
	"testing"

	"github.com/kerbaras/mangadex-dl/pkg/services"
)

func TestNewProgressTracker(t *testing.T) {
	tracker := NewProgressTracker(20)

	if tracker == nil {
		t.Fatal("Expected tracker to be created")
	}
	if tracker.width != 20 {
		t.Errorf("Expected width 20, got %d", tracker.width)
	}
	if tracker.lineOpen {
		t.Error("Expected no open progress line")
	}
}

func TestUpdateChapterLifecycle(t *testing.T) {
	tracker := NewProgressTracker(10)
	base := services.DownloadProgress{MangaID: "m", ChapterID: "c1", ChapterNumber: "5", Group: "Alpha"}

	start := base
	start.Status = services.StatusDownloading
	out := tracker.Update(start)
	if !strings.Contains(out, "Downloading chapter 5 [Alpha]...") {
		t.Errorf("Unexpected start output: %q", out)
	}

	page := start
	page.CurrentPage = 1
	page.TotalPages = 2
	out = tracker.Update(page)
	if !strings.HasPrefix(out, "\r") {
		t.Errorf("Expected page update to redraw the line, got %q", out)
	}
	if !strings.Contains(out, "1/2 pages") {
		t.Errorf("Expected page count in %q", out)
	}

	done := base
	done.Status = services.StatusComplete
	out = tracker.Update(done)
	if !strings.HasPrefix(out, "\n") {
		t.Errorf("Expected open progress line to be closed, got %q", out)
	}
	if !strings.Contains(out, "Chapter 5 [Alpha] done") {
		t.Errorf("Unexpected completion output: %q", out)
	}
	if tracker.lineOpen {
		t.Error("Expected progress line to be closed")
	}
	if got := tracker.Summary(); got != "1 chapter(s) downloaded" {
		t.Errorf("Unexpected summary %q", got)
	}
}

func TestUpdateMissingPage(t *testing.T) {
	tracker := NewProgressTracker(10)

	out := tracker.Update(services.DownloadProgress{
		ChapterID:   "c1",
		Status:      services.StatusDownloading,
		CurrentPage: 3,
		TotalPages:  4,
		Error:       errors.New("server returned 404"),
	})
	if !strings.Contains(out, "Page 3 skipped: server returned 404") {
		t.Errorf("Expected missing page warning in %q", out)
	}

	tracker.Update(services.DownloadProgress{ChapterID: "c1", Status: services.StatusComplete})
	if got := tracker.Summary(); got != "1 chapter(s) downloaded, 1 page(s) missing" {
		t.Errorf("Unexpected summary %q", got)
	}
}

func TestUpdateError(t *testing.T) {
	tracker := NewProgressTracker(10)

	out := tracker.Update(services.DownloadProgress{
		ChapterID: "c1",
		Status:    services.StatusError,
		Error:     errors.New("boom"),
	})
	if !strings.Contains(out, "Chapter Oneshot failed: boom") {
		t.Errorf("Unexpected error output: %q", out)
	}
	if got := tracker.Summary(); got != "0 chapter(s) downloaded, 1 chapter(s) failed" {
		t.Errorf("Unexpected summary %q", got)
	}
}

func TestUpdatePackaging(t *testing.T) {
	tracker := NewProgressTracker(10)

	out := tracker.Update(services.DownloadProgress{ChapterID: "c1", Status: services.StatusProcessing})
	if !strings.Contains(out, "Packaging chapter") {
		t.Errorf("Unexpected packaging output: %q", out)
	}
	if tracker.Update(services.DownloadProgress{Status: "unknown"}) != "" {
		t.Error("Expected unknown status to render nothing")
	}
}

func TestRenderProgressBar(t *testing.T) {
	bar := renderProgressBar(5, 10, 10)

	if strings.Count(bar, "█") != 5 {
		t.Errorf("Expected 5 filled cells, got %q", bar)
	}
	if strings.Count(bar, "░") != 5 {
		t.Errorf("Expected 5 empty cells, got %q", bar)
	}
}

func TestRenderProgressBarZeroTotal(t *testing.T) {
	if bar := renderProgressBar(0, 0, 10); bar != "" {
		t.Errorf("Expected empty bar for zero total, got %q", bar)
	}
}

func TestRenderProgressBarFull(t *testing.T) {
	bar := renderProgressBar(12, 10, 10)

	if strings.Count(bar, "█") != 10 {
		t.Errorf("Expected a full bar, got %q", bar)
	}
	if strings.Contains(bar, "░") {
		t.Errorf("Expected no empty cells, got %q", bar)
	}
}
