package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/kerbaras/mangadex-dl/pkg/chapters"
	"github.com/kerbaras/mangadex-dl/pkg/data"
	"github.com/kerbaras/mangadex-dl/pkg/integrations"
	"github.com/kerbaras/mangadex-dl/pkg/sources"
	"github.com/sirupsen/logrus"
)

const (
	StatusDownloading = "downloading"
	StatusProcessing  = "processing"
	StatusComplete    = "complete"
	StatusError       = "error"
)

var ErrPageFailed = errors.New("page download failed")

// DownloadProgress represents the progress of a download operation
type DownloadProgress struct {
	MangaID       string
	ChapterID     string
	ChapterNumber string
	Group         string
	CurrentPage   int
	TotalPages    int
	Status        string
	Error         error
}

// Fetcher performs GET requests for page images.
type Fetcher interface {
	Get(ctx context.Context, url string) (*http.Response, error)
}

// Recorder stores the download history. Optional.
type Recorder interface {
	SaveDownload(record *data.DownloadRecord) error
}

type Options struct {
	Layout    integrations.Layout
	Language  string
	Packager  integrations.Packager       // nil keeps loose folders
	Optimizer *integrations.PageOptimizer // nil keeps pages as downloaded
	Verify    bool

	MaxAttempts int
	RetryDelay  time.Duration // wait after a failed attempt
	PageDelay   time.Duration // wait after every page
}

func DefaultOptions() Options {
	return Options{
		Layout:      integrations.Layout{Root: "download"},
		Language:    "gb",
		MaxAttempts: 10,
		RetryDelay:  2 * time.Second,
		PageDelay:   time.Second,
	}
}

// ChapterResult describes what ended up on disk for one target.
type ChapterResult struct {
	Target   data.DownloadTarget
	Path     string
	Pages    int
	Missing  []int    // 1-based page numbers that could not be downloaded
	Broken   []string // files that are not decodable images, with Verify
	Packaged bool
}

// Downloader fetches chapters page by page, one request at a time.
type Downloader struct {
	source       sources.Source
	fetcher      Fetcher
	recorder     Recorder
	opts         Options
	log          *logrus.Logger
	progressChan chan DownloadProgress
	closeOnce    sync.Once
}

// NewDownloader creates a new Downloader instance. recorder may be nil.
func NewDownloader(source sources.Source, fetcher Fetcher, recorder Recorder, opts Options, logger *logrus.Logger) *Downloader {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Downloader{
		source:       source,
		fetcher:      fetcher,
		recorder:     recorder,
		opts:         opts,
		log:          logger,
		progressChan: make(chan DownloadProgress, 100),
	}
}

// GetProgressChannel returns the channel for receiving download progress updates
func (d *Downloader) GetProgressChannel() <-chan DownloadProgress {
	return d.progressChan
}

// DownloadChapter downloads every page of target into its chapter folder
// and packages it when a packager is configured. Pages that keep failing
// are left out and reported in the result; only cancellation, folder
// creation, page list and packaging errors are returned.
func (d *Downloader) DownloadChapter(ctx context.Context, manga *data.Manga, target data.DownloadTarget) (*ChapterResult, error) {
	if manga == nil {
		return nil, fmt.Errorf("manga cannot be nil")
	}

	progress := DownloadProgress{
		MangaID:       manga.ID,
		ChapterID:     target.ChapterID,
		ChapterNumber: target.Number,
		Group:         target.Group,
		Status:        StatusDownloading,
	}
	d.sendProgress(progress)

	pages, err := d.source.GetPages(ctx, target.ChapterID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pages: %w", err)
	}

	dir := d.opts.Layout.ChapterDir(manga.Title, target.Number, target.Group)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create chapter directory: %w", err)
	}

	result := &ChapterResult{Target: target, Path: dir, Pages: len(pages.URLs)}
	progress.TotalPages = len(pages.URLs)

	for i, pageURL := range pages.URLs {
		dest := filepath.Join(dir, pageFilename(i+1, pageURL))

		err := d.downloadPage(ctx, pageURL, dest)
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		if err != nil {
			result.Missing = append(result.Missing, i+1)
			d.log.WithFields(logrus.Fields{"chapter": target.Number, "page": i + 1}).WithError(err).Warn("page missing")
		}

		progress.CurrentPage = i + 1
		progress.Error = err
		d.sendProgress(progress)

		if err := wait(ctx, d.opts.PageDelay); err != nil {
			return result, err
		}
	}
	progress.Error = nil

	if d.opts.Optimizer != nil {
		n, err := d.opts.Optimizer.OptimizeDir(dir)
		if err != nil {
			return result, fmt.Errorf("failed to optimize pages: %w", err)
		}
		d.log.WithFields(logrus.Fields{"chapter": target.Number, "pages": n}).Debug("pages optimized")
	}

	if d.opts.Verify {
		broken, err := integrations.VerifyPages(dir)
		if err != nil {
			return result, err
		}
		result.Broken = broken
	}

	if p := d.opts.Packager; p != nil {
		progress.Status = StatusProcessing
		d.sendProgress(progress)

		dest := d.opts.Layout.ArchivePath(manga.Title, target.Number, target.Group, p.Ext())
		name := fmt.Sprintf("%s c%s [%s]", manga.Title, chapters.ZeroPad(target.Number), target.Group)
		if err := p.Package(name, dir, dest); err != nil {
			return result, fmt.Errorf("failed to package chapter %s: %w", target.Number, err)
		}
		result.Path = dest
		result.Packaged = true
	}

	d.record(manga, result)

	progress.Status = StatusComplete
	d.sendProgress(progress)

	return result, nil
}

// downloadPage tries MaxAttempts times to fetch url into dest. A response
// other than 200 ends the attempts without writing anything.
func (d *Downloader) downloadPage(ctx context.Context, pageURL, dest string) error {
	var lastErr error
	for attempt := 1; attempt <= d.opts.MaxAttempts; attempt++ {
		status, err := d.fetchPage(ctx, pageURL, dest)
		if err == nil {
			if status != http.StatusOK {
				return fmt.Errorf("%w: %s returned %d", ErrPageFailed, pageURL, status)
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		lastErr = err
		d.log.WithFields(logrus.Fields{"url": pageURL, "attempt": attempt}).WithError(err).
			Debug("Encountered an error when downloading. Retrying...")

		if attempt < d.opts.MaxAttempts {
			if err := wait(ctx, d.opts.RetryDelay); err != nil {
				return err
			}
		}
	}
	return fmt.Errorf("%w after %d attempts: %v", ErrPageFailed, d.opts.MaxAttempts, lastErr)
}

func (d *Downloader) fetchPage(ctx context.Context, pageURL, dest string) (int, error) {
	resp, err := d.fetcher.Get(ctx, pageURL)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, nil
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read image content: %w", err)
	}
	if err := os.WriteFile(dest, content, 0644); err != nil {
		return 0, fmt.Errorf("failed to write page: %w", err)
	}
	return resp.StatusCode, nil
}

func (d *Downloader) record(manga *data.Manga, result *ChapterResult) {
	if d.recorder == nil {
		return
	}
	err := d.recorder.SaveDownload(&data.DownloadRecord{
		MangaID:    manga.ID,
		MangaTitle: manga.Title,
		ChapterID:  result.Target.ChapterID,
		Chapter:    result.Target.Number,
		Group:      result.Target.Group,
		Language:   d.opts.Language,
		Path:       result.Path,
		Pages:      result.Pages,
		Missing:    len(result.Missing),
		Packaged:   result.Packaged,
	})
	if err != nil {
		d.log.WithError(err).Warn("failed to record download")
	}
}

// sendProgress sends a progress update (non-blocking)
func (d *Downloader) sendProgress(progress DownloadProgress) {
	select {
	case d.progressChan <- progress:
	default:
		// Channel full, skip this update
	}
}

// Close closes the progress channel. The downloader must not be used after.
func (d *Downloader) Close() {
	d.closeOnce.Do(func() {
		close(d.progressChan)
	})
}

// pageFilename names page n after its position, keeping the extension of
// the source URL: page 3 of ".../x3.png" is "003.png".
func pageFilename(n int, pageURL string) string {
	p := pageURL
	if u, err := url.Parse(pageURL); err == nil {
		p = u.Path
	}
	return chapters.PadFilename(fmt.Sprintf("%d%s", n, path.Ext(p)))
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
