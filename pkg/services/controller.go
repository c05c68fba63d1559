package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kerbaras/mangadex-dl/pkg/chapters"
	"github.com/kerbaras/mangadex-dl/pkg/data"
	"github.com/kerbaras/mangadex-dl/pkg/sources"
	"github.com/kerbaras/mangadex-dl/pkg/utils"
	"github.com/sirupsen/logrus"
)

// ErrNoChapters is returned when the manga has nothing in the requested
// language.
var ErrNoChapters = errors.New("no chapters available to download")

// Plan is a fetched manga together with the chapter labels that can be
// picked from it. Invalid holds the records left out because their number
// does not parse.
type Plan struct {
	Manga     *data.Manga
	Language  string
	Available []string
	Invalid   []data.ChapterRecord
}

type ControllerConfig struct {
	Session  *utils.Session
	BaseURL  string
	Recorder Recorder
	Options  Options
	Logger   *logrus.Logger
}

type MangaController struct {
	source     sources.Source
	downloader *Downloader
	log        *logrus.Logger
}

func NewMangaController(source sources.Source, downloader *Downloader) *MangaController {
	return &MangaController{source: source, downloader: downloader, log: downloader.log}
}

// NewMangaControllerWithConfig wires a MangaDex source and a downloader
// sharing one session.
func NewMangaControllerWithConfig(config ControllerConfig) *MangaController {
	source := sources.NewMangaDex(config.Session, config.BaseURL)
	downloader := NewDownloader(source, config.Session, config.Recorder, config.Options, config.Logger)
	return NewMangaController(source, downloader)
}

// Progress returns the downloader's progress updates.
func (c *MangaController) Progress() <-chan DownloadProgress {
	return c.downloader.GetProgressChannel()
}

// Plan fetches the manga and lists the chapters available in lang. When
// there are none the plan is still returned, alongside ErrNoChapters.
func (c *MangaController) Plan(ctx context.Context, mangaID, lang string) (*Plan, error) {
	manga, err := c.source.GetManga(ctx, mangaID)
	if err != nil {
		return nil, fmt.Errorf("failed to get manga %s: %w", mangaID, err)
	}

	plan := &Plan{
		Manga:     manga,
		Language:  lang,
		Available: chapters.Available(manga.Chapters, lang),
		Invalid:   chapters.Invalid(manga.Chapters, lang),
	}
	c.log.WithFields(logrus.Fields{
		"manga":     manga.ID,
		"title":     manga.Title,
		"available": len(plan.Available),
		"invalid":   len(plan.Invalid),
	}).Debug("manga metadata fetched")

	if len(plan.Available) == 0 {
		return plan, ErrNoChapters
	}
	return plan, nil
}

// Select turns the user's chapter request into download targets. The
// returned errors are warnings about records that could not be matched.
func (c *MangaController) Select(plan *Plan, input string) (chapters.Selection, []data.DownloadTarget, []error) {
	sel := chapters.Parse(strings.TrimSpace(input), plan.Available)
	targets, warnings := chapters.Resolve(plan.Manga.Chapters, plan.Language, sel)
	return sel, targets, warnings
}

// Download fetches the targets one after another. A failing chapter
// stops the run.
func (c *MangaController) Download(ctx context.Context, plan *Plan, targets []data.DownloadTarget) ([]*ChapterResult, error) {
	results := make([]*ChapterResult, 0, len(targets))
	for _, target := range targets {
		result, err := c.downloader.DownloadChapter(ctx, plan.Manga, target)
		if err != nil {
			c.downloader.sendProgress(DownloadProgress{
				MangaID:       plan.Manga.ID,
				ChapterID:     target.ChapterID,
				ChapterNumber: target.Number,
				Group:         target.Group,
				Status:        StatusError,
				Error:         err,
			})
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

// Close releases the progress channel.
func (c *MangaController) Close() {
	c.downloader.Close()
}
