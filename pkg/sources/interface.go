package sources

import (
	"context"

	"github.com/kerbaras/mangadex-dl/pkg/data"
)

type Source interface {
	GetManga(ctx context.Context, id string) (*data.Manga, error)
	GetPages(ctx context.Context, chapterID string) (*data.ChapterPages, error)
}
