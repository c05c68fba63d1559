package components

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/kerbaras/mangadex-dl/pkg/app/styles"
	"github.com/kerbaras/mangadex-dl/pkg/data"
)

// HistoryTable lists recorded downloads.
type HistoryTable struct {
	Records []*data.DownloadRecord
	Width   int
}

func NewHistoryTable(records []*data.DownloadRecord) *HistoryTable {
	return &HistoryTable{Records: records, Width: 100}
}

func (h *HistoryTable) View() string {
	if len(h.Records) == 0 {
		return styles.MutedStyle.Render("No downloads recorded yet")
	}

	rows := make([][]string, 0, len(h.Records))
	for _, r := range h.Records {
		chapter := r.Chapter
		if chapter == "" {
			chapter = "Oneshot"
		}
		pages := strconv.Itoa(r.Pages)
		if r.Missing > 0 {
			pages = fmt.Sprintf("%d (%d missing)", r.Pages, r.Missing)
		}
		rows = append(rows, []string{
			r.DownloadedAt.Format("2006-01-02 15:04"),
			r.MangaTitle,
			chapter,
			r.Group,
			r.Language,
			pages,
			r.Path,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styles.TableBorderStyle).
		Headers("DATE", "MANGA", "CHAPTER", "GROUP", "LANG", "PAGES", "PATH").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.TableHeaderStyle
			}
			return styles.TableCellStyle
		})
	if h.Width > 0 {
		t = t.Width(h.Width)
	}

	return t.Render()
}
