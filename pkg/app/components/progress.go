package components

import (
	"fmt"
	"strings"

	"github.com/kerbaras/mangadex-dl/pkg/app/styles"
	"github.com/kerbaras/mangadex-dl/pkg/services"
)

// ProgressTracker turns download progress updates into console output.
// Page updates redraw a single line in place.
type ProgressTracker struct {
	width    int
	lineOpen bool

	completed int
	failed    int
	missing   int
}

func NewProgressTracker(width int) *ProgressTracker {
	return &ProgressTracker{width: width}
}

// Update records progress and returns the text to print for it.
func (p *ProgressTracker) Update(progress services.DownloadProgress) string {
	label := chapterLabel(progress)
	style := styles.StatusStyle(progress.Status)

	switch progress.Status {
	case services.StatusDownloading:
		if progress.CurrentPage == 0 {
			return p.breakLine() + style.Render(fmt.Sprintf("Downloading chapter %s...", label)) + "\n"
		}

		var b strings.Builder
		b.WriteString("\r ")
		b.WriteString(renderProgressBar(progress.CurrentPage, progress.TotalPages, p.width))
		b.WriteString(styles.MutedStyle.Render(fmt.Sprintf(" %d/%d pages", progress.CurrentPage, progress.TotalPages)))
		p.lineOpen = true

		if progress.Error != nil {
			p.missing++
			b.WriteString(p.breakLine())
			b.WriteString(styles.WarningStyle.Render(fmt.Sprintf(" Page %d skipped: %v", progress.CurrentPage, progress.Error)))
			b.WriteString("\n")
		}
		return b.String()

	case services.StatusProcessing:
		return p.breakLine() + styles.MutedStyle.Render(" Packaging chapter...") + "\n"

	case services.StatusComplete:
		p.completed++
		return p.breakLine() + style.Render(fmt.Sprintf(" Chapter %s done", label)) + "\n"

	case services.StatusError:
		p.failed++
		return p.breakLine() + style.Render(fmt.Sprintf(" Chapter %s failed: %v", label, progress.Error)) + "\n"
	}
	return ""
}

func (p *ProgressTracker) breakLine() string {
	if !p.lineOpen {
		return ""
	}
	p.lineOpen = false
	return "\n"
}

// Summary describes everything the tracker has seen.
func (p *ProgressTracker) Summary() string {
	parts := []string{fmt.Sprintf("%d chapter(s) downloaded", p.completed)}
	if p.missing > 0 {
		parts = append(parts, fmt.Sprintf("%d page(s) missing", p.missing))
	}
	if p.failed > 0 {
		parts = append(parts, fmt.Sprintf("%d chapter(s) failed", p.failed))
	}
	return strings.Join(parts, ", ")
}

func chapterLabel(progress services.DownloadProgress) string {
	number := progress.ChapterNumber
	if number == "" {
		number = "Oneshot"
	}
	if progress.Group == "" {
		return number
	}
	return fmt.Sprintf("%s [%s]", number, progress.Group)
}

func renderProgressBar(current, total, width int) string {
	if total == 0 || width <= 0 {
		return ""
	}

	filled := int(float64(current) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}

	return styles.ProgressBarStyle.Render(strings.Repeat("█", filled)) +
		styles.ProgressEmptyStyle.Render(strings.Repeat("░", width-filled))
}
