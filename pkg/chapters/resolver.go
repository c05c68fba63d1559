package chapters

import (
	"fmt"
	"sort"

	"github.com/kerbaras/mangadex-dl/pkg/data"
)

// Resolve turns a selection into download targets. Every record in lang
// whose number is selected yields its own target, so a chapter released by
// two groups is downloaded twice. A record is emitted once however many
// times its label was selected.
//
// Records whose number does not parse are skipped and reported in the
// returned warnings.
func Resolve(records []data.ChapterRecord, lang string, sel Selection) ([]data.DownloadTarget, []error) {
	wanted := make(map[string]bool, len(sel.Labels))
	for _, label := range sel.Labels {
		canonical, err := Canonical(label)
		if err != nil {
			continue
		}
		wanted[canonical] = true
	}

	var (
		targets  []data.DownloadTarget
		warnings []error
	)
	for _, r := range records {
		if r.Language != lang {
			continue
		}
		number, err := Canonical(r.Number)
		if err != nil {
			warnings = append(warnings, fmt.Errorf("chapter %s: %w", r.ID, err))
			continue
		}
		if !wanted[number] {
			continue
		}
		targets = append(targets, data.DownloadTarget{
			Number:    number,
			ChapterID: r.ID,
			Group:     r.Group,
		})
	}

	sort.Slice(targets, func(i, j int) bool {
		a, b := targets[i], targets[j]
		if a.Number != b.Number {
			return a.Number < b.Number
		}
		if a.ChapterID != b.ChapterID {
			return a.ChapterID < b.ChapterID
		}
		return a.Group < b.Group
	})

	return targets, warnings
}
