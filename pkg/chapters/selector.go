package chapters

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/kerbaras/mangadex-dl/pkg/data"
)

// LastKeyword selects only the most recent chapter.
const LastKeyword = "last"

const oneshotLabel = "Oneshot"

// SkippedToken is a selection token that referenced a chapter which does
// not exist. The token contributes nothing to the selection.
type SkippedToken struct {
	Token   string
	Missing string
}

func (s SkippedToken) String() string {
	if s.Token != s.Missing {
		return fmt.Sprintf("Chapter %s does not exist. Skipping %s.", s.Missing, s.Token)
	}
	return fmt.Sprintf("Chapter %s does not exist. Skipping.", s.Missing)
}

// Selection is the ordered list of requested chapter labels. Overlapping
// tokens produce duplicate labels.
type Selection struct {
	Labels  []string
	Skipped []SkippedToken
}

// Available returns the chapter labels published in lang, sorted by their
// numeric key. Records with equal keys keep their source order. Numbers
// that do not parse are left out; see Invalid.
func Available(records []data.ChapterRecord, lang string) []string {
	type keyed struct {
		label string
		key   float64
	}

	var chapters []keyed
	for _, r := range records {
		if r.Language != lang {
			continue
		}
		key, err := Key(r.Number)
		if err != nil {
			continue
		}
		chapters = append(chapters, keyed{label: r.Number, key: key})
	}

	sort.SliceStable(chapters, func(i, j int) bool {
		return chapters[i].key < chapters[j].key
	})

	labels := make([]string, len(chapters))
	for i, c := range chapters {
		labels[i] = c.label
	}
	return labels
}

// Invalid returns the records in lang whose number cannot be ordered.
// Available leaves them out.
func Invalid(records []data.ChapterRecord, lang string) []data.ChapterRecord {
	var invalid []data.ChapterRecord
	for _, r := range records {
		if r.Language != lang {
			continue
		}
		if _, err := Key(r.Number); err != nil {
			invalid = append(invalid, r)
		}
	}
	return invalid
}

// DisplayLabels renders labels for the user, showing oneshots as "Oneshot".
func DisplayLabels(available []string) []string {
	out := make([]string, len(available))
	for i, label := range available {
		if label == "" {
			out[i] = oneshotLabel
		} else {
			out[i] = label
		}
	}
	return out
}

// Parse selects chapters from input, which is either LastKeyword or a
// comma separated list of labels and lower-upper ranges.
func Parse(input string, available []string) Selection {
	if strings.EqualFold(strings.TrimSpace(input), LastKeyword) {
		return SelectLast(available)
	}
	return Select(input, available)
}

// SelectLast selects the most recent available chapter.
func SelectLast(available []string) Selection {
	if len(available) == 0 {
		return Selection{}
	}
	return Selection{Labels: []string{available[len(available)-1]}}
}

// Select resolves each token against available. Ranges are inclusive and
// follow positions in available, so a range whose upper bound comes first
// selects nothing.
func Select(input string, available []string) Selection {
	var sel Selection

	for _, token := range strings.Split(input, ",") {
		token = strings.TrimSpace(token)

		if strings.Contains(token, "-") {
			bounds := strings.Split(token, "-")
			lower, upper := bounds[0], bounds[1]
			lo := slices.Index(available, lower)
			if lo < 0 {
				sel.Skipped = append(sel.Skipped, SkippedToken{Token: token, Missing: lower})
				continue
			}
			hi := slices.Index(available, upper)
			if hi < 0 {
				sel.Skipped = append(sel.Skipped, SkippedToken{Token: token, Missing: upper})
				continue
			}
			if hi >= lo {
				sel.Labels = append(sel.Labels, available[lo:hi+1]...)
			}
			continue
		}

		if !slices.Contains(available, token) {
			sel.Skipped = append(sel.Skipped, SkippedToken{Token: token, Missing: token})
			continue
		}
		sel.Labels = append(sel.Labels, token)
	}

	return sel
}
