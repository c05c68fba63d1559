package integrations

import (
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/kerbaras/mangadex-dl/pkg/chapters"
)

var unsafeChars = regexp.MustCompile(`[/<>:"\\|?*]`)

// SanitizeFilename replaces characters that are not allowed in file names
// with a hyphen.
func SanitizeFilename(name string) string {
	return unsafeChars.ReplaceAllString(name, "-")
}

// Layout places downloads under Root:
//
//	<Root>/<title>/c<NNN> [<group>]/<page>
//	<Root>/<title>/<title> c<NNN> [<group>].<ext>
type Layout struct {
	Root string
}

func (l Layout) MangaDir(title string) string {
	return filepath.Join(l.Root, SanitizeFilename(title))
}

func (l Layout) ChapterName(number, group string) string {
	return fmt.Sprintf("c%s [%s]", chapters.ZeroPad(number), SanitizeFilename(group))
}

func (l Layout) ChapterDir(title, number, group string) string {
	return filepath.Join(l.MangaDir(title), l.ChapterName(number, group))
}

func (l Layout) ArchivePath(title, number, group, ext string) string {
	name := SanitizeFilename(title) + " " + l.ChapterName(number, group) + ext
	return filepath.Join(l.MangaDir(title), name)
}
