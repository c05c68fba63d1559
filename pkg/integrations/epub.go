package integrations

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-shiori/go-epub"
)

type EPubPackager struct {
	Language string
}

func NewEPubPackager(language string) *EPubPackager {
	return &EPubPackager{Language: language}
}

func (p *EPubPackager) Ext() string {
	return ".epub"
}

// Package writes the chapter images, one page per section, into an EPUB
// titled title.
func (p *EPubPackager) Package(title, dir, dest string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read chapter directory: %w", err)
	}

	var images []string
	for _, file := range files {
		if !file.IsDir() && isImageFile(file.Name()) {
			images = append(images, file.Name())
		}
	}
	if len(images) == 0 {
		return fmt.Errorf("no images found in %s", dir)
	}
	sort.Strings(images)

	e, err := epub.NewEpub(title)
	if err != nil {
		return fmt.Errorf("failed to create EPub: %w", err)
	}
	e.SetAuthor("MangaDex")
	if p.Language != "" {
		e.SetLang(p.Language)
	}

	for i, name := range images {
		internalPath, err := e.AddImage(filepath.Join(dir, name), "")
		if err != nil {
			return fmt.Errorf("failed to add image %s: %w", name, err)
		}

		body := fmt.Sprintf(
			`<div class="page"><img src="%s" alt="Page %d" style="width:100%%;height:auto;"/></div>`,
			internalPath, i+1,
		)
		if _, err := e.AddSection(body, fmt.Sprintf("Page %d", i+1), "", ""); err != nil {
			return fmt.Errorf("failed to add section: %w", err)
		}
	}

	if err := e.Write(dest); err != nil {
		return fmt.Errorf("failed to write EPub: %w", err)
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove chapter folder: %w", err)
	}
	return nil
}

func isImageFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".jpg" || ext == ".jpeg" || ext == ".png" || ext == ".gif" || ext == ".webp"
}
