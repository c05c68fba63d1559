package integrations

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// VerifyPages decodes the header of every file in dir and returns the
// names of the ones that are not readable images.
func VerifyPages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read chapter directory: %w", err)
	}

	var broken []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !decodes(filepath.Join(dir, entry.Name())) {
			broken = append(broken, entry.Name())
		}
	}
	sort.Strings(broken)
	return broken, nil
}

func decodes(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	_, _, err = image.DecodeConfig(f)
	return err == nil
}
