package integrations

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/image/draw"
)

// Profile describes the screen pages are prepared for.
type Profile struct {
	Name      string
	Width     int
	Height    int
	Grayscale bool
	Quality   int // JPEG quality
}

var profiles = map[string]Profile{
	"kindle":     {Name: "kindle", Width: 758, Height: 1024, Grayscale: true, Quality: 80},
	"paperwhite": {Name: "paperwhite", Width: 1072, Height: 1448, Grayscale: true, Quality: 85},
	"oasis":      {Name: "oasis", Width: 1264, Height: 1680, Grayscale: true, Quality: 85},
	"scribe":     {Name: "scribe", Width: 1860, Height: 2480, Grayscale: true, Quality: 90},
	"kobo":       {Name: "kobo", Width: 1072, Height: 1448, Grayscale: true, Quality: 85},
	"tablet":     {Name: "tablet", Width: 1200, Height: 1920, Quality: 90},
}

func LookupProfile(name string) (Profile, bool) {
	p, ok := profiles[strings.ToLower(name)]
	return p, ok
}

// ProfileNames lists the known profiles, sorted.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PageOptimizer shrinks pages to fit a profile and re-encodes them as JPEG.
type PageOptimizer struct {
	profile Profile
}

func NewPageOptimizer(profile Profile) *PageOptimizer {
	return &PageOptimizer{profile: profile}
}

// OptimizeDir rewrites every decodable image in dir as "<name>.jpg".
// Files that do not decode are left untouched. It returns the number of
// pages rewritten.
func (o *PageOptimizer) OptimizeDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read chapter directory: %w", err)
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir() || !isImageFile(entry.Name()) {
			continue
		}

		src := filepath.Join(dir, entry.Name())
		f, err := os.Open(src)
		if err != nil {
			return count, err
		}
		out, err := o.Optimize(f)
		f.Close()
		if err != nil {
			continue
		}

		dest := filepath.Join(dir, strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))+".jpg")
		if err := os.WriteFile(dest, out, 0644); err != nil {
			return count, fmt.Errorf("failed to write %s: %w", dest, err)
		}
		if dest != src {
			if err := os.Remove(src); err != nil {
				return count, err
			}
		}
		count++
	}
	return count, nil
}

// Optimize decodes one page and returns it resized and encoded.
func (o *PageOptimizer) Optimize(input io.Reader) ([]byte, error) {
	img, _, err := image.Decode(input)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width, height := o.fit(bounds.Dx(), bounds.Dy())

	var processed image.Image = img
	if width != bounds.Dx() || height != bounds.Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		processed = dst
	}

	if o.profile.Grayscale {
		gray := image.NewGray(processed.Bounds())
		draw.Draw(gray, gray.Bounds(), processed, processed.Bounds().Min, draw.Src)
		processed = gray
	}

	quality := o.profile.Quality
	if quality <= 0 {
		quality = jpeg.DefaultQuality
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, processed, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// fit scales width x height down to the profile keeping the aspect ratio.
// Pages are never enlarged.
func (o *PageOptimizer) fit(width, height int) (int, int) {
	if o.profile.Width <= 0 || o.profile.Height <= 0 {
		return width, height
	}
	if width <= o.profile.Width && height <= o.profile.Height {
		return width, height
	}

	scale := float64(o.profile.Width) / float64(width)
	if hs := float64(o.profile.Height) / float64(height); hs < scale {
		scale = hs
	}

	w, h := int(float64(width)*scale), int(float64(height)*scale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}
