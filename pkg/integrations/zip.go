package integrations

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

type ZipPackager struct {
	// LegacyPaths stores members under the path they were written to
	// instead of a name relative to the chapter folder.
	LegacyPaths bool
}

func NewZipPackager(legacyPaths bool) *ZipPackager {
	return &ZipPackager{LegacyPaths: legacyPaths}
}

func (p *ZipPackager) Ext() string {
	return ".zip"
}

func (p *ZipPackager) Package(_ string, dir, dest string) error {
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}

	zw := zip.NewWriter(out)
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		return p.addFile(zw, dir, path)
	})

	if err := zw.Close(); err != nil && walkErr == nil {
		walkErr = err
	}
	if err := out.Close(); err != nil && walkErr == nil {
		walkErr = err
	}
	if walkErr != nil {
		os.Remove(dest)
		return fmt.Errorf("failed to package %s: %w", dir, walkErr)
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove chapter folder: %w", err)
	}
	return nil
}

func (p *ZipPackager) addFile(zw *zip.Writer, dir, path string) error {
	name, err := filepath.Rel(dir, path)
	if err != nil {
		return err
	}
	if p.LegacyPaths {
		name = strings.TrimLeft(filepath.ToSlash(path), "/")
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = filepath.ToSlash(name)
	// pages are already compressed images
	header.Method = zip.Store

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(w, f)
	return err
}
