package data

import "time"

type Manga struct {
	ID       string
	Title    string
	Chapters []ChapterRecord // in the order the source listed them
}

// ChapterRecord is one release of a chapter: a chapter number published
// by a group in a language. Number is empty for oneshots.
type ChapterRecord struct {
	ID       string
	Number   string
	Language string
	Group    string
	Title    string
	Volume   string
}

// DownloadTarget is a resolved unit of work for the downloader.
type DownloadTarget struct {
	Number    string // canonical chapter number
	ChapterID string
	Group     string
}

// ChapterPages holds the page URLs of a chapter in reading order.
type ChapterPages struct {
	ChapterID string
	URLs      []string
}

// DownloadRecord is a ledger entry written after each chapter download.
type DownloadRecord struct {
	MangaID      string
	MangaTitle   string
	ChapterID    string
	Chapter      string
	Group        string
	Language     string
	Path         string // chapter folder or archive
	Pages        int
	Missing      int
	Packaged     bool
	DownloadedAt time.Time
}
