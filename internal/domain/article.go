package domain

import "time"

// Source is a configured syndication origin persisted in the sources table.
// A source without an RSS endpoint exists only for attribution and is skipped
// during ingestion.
type Source struct {
	ID      int64
	Name    string
	RSSURL  string
	BaseURL string
	IconURL string
}

// Ingestable reports whether the source carries a feed endpoint.
func (s Source) Ingestable() bool {
	return s.RSSURL != ""
}

// FeedEntry is one item parsed out of a feed document, prior to persistence.
// Link is the canonical article URL; entries without one are dropped by the
// normalizer.
type FeedEntry struct {
	Link        string
	Title       string
	Excerpt     string
	PublishedAt *time.Time
	Thumbnail   string
}

// Article is the persisted, deduplicated record derived from a FeedEntry.
// URL is the uniqueness key. FetchedHash is a stable digest of the URL kept
// for auditing; it is written once on insert and never rewritten.
type Article struct {
	ID          int64
	SourceID    int64
	URL         string
	Title       string
	Excerpt     string
	PublishedAt *time.Time
	FetchedHash string
	IsOtani     bool
	Thumbnail   string
}

// ArticleView joins an article with its source attribution for the read API.
type ArticleView struct {
	Article
	SourceName string
	SourceIcon string
}

// SitemapEntry is the minimal projection used for sitemap generation.
type SitemapEntry struct {
	URL         string
	PublishedAt *time.Time
}
