package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"OhtaniScanner/internal/domain"
	"OhtaniScanner/internal/ports"
)

// fakeReader serves canned views and records the filters it received.
type fakeReader struct {
	views      []domain.ArticleView
	sources    []domain.Source
	sitemap    []domain.SitemapEntry
	lastFilter ports.ListFilter
}

func (f *fakeReader) List(ctx context.Context, filter ports.ListFilter) ([]domain.ArticleView, error) {
	f.lastFilter = filter
	out := f.views
	if filter.OtaniOnly {
		out = nil
		for _, v := range f.views {
			if v.IsOtani {
				out = append(out, v)
			}
		}
	}
	return out, nil
}

func (f *fakeReader) GetByID(ctx context.Context, id int64) (domain.ArticleView, error) {
	for _, v := range f.views {
		if v.ID == id {
			return v, nil
		}
	}
	return domain.ArticleView{}, ports.ErrNotFound
}

func (f *fakeReader) ListSources(ctx context.Context) ([]domain.Source, error) {
	return f.sources, nil
}

func (f *fakeReader) ListRecent(ctx context.Context, limit int) ([]domain.ArticleView, error) {
	return f.views, nil
}

func (f *fakeReader) ListSitemapEntries(ctx context.Context, limit int) ([]domain.SitemapEntry, error) {
	return f.sitemap, nil
}

func sampleReader() *fakeReader {
	published := time.Date(2025, time.June, 2, 10, 30, 0, 0, time.UTC)
	return &fakeReader{
		views: []domain.ArticleView{
			{
				Article: domain.Article{
					ID: 1, SourceID: 7, URL: "https://news.example.com/a1",
					Title: "Ohtani homers twice", Excerpt: "He did it again.",
					PublishedAt: &published, IsOtani: true,
				},
				SourceName: "Sports Wire",
				SourceIcon: "https://www.google.com/s2/favicons?domain=news.example.com",
			},
			{
				Article: domain.Article{
					ID: 2, SourceID: 7, URL: "https://news.example.com/a2",
					Title: "Local team wins game",
				},
				SourceName: "Sports Wire",
			},
		},
		sources: []domain.Source{{ID: 7, Name: "Sports Wire"}},
		sitemap: []domain.SitemapEntry{
			{URL: "https://news.example.com/a1", PublishedAt: &published},
			{URL: "https://news.example.com/a2"},
		},
	}
}

func serve(t *testing.T, reader ports.ArticleReader, path string) *httptest.ResponseRecorder {
	t.Helper()

	server := NewServer(reader, "https://ohtani.example.com", nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	server.Router().ServeHTTP(rec, req)
	return rec
}

func TestListArticles(t *testing.T) {
	t.Parallel()

	reader := sampleReader()
	rec := serve(t, reader, "/api/articles?limit=5&offset=10")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if reader.lastFilter.Limit != 5 || reader.lastFilter.Offset != 10 {
		t.Fatalf("limit/offset not passed through: %+v", reader.lastFilter)
	}

	var out []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(out))
	}
	if out[0]["source_name"] != "Sports Wire" {
		t.Fatalf("source attribution missing: %v", out[0])
	}
}

func TestListOtaniArticlesFilters(t *testing.T) {
	t.Parallel()

	rec := serve(t, sampleReader(), "/api/articles/otani")

	var out []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 Ohtani article, got %d", len(out))
	}
	if out[0]["title"] != "Ohtani homers twice" {
		t.Fatalf("unexpected article: %v", out[0])
	}
}

func TestGetArticle(t *testing.T) {
	t.Parallel()

	reader := sampleReader()

	rec := serve(t, reader, "/api/articles/1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	rec = serve(t, reader, "/api/articles/999")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing article status = %d, want 404", rec.Code)
	}

	rec = serve(t, reader, "/api/articles/by-source/7")
	if rec.Code != http.StatusOK {
		t.Fatalf("by-source status = %d, want 200", rec.Code)
	}
	if reader.lastFilter.SourceID != 7 {
		t.Fatalf("source filter not applied: %+v", reader.lastFilter)
	}
}

func TestListSources(t *testing.T) {
	t.Parallel()

	rec := serve(t, sampleReader(), "/api/sources")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var out []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(out) != 1 || out[0]["name"] != "Sports Wire" {
		t.Fatalf("unexpected sources payload: %v", out)
	}
}

func TestRss(t *testing.T) {
	t.Parallel()

	rec := serve(t, sampleReader(), "/rss.xml")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "application/xml") {
		t.Fatalf("content type = %q", ct)
	}

	body := rec.Body.String()
	for _, want := range []string{
		"<rss", "Ohtani homers twice", "https://news.example.com/a1", "大谷翔平ニュースまとめ",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("rss output missing %q:\n%s", want, body)
		}
	}
}

func TestSitemap(t *testing.T) {
	t.Parallel()

	rec := serve(t, sampleReader(), "/sitemap.xml")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := rec.Body.String()
	for _, want := range []string{
		"<urlset", "https://ohtani.example.com/",
		"<loc>https://news.example.com/a1</loc>", "<lastmod>2025-06-02</lastmod>",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("sitemap output missing %q:\n%s", want, body)
		}
	}

	today := time.Now().UTC().Format("2006-01-02")
	if !strings.Contains(body, fmt.Sprintf("<lastmod>%s</lastmod>", today)) {
		t.Fatalf("entry without published date must fall back to today:\n%s", body)
	}
}
