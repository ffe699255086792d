package httpapi

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	Xmlns   string     `xml:"xmlns,attr"`
	URLs    []urlEntry `xml:"url"`
}

type urlEntry struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// sitemap renders the site root plus the newest article URLs.
func (s *Server) sitemap(c *gin.Context) {
	entries, err := s.reader.ListSitemapEntries(c.Request.Context(), sitemapItemLimit)
	if err != nil {
		s.internalError(c, "list sitemap entries", err)
		return
	}

	today := time.Now().UTC().Format("2006-01-02")
	set := urlSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs: []urlEntry{{
			Loc:        s.siteURL + "/",
			LastMod:    today,
			ChangeFreq: "daily",
			Priority:   "1.0",
		}},
	}

	for _, entry := range entries {
		lastMod := today
		if entry.PublishedAt != nil {
			lastMod = entry.PublishedAt.UTC().Format("2006-01-02")
		}
		set.URLs = append(set.URLs, urlEntry{
			Loc:        entry.URL,
			LastMod:    lastMod,
			ChangeFreq: "weekly",
			Priority:   "0.8",
		})
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		s.internalError(c, "render sitemap", err)
		return
	}

	c.Data(http.StatusOK, "application/xml; charset=utf-8", append([]byte(xml.Header), out...))
}
