package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/feeds"
)

// rss renders the newest stored articles as an RSS 2.0 document.
func (s *Server) rss(c *gin.Context) {
	views, err := s.reader.ListRecent(c.Request.Context(), rssItemLimit)
	if err != nil {
		s.internalError(c, "list recent articles", err)
		return
	}

	feed := &feeds.Feed{
		Title:       "大谷翔平ニュースまとめ",
		Link:        &feeds.Link{Href: s.siteURL},
		Description: "大谷翔平に関する最新ニュースをまとめています",
		Created:     time.Now(),
	}

	for _, v := range views {
		item := &feeds.Item{
			Title:       v.Title,
			Link:        &feeds.Link{Href: v.URL},
			Description: v.Excerpt,
			Author:      &feeds.Author{Name: v.SourceName},
		}
		if item.Title == "" {
			item.Title = "(無題)"
		}
		if v.PublishedAt != nil {
			item.Created = *v.PublishedAt
		}
		feed.Items = append(feed.Items, item)
	}

	out, err := feed.ToRss()
	if err != nil {
		s.internalError(c, "render rss", err)
		return
	}

	c.Data(http.StatusOK, "application/xml; charset=utf-8", []byte(out))
}
