package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"OhtaniScanner/internal/domain"
	"OhtaniScanner/internal/ports"
)

const (
	rssItemLimit     = 50
	sitemapItemLimit = 1000
)

// Server exposes the read-only query surface over stored articles.
// It performs no pipeline logic; every handler is a thin pass-through.
type Server struct {
	reader  ports.ArticleReader
	siteURL string
	logger  *slog.Logger
}

// NewServer wires the article reader behind the HTTP handlers.
func NewServer(reader ports.ArticleReader, siteURL string, logger *slog.Logger) *Server {
	return &Server{reader: reader, siteURL: siteURL, logger: logger}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/articles", s.listArticles)
		api.GET("/articles/otani", s.listOtaniArticles)
		api.GET("/articles/:id", s.getArticle)
		api.GET("/articles/by-source/:id", s.listArticlesBySource)
		api.GET("/sources", s.listSources)
	}

	r.GET("/sitemap.xml", s.sitemap)
	r.GET("/rss.xml", s.rss)

	return r
}

type articleResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Excerpt     string     `json:"excerpt"`
	PublishedAt *time.Time `json:"published_at"`
	SourceName  string     `json:"source_name"`
	SourceIcon  string     `json:"source_icon"`
	Thumbnail   string     `json:"thumbnail"`
}

type sourceResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	IconURL string `json:"icon_url"`
}

func toArticleResponse(v domain.ArticleView) articleResponse {
	return articleResponse{
		ID:          v.ID,
		Title:       v.Title,
		URL:         v.URL,
		Excerpt:     v.Excerpt,
		PublishedAt: v.PublishedAt,
		SourceName:  v.SourceName,
		SourceIcon:  v.SourceIcon,
		Thumbnail:   v.Thumbnail,
	}
}

func (s *Server) listArticles(c *gin.Context) {
	s.respondList(c, ports.ListFilter{
		Limit:  queryInt(c, "limit", 20),
		Offset: queryInt(c, "offset", 0),
	})
}

func (s *Server) listOtaniArticles(c *gin.Context) {
	s.respondList(c, ports.ListFilter{
		OtaniOnly: true,
		Limit:     queryInt(c, "limit", 20),
		Offset:    queryInt(c, "offset", 0),
	})
}

func (s *Server) listArticlesBySource(c *gin.Context) {
	sourceID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid source id"})
		return
	}

	s.respondList(c, ports.ListFilter{
		SourceID: sourceID,
		Limit:    queryInt(c, "limit", 20),
		Offset:   queryInt(c, "offset", 0),
	})
}

func (s *Server) respondList(c *gin.Context, filter ports.ListFilter) {
	views, err := s.reader.List(c.Request.Context(), filter)
	if err != nil {
		s.internalError(c, "list articles", err)
		return
	}

	out := make([]articleResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toArticleResponse(v))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getArticle(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid article id"})
		return
	}

	view, err := s.reader.GetByID(c.Request.Context(), id)
	if errors.Is(err, ports.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found"})
		return
	}
	if err != nil {
		s.internalError(c, "get article", err)
		return
	}

	c.JSON(http.StatusOK, toArticleResponse(view))
}

func (s *Server) listSources(c *gin.Context) {
	sources, err := s.reader.ListSources(c.Request.Context())
	if err != nil {
		s.internalError(c, "list sources", err)
		return
	}

	out := make([]sourceResponse, 0, len(sources))
	for _, src := range sources {
		out = append(out, sourceResponse{ID: src.ID, Name: src.Name, IconURL: src.IconURL})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) internalError(c *gin.Context, op string, err error) {
	if s.logger != nil {
		s.logger.Error(op, "error", err)
	}
	c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
