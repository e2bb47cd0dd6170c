// Package server exposes the catalog over HTTP. The routing layer is thin:
// it parses requests, delegates to the catalog service, and translates
// taxonomy errors into status codes.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kweller/go-prodcat/catalog"
)

// Config configures a new Server instance.
type Config struct {
	Catalog *catalog.Service
	Logger  *slog.Logger
}

// Server is the HTTP front end for the product catalog.
type Server struct {
	catalog *catalog.Service
	logger  *slog.Logger
}

// New creates a new Server with the given configuration.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{catalog: cfg.Catalog, logger: logger}
}

// Handler returns the route tree. Search routes are registered per vector
// field; they all share one handler parameterized by field and query
// parameter name.
func (s *Server) Handler() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	products := router.Group("/products")
	{
		products.POST("", s.handleCreate)
		products.GET("", s.handleList)
		products.GET("/:id", s.handleGet)
		products.PATCH("/:id", s.handleUpdate)
		products.DELETE("/:id", s.handleDelete)

		products.GET("/search/description", s.searchHandler(catalog.FieldDescription, "description", false))
		products.GET("/search/features", s.searchHandler(catalog.FieldFeatures, "features", false))
		products.GET("/search/tags", s.searchHandler(catalog.FieldTags, "tags", false))
		products.GET("/search/review-counts", s.searchHandler(catalog.FieldReviewsCount, "reviewsCount", true))
	}

	return router
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
		)
	}
}
