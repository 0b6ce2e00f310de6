package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"drivon-backend/internal/config"
	"drivon-backend/internal/logging"
)

func NewRouter(cfg config.Config, logger *logging.Logger, h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(NoStoreMiddleware())
	r.Use(RequestLoggingMiddleware(logger))

	api := r.Group("/api")
	{
		api.POST("/request", h.SubmitRequest)
		api.OPTIONS("/request", allowMethods("POST, OPTIONS"))
		api.GET("/services", h.ListServices)
		api.OPTIONS("/services", allowMethods("GET, OPTIONS"))
	}

	// Everything outside /api is the public site; unknown API paths and
	// non-GET methods elsewhere are a 404.
	static := http.FileServer(http.Dir(cfg.Static.Dir))
	r.NoRoute(func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == "/api" || strings.HasPrefix(path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "not_found"})
			return
		}
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.Status(http.StatusNotFound)
			return
		}
		static.ServeHTTP(c.Writer, c.Request)
	})

	return r
}

func allowMethods(allow string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Allow", allow)
		c.Status(http.StatusNoContent)
	}
}
