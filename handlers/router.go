package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRouter registers every route on a new gin engine
func SetupRouter(h *ResearchHandler, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(requestLogger(logger), gin.Recovery())
	r.SetHTMLTemplate(PageTemplate())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	r.GET("/", h.Index)
	r.POST("/search", h.Search)

	api := r.Group("/api")
	{
		api.GET("/suggestions", h.Suggestions)

		api.GET("/research", h.ListSessions)
		api.POST("/research", h.StartResearch)
		api.GET("/research/:id", h.GetSession)
		api.POST("/research/:id/resubmit", h.Resubmit)
		api.GET("/research/:id/briefing", h.GetBriefing)
	}

	return r
}

// requestLogger logs method, route and status. Query strings are left out
// because they can carry topics.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
