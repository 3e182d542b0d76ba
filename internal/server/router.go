package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/lupinelegend/f1-radio-archive/internal/logger"
	"github.com/lupinelegend/f1-radio-archive/internal/service/openf1"
	"github.com/lupinelegend/f1-radio-archive/internal/service/transcription"
)

// Dependencies are the services behind the HTTP surface
type Dependencies struct {
	Sync          openf1.SyncService
	Transcription transcription.TranscriptionService
	Log           *logger.Logger
	// Gatherer backs /metrics; nil disables the endpoint
	Gatherer prometheus.Gatherer
}

// NewRouter wires every route onto a gin engine
func NewRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(deps.Log))

	h := &handlers{sync: deps.Sync, transcription: deps.Transcription}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api")
	{
		api.POST("/transcribe", h.transcribe)
		api.POST("/sync-radio", h.syncRadio)
		api.GET("/sync-radio", h.listSessions)
		api.GET("/sessions", h.listSessions)
		api.GET("/meetings", h.listMeetings)
	}

	return r
}

// requestLogger logs one line per request with the request id
func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if log == nil {
			return
		}
		entry := log.WithRequest(c.Request).WithFields(logrus.Fields{
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
		})
		if len(c.Errors) > 0 {
			entry.WithField("errors", c.Errors.String()).Warn("request failed")
			return
		}
		entry.Info("request handled")
	}
}
