package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/otosight/otosight/internal/analyze"
	"github.com/otosight/otosight/internal/engine"
)

// Service identity reported through /api/info.
const (
	ServiceName    = "otosight-api"
	ServiceVersion = "1.1.0"
)

// Features lists the capabilities the current build ships, for frontend
// feature gating.
var Features = []string{
	"circle_crop",
	"detection",
	"segmentation_masks",
	"coordinate_remapping",
	"annotated_overlay",
}

// Server binds the analysis pipeline to the HTTP surface. The engine may be
// nil when the runtime failed to load; the server still starts so health and
// info stay reachable, and analyze requests report the condition.
type Server struct {
	engine   engine.Engine
	analyzer *analyze.Analyzer
	router   *gin.Engine
}

// New builds a Server around the given engine. Pass nil when the engine
// could not be initialized.
func New(eng engine.Engine) *Server {
	return NewWithAnalyzer(eng, nil)
}

// NewWithAnalyzer builds a Server with a custom-wired pipeline. A nil
// analyzer falls back to the default wiring when the engine is present.
func NewWithAnalyzer(eng engine.Engine, a *analyze.Analyzer) *Server {
	s := &Server{engine: eng, analyzer: a}
	if eng != nil && s.analyzer == nil {
		s.analyzer = analyze.New(eng)
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLog())

	// The browser frontend is served from a different origin.
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	api := router.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/info", s.handleInfo)
	api.POST("/analyze", s.handleAnalyze)

	return router
}

// Handler returns the routed HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	log.Printf("listening on %s", addr)
	return s.router.Run(addr)
}

func requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("%s %s -> %d (%s)",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
