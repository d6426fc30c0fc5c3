// Package server exposes generated lens artifacts over HTTP.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ZanzyTHEbar/procurement-lens/internal/cache"
	"github.com/ZanzyTHEbar/procurement-lens/internal/database"
	"github.com/ZanzyTHEbar/procurement-lens/internal/encoding"
	"github.com/ZanzyTHEbar/procurement-lens/internal/errors"
	"github.com/ZanzyTHEbar/procurement-lens/internal/lens"
	"github.com/ZanzyTHEbar/procurement-lens/internal/monitoring"
)

// RunSource lists recorded generate runs
type RunSource interface {
	Runs(ctx context.Context, limit int) ([]database.Run, error)
}

// Options configures the artifact API
type Options struct {
	Addr           string
	RatePerMinute  int
	CacheTTL       time.Duration
	JWTSecret      string
	AllowedOrigins []string

	// Runs enables GET /api/runs when set
	Runs RunSource
}

// Server serves one artifact directory read-only
type Server struct {
	opts      Options
	artifacts *encoding.ArtifactDir
	cache     *cache.Cache
	limiter   *IPLimiter
	logger    *monitoring.Logger
	metrics   *monitoring.Metrics
	engine    *gin.Engine
}

// New builds the router. logger and metrics may be nil.
func New(artifacts *encoding.ArtifactDir, opts Options, logger *monitoring.Logger, metrics *monitoring.Metrics) *Server {
	if logger == nil {
		logger = monitoring.NewNopLogger()
	}
	if metrics == nil {
		metrics = monitoring.NewMetrics()
	}

	s := &Server{
		opts:      opts,
		artifacts: artifacts,
		cache:     cache.NewCache(opts.CacheTTL, metrics),
		limiter:   NewIPLimiter(opts.RatePerMinute),
		logger:    logger,
		metrics:   metrics,
	}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.monitor())
	r.Use(securityHeaders())
	r.Use(cors.New(s.corsConfig()))

	r.GET("/health", s.health)

	api := r.Group("/api")
	if s.limiter != nil {
		api.Use(s.rateLimit(s.limiter))
	}
	if s.opts.JWTSecret != "" {
		api.Use(s.bearerAuth([]byte(s.opts.JWTSecret)))
	}

	api.GET("/overview", s.overview)
	api.GET("/lenses", s.listLenses)
	api.GET("/lenses/:id", s.getLens)
	if s.opts.Runs != nil {
		api.GET("/runs", s.listRuns)
	}

	return r
}

func (s *Server) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Accept", "Authorization", "Cache-Control"},
		MaxAge:       12 * time.Hour,
	}
	if len(s.opts.AllowedOrigins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = s.opts.AllowedOrigins
	}
	return cfg
}

// monitor counts and logs every request
func (s *Server) monitor() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		s.metrics.IncrementRequest()

		c.Next()

		status := c.Writer.Status()
		if status >= 400 {
			s.metrics.IncrementError()
		}
		s.logger.RequestLogger(c.Request.Method, c.Request.URL.Path, c.ClientIP(), status, time.Since(start))
	}
}

// Handler returns the HTTP handler, mainly for tests
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on opts.Addr until ctx is cancelled, then shuts down
// gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.pruneLimiter(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.SystemLogger("server_start", "listening on "+s.opts.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.NewInternalError("server stopped", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.SystemLogger("server_shutdown", "draining connections")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.NewInternalError("server shutdown failed", err)
	}
	return nil
}

func (s *Server) pruneLimiter(ctx context.Context) {
	if s.limiter == nil {
		return
	}
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.limiter.Prune(time.Hour); n > 0 {
				s.logger.Debug("Pruned rate limiters", "count", n)
			}
		}
	}
}

// Close releases the response cache
func (s *Server) Close() error {
	return s.cache.Close()
}

// fail aborts the request with the error's status and a JSON body
func (s *Server) fail(c *gin.Context, err error) {
	appErr := errors.ToAppError(err)
	errors.LogError(s.logger.Logger, appErr)
	c.AbortWithStatusJSON(appErr.HTTPStatus, gin.H{
		"error":    appErr.ErrBuilder.Msg,
		"category": appErr.Category,
	})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"metrics":   s.metrics.GetStats(),
		"cache":     s.cache.Stats(),
	})
}

func (s *Server) serveArtifact(c *gin.Context, id string) {
	body, err := s.cache.GetOrLoad(id, func() ([]byte, error) {
		return s.artifacts.Read(id)
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	writeJSON(c, body)
}

func (s *Server) overview(c *gin.Context) {
	s.serveArtifact(c, lens.OverviewID)
}

func (s *Server) getLens(c *gin.Context) {
	id := c.Param("id")
	if !strings.Contains(id, lens.IDSeparator) {
		s.fail(c, errors.NewNotFoundError("lens "+id))
		return
	}
	s.serveArtifact(c, id)
}

func (s *Server) listLenses(c *gin.Context) {
	ids, err := s.artifacts.List(lens.IDSeparator)
	if err != nil {
		s.fail(c, errors.NewInternalError("cannot list lenses", err))
		return
	}
	if ids == nil {
		ids = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"lenses": ids})
}

func (s *Server) listRuns(c *gin.Context) {
	limit := 20
	if q := c.Query("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 {
			s.fail(c, errors.NewValidationError("limit must be a positive integer", map[string]string{"limit": q}))
			return
		}
		limit = min(n, 500)
	}

	runs, err := s.opts.Runs.Runs(c.Request.Context(), limit)
	if err != nil {
		s.fail(c, errors.NewInternalError("cannot list runs", err))
		return
	}
	if runs == nil {
		runs = []database.Run{}
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}
