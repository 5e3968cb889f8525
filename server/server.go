package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"social_dashboard/analytics"
	"social_dashboard/generator"
	"social_dashboard/platform"
	"social_dashboard/publisher"
	"social_dashboard/scheduler"
	"social_dashboard/store"
)

var errJobNotFound = errors.New("job not found")

// Jobs is the part of the scheduler the API exposes.
type Jobs interface {
	ListJobs() []scheduler.JobInfo
	RunNow(ctx context.Context, name string) error
}

// Deps are the collaborators of a Server. Store, Publisher and Agent are
// required.
type Deps struct {
	Store     *store.Store
	Publisher *publisher.Publisher
	Agent     *generator.Agent
	Provider  string
	Adapter   *platform.Adapter
	Simulator *analytics.Simulator
	Jobs      Jobs
	Metrics   *Metrics
	Logger    logrus.FieldLogger
}

type Server struct {
	store     *store.Store
	publisher *publisher.Publisher
	agent     *generator.Agent
	provider  string
	adapter   *platform.Adapter
	simulator *analytics.Simulator
	jobs      Jobs
	metrics   *Metrics
	logger    logrus.FieldLogger
	sessions  *sessionStore
}

func New(d Deps) (*Server, error) {
	if d.Store == nil || d.Publisher == nil {
		return nil, errors.New("store and publisher are required")
	}
	if d.Agent == nil {
		return nil, errors.New("generator agent required")
	}
	if d.Logger == nil {
		d.Logger = logrus.StandardLogger()
	}
	if d.Adapter == nil {
		d.Adapter = platform.NewAdapter(nil)
	}
	if d.Simulator == nil {
		d.Simulator = analytics.NewSimulator(nil, d.Logger)
	}
	return &Server{
		store:     d.Store,
		publisher: d.Publisher,
		agent:     d.Agent,
		provider:  d.Provider,
		adapter:   d.Adapter,
		simulator: d.Simulator,
		jobs:      d.Jobs,
		metrics:   d.Metrics,
		logger:    d.Logger,
		sessions:  newSessionStore(),
	}, nil
}

// Routes builds the gin engine with middleware and every API route.
func (s *Server) Routes() *gin.Engine {
	r := gin.New()
	r.Use(requestID(), requestLogger(s.logger), countRequests(s.metrics), recovery(s.logger), cors())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "platforms": len(platform.IDs())})
	})
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := r.Group("/api")
	{
		api.GET("/platforms", s.handlePlatforms)
		api.GET("/platforms/:id", s.handlePlatform)

		content := api.Group("/content")
		content.POST("/adapt", s.handleAdapt)
		content.POST("/score", s.handleScore)
		content.POST("/analyze", s.handleAnalyze)
		content.POST("/variants", s.handleVariants)
		content.POST("/preview", s.handlePreview)

		posts := api.Group("/posts")
		posts.GET("", s.handleListPosts)
		posts.POST("", s.handleCreatePost)
		posts.GET("/:id", s.handleGetPost)
		posts.PUT("/:id", s.handleUpdatePost)
		posts.DELETE("/:id", s.handleDeletePost)
		posts.POST("/:id/schedule", s.handleSchedulePost)
		posts.DELETE("/:id/schedule", s.handleUnschedulePost)
		posts.POST("/:id/publish", s.handlePublishPost)

		api.GET("/analytics", s.handleAnalytics)
		api.POST("/analytics/refresh", s.handleRefreshAnalytics)
		api.GET("/export", s.handleExport)

		ai := api.Group("/ai")
		ai.POST("/generate", s.handleGenerate)
		ai.POST("/sessions", s.handleSessionCreate)
		ai.GET("/sessions/:id", s.handleSessionGet)
		ai.POST("/sessions/:id", s.handleSessionRevise)

		api.GET("/schedule/jobs", s.handleListJobs)
		api.POST("/schedule/jobs/:name/run", s.handleRunJob)
	}
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      3 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	s.logger.Info("Server stopped")
	return nil
}
