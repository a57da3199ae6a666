// Package server exposes the DesignFlow JSON API over HTTP.
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/morgan8889/design-flow/internal/models"
	"gorm.io/gorm"
)

// Syncer is the sync surface the API triggers. Nil when no GitHub token is
// configured; sync routes then report the missing credential instead of
// failing on every request.
type Syncer interface {
	SyncAll(ctx context.Context) error
	SyncProject(ctx context.Context, projectID string) error
	DiscoverRepos(ctx context.Context) ([]models.Project, error)
}

// StartOpts holds configuration for the API server.
type StartOpts struct {
	DB     *gorm.DB
	Syncer Syncer
	Port   int
	Out    io.Writer
}

// Start launches the API server. It blocks until ctx is cancelled, then
// shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.DB == nil {
		return fmt.Errorf("server: db is required")
	}
	if opts.Port <= 0 {
		opts.Port = 8321
	}

	gin.SetMode(gin.ReleaseMode)
	router := NewRouter(opts.DB, opts.Syncer)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "DesignFlow API running at http://localhost:%d\n", opts.Port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// NewRouter builds the Gin router with all API routes registered.
func NewRouter(db *gorm.DB, syncer Syncer) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	registerRoutes(router, db, syncer)
	return router
}
