package server

import (
	"context"
	_ "embed"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"repo-orbit/gh"
	"repo-orbit/model"
	"repo-orbit/scene"
	"repo-orbit/viewer"
)

//go:embed static/index.html
var indexHTML []byte

// TreeFetcher retrieves the full repository tree
type TreeFetcher interface {
	FetchTree(ctx context.Context, repo model.RepoComponents, dir string) (*model.ContentNode, *gh.TreeResult, error)
}

// Server serves the scene of one repository and the actions that change it
type Server struct {
	echo  *echo.Echo
	addr  string
	repo  model.RepoComponents
	store *viewer.Store
	asker viewer.Asker

	// base is cancelled on shutdown and parents background queries
	base   context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	tree    *model.ContentNode
	result  *gh.TreeResult
	loading bool
}

// NewServer creates a new API server
func NewServer(addr string, repo model.RepoComponents, store *viewer.Store, asker viewer.Asker) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Debug().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	}))

	base, cancel := context.WithCancel(context.Background())

	server := &Server{
		echo:    e,
		addr:    addr,
		repo:    repo,
		store:   store,
		asker:   asker,
		base:    base,
		cancel:  cancel,
		loading: true,
	}

	store.OnChange(func(st viewer.State) {
		log.Debug().
			Int("expanded", len(st.Expanded)).
			Bool("panel_open", st.Panel.Open).
			Str("phase", st.Panel.Phase.String()).
			Msg("Viewer state changed")
	})

	server.setupRoutes()

	return server
}

// setupRoutes configures all API endpoints
func (s *Server) setupRoutes() {
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status": "healthy",
		})
	})

	s.echo.GET("/", func(c echo.Context) error {
		return c.HTMLBlob(http.StatusOK, indexHTML)
	})

	api := s.echo.Group("/api")
	api.GET("/scene", s.getScene)
	api.GET("/state", s.getState)
	api.GET("/legend", s.getLegend)
	api.POST("/nodes/toggle", s.toggleNode)
	api.POST("/nodes/select", s.selectNode)
	api.POST("/panel/query", s.queryPanel)
	api.DELETE("/panel", s.closePanel)
}

// Load fetches the repository tree once. The scene is empty until it returns.
func (s *Server) Load(ctx context.Context, fetcher TreeFetcher) error {
	root, result, err := fetcher.FetchTree(ctx, s.repo, s.repo.Dir)
	if err != nil {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
		return err
	}

	s.SetTree(root, result)

	event := log.Info()
	if msg := result.Errors.Message(); msg != "" {
		event = log.Warn().Str("error", msg).Int("failures", result.Errors.Count())
	}
	event.Str("repo", s.repo.FullName()).
		Int64("directories", result.Directories()).
		Int64("requests", result.Requests()).
		Msg("Repository tree loaded")

	return nil
}

// SetTree replaces the fetched tree
func (s *Server) SetTree(root *model.ContentNode, result *gh.TreeResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree = root
	s.result = result
	s.loading = false
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.addr).Str("repo", s.repo.FullName()).Msg("Starting server")
		if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		s.cancel()
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.cancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Info().Msg("Shutting down server")
	return s.echo.Shutdown(shutdownCtx)
}

// buildScene derives the scene from the current tree and a state snapshot.
func (s *Server) buildScene(state viewer.State) SceneResponse {
	s.mu.RLock()
	tree, result, loading := s.tree, s.result, s.loading
	s.mu.RUnlock()

	resp := SceneResponse{
		Scene:   scene.Build(tree, s.repo.FullName(), state),
		Loading: loading,
		Panel:   state.Panel,
	}
	if result != nil {
		resp.Error = result.Errors.Message()
	}
	return resp
}
