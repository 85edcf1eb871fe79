// Package web serves the operator dashboard: a small JSON API to inspect
// the installation and request poster changes, plus websocket streams:
// /ws/status refreshes the full status periodically, /ws/posters pushes
// every scheduler change as it happens.
package web

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/reactive-signs/internal/log"
	"github.com/teslashibe/reactive-signs/pkg/counter"
	"github.com/teslashibe/reactive-signs/pkg/exhibition"
	"github.com/teslashibe/reactive-signs/pkg/hub"
	"github.com/teslashibe/reactive-signs/pkg/scheduler"
)

// Installation is what the dashboard drives. All methods must be safe for
// concurrent use; *exhibition.App satisfies it.
type Installation interface {
	Status() exhibition.Status
	Posters() []string
	RequestPoster(i int) error
	RequestCounterStep(dir counter.Direction)
}

// Config holds dashboard settings
type Config struct {
	Port string
	// StatusInterval is how often the status stream is refreshed.
	StatusInterval time.Duration
	// StaticDir is served at / when set.
	StaticDir string
}

// DefaultConfig returns the dashboard defaults
func DefaultConfig() Config {
	return Config{
		Port:           "8080",
		StatusInterval: 500 * time.Millisecond,
	}
}

// Server is the dashboard server
type Server struct {
	app    *fiber.App
	cfg    Config
	inst   Installation
	logger *slog.Logger

	statusHub *hub.Hub
	posterHub *hub.Hub

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewServer creates a dashboard for inst
func NewServer(inst Installation, cfg Config) *Server {
	if cfg.StatusInterval <= 0 {
		cfg.StatusInterval = DefaultConfig().StatusInterval
	}
	s := &Server{
		cfg:       cfg,
		inst:      inst,
		logger:    log.Component("web"),
		statusHub: hub.New("status"),
		posterHub: hub.New("posters"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Reactive Signs",
		DisableStartupMessage: true,
	})

	app.Use(cors.New())
	if cfg.StaticDir != "" {
		app.Static("/", cfg.StaticDir)
	}

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/posters", s.handleListPosters)
	api.Post("/posters/:index", s.handleSelectPoster)
	api.Post("/counter/:dir", s.handleCounterStep)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/status", websocket.New(s.handleStatusWS))
	app.Get("/ws/posters", websocket.New(s.handlePostersWS))

	s.app = app
	return s
}

// App returns the fiber app, for tests and for mounting extra routes
func (s *Server) App() *fiber.App {
	return s.app
}

// StatusHub returns the hub feeding /ws/status
func (s *Server) StatusHub() *hub.Hub {
	return s.statusHub
}

// Start runs the status stream and listens until Shutdown or a listen
// error.
func (s *Server) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	go s.statusHub.Run(ctx)
	go s.posterHub.Run(ctx)
	go s.streamStatus(ctx)

	s.logger.Info("dashboard listening", "url", "http://localhost:"+s.cfg.Port)
	return s.app.Listen(":" + s.cfg.Port)
}

// StartAsync starts the server in a goroutine and logs a listen failure
func (s *Server) StartAsync(ctx context.Context) {
	go func() {
		if err := s.Start(ctx); err != nil {
			s.logger.Error("dashboard stopped", "error", err)
		}
	}()
}

// PosterChanged pushes st to /ws/posters. It never blocks, so it can be
// registered as a scheduler OnChange callback.
func (s *Server) PosterChanged(st scheduler.Status) {
	if err := s.posterHub.BroadcastJSON(st); err != nil {
		s.logger.Warn("poster change encode failed", "error", err)
	}
}

// streamStatus pushes the installation status to the hub until ctx ends
func (s *Server) streamStatus(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.StatusInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.statusHub.BroadcastJSON(s.inst.Status()); err != nil {
				s.logger.Warn("status encode failed", "error", err)
			}
		}
	}
}

// Shutdown stops the status stream and the listener
func (s *Server) Shutdown() error {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	return s.app.Shutdown()
}
