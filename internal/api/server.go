package api

import (
	"time"

	"github.com/mjollne/varde/internal/config"
	"github.com/mjollne/varde/internal/database"
	"github.com/mjollne/varde/internal/evidence"
	"github.com/mjollne/varde/internal/middleware"
	"github.com/mjollne/varde/internal/tracker"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

// Server bundles the fiber app with the pipeline components the handlers need
type Server struct {
	app   *fiber.App
	cfg   *config.Cfg
	store *database.AttackStore
	trk   *tracker.Tracker
	evid  *evidence.Index
	gate  *middleware.Gate
}

// NewServer initializes the API server with the provided configuration.
// The capture intake is open by nature; everything admin-facing sits behind
// the access gate.
func NewServer(cfg *config.Cfg, store *database.AttackStore, trk *tracker.Tracker, evid *evidence.Index) *Server {
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	})

	app.Use(logger.New()) // Log every request

	s := &Server{
		app:   app,
		cfg:   cfg,
		store: store,
		trk:   trk,
		evid:  evid,
		gate:  middleware.NewGate(cfg.Tracker.AdminToken),
	}
	s.setupRoutes()

	return s
}

// App exposes the fiber app, mainly for tests
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves until the listener fails
func (s *Server) Listen() error {
	return s.app.Listen(s.cfg.Server.ListenAddr)
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) pollInterval() time.Duration {
	return time.Duration(s.cfg.Tracker.PollInterval) * time.Second
}
