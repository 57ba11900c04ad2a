// Package web serves the show inspection API, playback controls, the live
// pose stream and Prometheus metrics.
package web

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/patrickmn/go-cache"

	"github.com/teslashibe/go-swarmshow/internal/log"
	"github.com/teslashibe/go-swarmshow/pkg/choreo"
	"github.com/teslashibe/go-swarmshow/pkg/hub"
	"github.com/teslashibe/go-swarmshow/pkg/protocol"
	"github.com/teslashibe/go-swarmshow/pkg/shows"
)

// Version is reported by /health.
const Version = "1.0.0"

// sampleCacheTTL is how long a /samples response is kept. Views are
// immutable, so entries only expire to bound memory.
const sampleCacheTTL = 10 * time.Minute

// Player is the playback control surface the API drives.
type Player interface {
	Status() protocol.StateData
	Pause() error
	Resume() error
	Seek(t float64) error
}

// Config wires a Server. Only View is required.
type Config struct {
	// ShowName labels /api/show.
	ShowName string

	// View is the choreography being inspected and played.
	View *choreo.View

	// Catalog backs /api/shows.
	Catalog *shows.Registry

	// Player backs /api/playback. Without it those routes answer 503.
	Player Player

	// Poses feeds /ws/poses.
	Poses *hub.Hub

	// Metrics is mounted at /metrics.
	Metrics http.Handler

	// Debug enables request logging.
	Debug bool
}

// Server is the HTTP API server
type Server struct {
	app     *fiber.App
	cfg     Config
	logger  *slog.Logger
	samples *cache.Cache
}

// NewServer creates the server and its routes.
func NewServer(cfg Config) *Server {
	s := &Server{
		cfg:     cfg,
		logger:  log.With("component", "web"),
		samples: cache.New(sampleCacheTTL, 2*sampleCacheTTL),
	}

	app := fiber.New(fiber.Config{
		AppName:               "swarmshow",
		DisableStartupMessage: true,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type",
	}))
	if cfg.Debug {
		app.Use(logger.New())
	}

	app.Get("/health", s.handleHealth)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics))
	}

	// API routes
	api := app.Group("/api")
	api.Get("/show", s.handleShow)
	api.Get("/shows", s.handleListShows)
	api.Get("/drones", s.handleListDrones)
	api.Get("/drones/:name/pose", s.handlePose)
	api.Get("/drones/:name/samples", s.handleSamples)
	api.Get("/playback", s.handlePlayback)
	api.Post("/playback/pause", s.handlePause)
	api.Post("/playback/resume", s.handleResume)
	api.Post("/playback/seek", s.handleSeek)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/poses", websocket.New(s.handlePosesWS))

	s.app = app
	return s
}

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	s.logger.Info("api listening", "addr", addr)
	return s.app.Listen(addr)
}

// Serve serves on an existing listener until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("api listening", "addr", ln.Addr().String())
	return s.app.Listener(ln)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// App exposes the fiber app for tests and embedding.
func (s *Server) App() *fiber.App {
	return s.app
}
