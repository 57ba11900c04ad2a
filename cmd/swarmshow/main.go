// swarmshow plays a drone choreography to a flight-control link and serves
// the inspection API and live pose stream while it flies.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teslashibe/go-swarmshow/internal/config"
	"github.com/teslashibe/go-swarmshow/internal/log"
	"github.com/teslashibe/go-swarmshow/pkg/flight"
	"github.com/teslashibe/go-swarmshow/pkg/hub"
	"github.com/teslashibe/go-swarmshow/pkg/playback"
	"github.com/teslashibe/go-swarmshow/pkg/shows"
	"github.com/teslashibe/go-swarmshow/pkg/web"
)

// Config is the resolved command configuration.
type Config struct {
	Show     string
	ShowsDir string
	Addr     string
	Interval time.Duration
	Loop     bool
	LinkKind string
	LinkURL  string
	LogLevel string
	NoPlay   bool
	Debug    bool
}

func main() {
	cfg := parseFlags()
	log.Init(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		log.Error("swarmshow failed", "error", err)
		os.Exit(1)
	}
}

// parseFlags reads the environment, then lets flags override it.
func parseFlags() Config {
	show := config.ShowFile()
	if show == "" {
		show = config.ShowName()
	}

	cfg := Config{}
	flag.StringVar(&cfg.Show, "show", show, "Catalog show name or path to a YAML show (SHOW_FILE / SHOW_NAME)")
	flag.StringVar(&cfg.ShowsDir, "shows-dir", config.ShowsDir(), "Extra directory of YAML shows (SHOWS_DIR)")
	flag.StringVar(&cfg.Addr, "addr", config.ListenAddr(), "API listen address (LISTEN_PORT)")
	flag.DurationVar(&cfg.Interval, "interval", config.PlaybackInterval(), "Playback tick period (PLAYBACK_HZ)")
	flag.BoolVar(&cfg.Loop, "loop", config.PlaybackLoop(), "Restart the show when it ends (PLAYBACK_LOOP)")
	flag.StringVar(&cfg.LinkKind, "link", config.FlightLinkKind(), "Flight link kind: log, ws, http (FLIGHT_LINK_KIND)")
	flag.StringVar(&cfg.LinkURL, "link-url", config.FlightLinkURL(), "Flight bridge URL (FLIGHT_LINK_URL)")
	flag.StringVar(&cfg.LogLevel, "log-level", config.LogLevel(), "Log level: debug, info, warn, error (LOG_LEVEL)")
	flag.BoolVar(&cfg.NoPlay, "no-play", false, "Serve the API without flying the show")
	flag.BoolVar(&cfg.Debug, "debug", false, "Log every API request")
	flag.Parse()

	if cfg.Debug && cfg.LogLevel == config.DefaultLogLevel {
		cfg.LogLevel = "debug"
	}
	return cfg
}

func run(ctx context.Context, cfg Config) error {
	// 1. Show catalog
	catalog := shows.NewRegistry()
	if err := catalog.LoadBuiltIn(); err != nil {
		return err
	}
	if cfg.ShowsDir != "" {
		if err := catalog.LoadCustomDir(cfg.ShowsDir); err != nil {
			return err
		}
	}

	entry, view, err := catalog.Resolve(cfg.Show)
	if err != nil {
		return fmt.Errorf("load show %q: %w", cfg.Show, err)
	}
	log.Info("show loaded",
		"show", entry.Name,
		"source", entry.Source,
		"drones", len(view.Drones()),
		"acts", len(view.Acts()),
		"duration", view.Duration(),
	)
	for _, gap := range view.ContinuityGaps(1e-6) {
		log.Warn("discontinuity between acts",
			"drone", gap.Drone,
			"from", gap.FromAct,
			"to", gap.ToAct,
			"at", gap.At,
			"delta", gap.Delta,
		)
	}

	// 2. Flight link
	sink, err := flight.Open(ctx, cfg.LinkKind, cfg.LinkURL)
	if err != nil {
		return fmt.Errorf("open flight link: %w", err)
	}
	defer sink.Close()

	// 3. Playback, metrics and viewers
	metrics, err := playback.NewMetrics(nil)
	if err != nil {
		return err
	}

	poses := hub.New("poses")
	go poses.Run(ctx)

	opts := playback.DefaultOptions()
	opts.ShowName = entry.Name
	opts.Rate = cfg.Interval
	opts.Loop = cfg.Loop
	opts.Metrics = metrics
	player := playback.NewManager(view, sink, opts)
	player.AddFrameListener(poses.BroadcastFrame)
	player.AddStateListener(poses.BroadcastState)

	// 4. API
	server := web.NewServer(web.Config{
		ShowName: entry.Name,
		View:     view,
		Catalog:  catalog,
		Player:   player,
		Poses:    poses,
		Metrics:  metrics.Handler(),
		Debug:    cfg.Debug,
	})

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Listen(cfg.Addr)
	}()

	if !cfg.NoPlay {
		go func() {
			err := player.Run(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Error("playback stopped", "error", err)
			}
		}()
	}

	// 5. Wait for shutdown
	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("api server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("api shutdown", "error", err)
	}
	return nil
}
