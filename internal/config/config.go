// Package config provides configuration helpers for go-swarmshow commands.
//
// Every setting comes from the environment with a default, so a bare
// `swarmshow` plays the built-in rats introduction as a dry run.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cast"
)

// Defaults.
const (
	DefaultShowName   = "rats-intro"
	DefaultListenPort = "8080"
	DefaultPlaybackHz = 20.0
	DefaultLogLevel   = "info"
	MaxPlaybackHz     = 200.0
)

// ShowFile returns the path of a YAML show from SHOW_FILE, or "" to use
// the catalog.
func ShowFile() string {
	return os.Getenv("SHOW_FILE")
}

// ShowName returns the catalog show to play from SHOW_NAME.
func ShowName() string {
	return envOr("SHOW_NAME", DefaultShowName)
}

// ShowsDir returns an extra directory of YAML shows from SHOWS_DIR, or "".
func ShowsDir() string {
	return os.Getenv("SHOWS_DIR")
}

// ListenPort returns the API port from LISTEN_PORT.
func ListenPort() string {
	return envOr("LISTEN_PORT", DefaultListenPort)
}

// ListenAddr returns the API listen address.
func ListenAddr() string {
	return ":" + ListenPort()
}

// PlaybackHz returns the playback loop rate from PLAYBACK_HZ. Invalid or
// out-of-range values fall back to the default.
func PlaybackHz() float64 {
	raw := os.Getenv("PLAYBACK_HZ")
	if raw == "" {
		return DefaultPlaybackHz
	}
	hz, err := cast.ToFloat64E(raw)
	if err != nil || !(hz > 0 && hz <= MaxPlaybackHz) {
		fmt.Fprintf(os.Stderr, "Warning: ignoring PLAYBACK_HZ=%q, using %.0f\n", raw, DefaultPlaybackHz)
		return DefaultPlaybackHz
	}
	return hz
}

// PlaybackInterval returns the tick period for PlaybackHz.
func PlaybackInterval() time.Duration {
	return time.Duration(float64(time.Second) / PlaybackHz())
}

// PlaybackLoop reports whether PLAYBACK_LOOP asks to restart the show
// when it ends.
func PlaybackLoop() bool {
	return cast.ToBool(os.Getenv("PLAYBACK_LOOP"))
}

// FlightLinkURL returns the flight bridge URL from FLIGHT_LINK_URL, or ""
// for a dry run.
func FlightLinkURL() string {
	return os.Getenv("FLIGHT_LINK_URL")
}

// FlightLinkKind returns the link kind from FLIGHT_LINK_KIND ("ws",
// "http", "log"), or "" to infer it from the URL.
func FlightLinkKind() string {
	return os.Getenv("FLIGHT_LINK_KIND")
}

// LogLevel returns the log level from LOG_LEVEL.
func LogLevel() string {
	return envOr("LOG_LEVEL", DefaultLogLevel)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
