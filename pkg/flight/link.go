// Package flight delivers pose frames to the drones' flight controllers.
//
// The choreography engine only computes setpoints; a PoseSink carries them
// to whatever bridge talks to the hardware. Links for a websocket bridge,
// an HTTP bridge and a log-only dry run are provided.
package flight

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/teslashibe/go-swarmshow/internal/log"
	"github.com/teslashibe/go-swarmshow/pkg/protocol"
)

var (
	// ErrClosed is returned when sending on a closed link.
	ErrClosed = errors.New("flight link closed")

	// ErrRejected is returned when the bridge refuses a frame.
	ErrRejected = errors.New("frame rejected by bridge")

	// ErrUnknownKind is returned by Open for an unsupported link kind.
	ErrUnknownKind = errors.New("unknown flight link kind")
)

// PoseSink receives frames from the playback loop. Send is called from a
// single goroutine; Close may be called concurrently with it.
type PoseSink interface {
	Send(ctx context.Context, frame *protocol.FrameData) error
	Close() error
}

// Link kinds accepted by Open.
const (
	KindLog  = "log"
	KindWS   = "ws"
	KindHTTP = "http"
)

// Open creates a link of the given kind. An empty kind is inferred from
// the URL scheme, and falls back to a log-only dry run without a URL.
func Open(ctx context.Context, kind, url string) (PoseSink, error) {
	if kind == "" {
		kind = inferKind(url)
	}

	switch kind {
	case KindLog:
		return NewLogSink(log.With("link", "log")), nil
	case KindWS:
		return DialWS(ctx, url)
	case KindHTTP:
		return NewHTTPLink(url, nil), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

func inferKind(url string) string {
	switch {
	case strings.HasPrefix(url, "ws://"), strings.HasPrefix(url, "wss://"):
		return KindWS
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		return KindHTTP
	default:
		return KindLog
	}
}

// LogSink logs frames instead of flying them.
type LogSink struct {
	logger *slog.Logger
	frames uint64
}

// NewLogSink creates a dry-run sink. A nil logger uses the global one.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = log.L()
	}
	return &LogSink{logger: logger}
}

// Send logs the frame at debug level, with a heartbeat every 100 frames.
func (s *LogSink) Send(_ context.Context, frame *protocol.FrameData) error {
	s.frames++
	s.logger.Debug("frame",
		"run", frame.RunID,
		"seq", frame.Seq,
		"t", frame.ShowTime,
		"drones", len(frame.Poses),
	)
	if s.frames%100 == 0 {
		s.logger.Info("dry run heartbeat", "frames", s.frames, "t", frame.ShowTime, "act", frame.Act)
	}
	return nil
}

// Frames returns how many frames were logged.
func (s *LogSink) Frames() uint64 {
	return s.frames
}

// Close is a no-op.
func (s *LogSink) Close() error {
	return nil
}
