package flight

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-swarmshow/internal/log"
	"github.com/teslashibe/go-swarmshow/pkg/protocol"
)

const (
	wsHandshakeTimeout = 10 * time.Second
	wsWriteTimeout     = 2 * time.Second
)

// WSLink streams frames to a flight bridge over a websocket. If the
// connection drops, the next Send redials once before failing.
//
// The bridge may answer with ack, error and ping messages; acks and
// rejections are counted, pings are answered.
type WSLink struct {
	url    string
	dialer websocket.Dialer
	logger *slog.Logger

	mu     sync.Mutex // guards conn and closed; serialises writes
	conn   *websocket.Conn
	closed bool

	acks    atomic.Uint64
	rejects atomic.Uint64
}

// DialWS connects to the bridge at url.
func DialWS(ctx context.Context, url string) (*WSLink, error) {
	l := &WSLink{
		url:    url,
		dialer: websocket.Dialer{HandshakeTimeout: wsHandshakeTimeout},
		logger: log.With("link", "ws", "url", url),
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.connectLocked(ctx); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *WSLink) connectLocked(ctx context.Context) error {
	conn, _, err := l.dialer.DialContext(ctx, l.url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to flight bridge: %w", err)
	}
	l.conn = conn
	go l.readLoop(conn)
	l.logger.Info("flight bridge connected")
	return nil
}

// Send writes one frame message.
func (l *WSLink) Send(ctx context.Context, frame *protocol.FrameData) error {
	msg, err := protocol.NewFrameMessage(*frame)
	if err != nil {
		return err
	}
	data, err := msg.Bytes()
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}
	if l.conn == nil {
		if err := l.connectLocked(ctx); err != nil {
			return err
		}
	}

	deadline := time.Now().Add(wsWriteTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	l.conn.SetWriteDeadline(deadline)
	if err := l.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		l.conn.Close()
		l.conn = nil
		return fmt.Errorf("write frame %d: %w", frame.Seq, err)
	}
	return nil
}

// readLoop handles bridge replies until conn fails.
func (l *WSLink) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			l.mu.Lock()
			if l.conn == conn {
				l.conn = nil
				if !l.closed {
					l.logger.Warn("flight bridge disconnected", "error", err)
				}
			}
			l.mu.Unlock()
			return
		}

		msg, err := protocol.ParseMessage(data)
		if err != nil {
			l.logger.Debug("ignoring bridge message", "error", err)
			continue
		}

		switch msg.Type {
		case protocol.TypeAck:
			l.acks.Add(1)
		case protocol.TypeError:
			l.rejects.Add(1)
			if e, err := msg.GetErrorData(); err == nil {
				l.logger.Warn("bridge rejected frame", "seq", e.Seq, "reason", e.Message)
			}
		case protocol.TypePing:
			ping, err := msg.GetPingData()
			if err != nil {
				continue
			}
			pong, err := protocol.NewPongMessage(ping.ID, ping.Timestamp, time.Now().UnixMilli())
			if err != nil {
				continue
			}
			l.write(conn, pong)
		}
	}
}

func (l *WSLink) write(conn *websocket.Conn, msg *protocol.Message) {
	data, err := msg.Bytes()
	if err != nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conn != conn {
		return
	}
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	conn.WriteMessage(websocket.TextMessage, data)
}

// Acks returns how many frames the bridge acknowledged.
func (l *WSLink) Acks() uint64 {
	return l.acks.Load()
}

// Rejects returns how many frames the bridge rejected.
func (l *WSLink) Rejects() uint64 {
	return l.rejects.Load()
}

// Close sends a close frame and shuts the connection down.
func (l *WSLink) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	if l.conn == nil {
		return nil
	}

	conn := l.conn
	l.conn = nil
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "show over"),
		time.Now().Add(time.Second))
	return conn.Close()
}
