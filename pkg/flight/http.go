package flight

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/teslashibe/go-swarmshow/internal/httpc"
	"github.com/teslashibe/go-swarmshow/pkg/protocol"
)

// DefaultHTTPTimeout bounds one frame POST.
const DefaultHTTPTimeout = 500 * time.Millisecond

// HTTPLink POSTs each frame, wrapped in a protocol message, to a bridge
// endpoint. Any 2xx status counts as accepted.
type HTTPLink struct {
	url    string
	client *http.Client
	closed atomic.Bool
}

// NewHTTPLink creates a link to url. A nil client uses a dedicated client
// with DefaultHTTPTimeout.
func NewHTTPLink(url string, client *http.Client) *HTTPLink {
	if client == nil {
		client = httpc.NewClient(DefaultHTTPTimeout)
	}
	return &HTTPLink{url: url, client: client}
}

// Send POSTs one frame.
func (l *HTTPLink) Send(ctx context.Context, frame *protocol.FrameData) error {
	if l.closed.Load() {
		return ErrClosed
	}

	msg, err := protocol.NewFrameMessage(*frame)
	if err != nil {
		return err
	}

	resp, err := httpc.PostJSON(ctx, l.client, l.url, msg)
	if err != nil {
		return fmt.Errorf("post frame %d: %w", frame.Seq, err)
	}
	if err := httpc.Finish(resp); err != nil {
		return fmt.Errorf("%w: frame %d: %v", ErrRejected, frame.Seq, err)
	}
	return nil
}

// Close stops further sends.
func (l *HTTPLink) Close() error {
	l.closed.Store(true)
	return nil
}
