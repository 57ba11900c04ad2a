// Package playback flies a choreography in real time.
//
// The Manager owns a single control loop: every tick it samples every
// drone of a choreo.View at the current show time, drops setpoints that
// did not move beyond the dead zone and hands the rest to a
// flight.PoseSink as one frame. Pause, resume and seek act on the show
// clock; the trajectories themselves are never touched.
package playback

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-swarmshow/internal/log"
	"github.com/teslashibe/go-swarmshow/pkg/choreo"
	"github.com/teslashibe/go-swarmshow/pkg/flight"
	"github.com/teslashibe/go-swarmshow/pkg/geom"
	"github.com/teslashibe/go-swarmshow/pkg/protocol"
)

var (
	// ErrAlreadyRunning is returned when Run is called twice concurrently.
	ErrAlreadyRunning = errors.New("playback already running")

	// ErrNotPlaying is returned when pausing a show that is not playing.
	ErrNotPlaying = errors.New("show is not playing")

	// ErrNotPaused is returned when resuming a show that is not paused.
	ErrNotPaused = errors.New("show is not paused")

	// ErrInvalidSeek is returned for a non-finite seek target.
	ErrInvalidSeek = errors.New("invalid seek time")
)

// State is the playback lifecycle.
type State int

const (
	StateIdle State = iota
	StatePlaying
	StatePaused
	StateFinished
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Defaults for Options.
const (
	DefaultRate     = 50 * time.Millisecond // 20Hz
	DefaultDeadZone = 0.001                 // 1 mm / 1 mrad
)

// Options configures a Manager.
type Options struct {
	// ShowName labels state messages.
	ShowName string

	// Rate is the tick period.
	Rate time.Duration

	// Loop restarts the show from the beginning when it ends.
	Loop bool

	// DeadZone is the smallest per-axis change (metres or radians) that
	// is sent again. Zero sends every drone on every tick.
	DeadZone float64

	// Metrics is optional.
	Metrics *Metrics

	// Logger defaults to the global logger.
	Logger *slog.Logger
}

// DefaultOptions returns a 20Hz, non-looping configuration.
func DefaultOptions() Options {
	return Options{Rate: DefaultRate, DeadZone: DefaultDeadZone}
}

// FrameListener observes every frame handed to the sink.
type FrameListener func(frame *protocol.FrameData)

// StateListener observes playback state changes.
type StateListener func(state protocol.StateData)

// Manager plays one choreography through one sink.
type Manager struct {
	view   *choreo.View
	sink   flight.PoseSink
	opts   Options
	logger *slog.Logger
	now    func() time.Time

	drones []string
	acts   []choreo.ActSpan

	mu sync.RWMutex

	running bool
	state   State
	runID   string

	// Show clock: while playing, show time is offset + now - startedAt.
	offset    float64
	startedAt time.Time

	// Dead-zone filtering
	lastSent []geom.Pose
	hasSent  []bool
	force    bool
	seekGen  uint64 // bumped by Seek; send only clears force for its own generation

	listeners      []FrameListener
	stateListeners []StateListener

	// Loop-only state
	buf        []geom.Pose
	seq        uint64
	tickCount  uint64
	errorCount uint64
}

// NewManager creates a manager for view that sends frames to sink.
func NewManager(view *choreo.View, sink flight.PoseSink, opts Options) *Manager {
	if opts.Rate <= 0 {
		opts.Rate = DefaultRate
	}
	if opts.DeadZone < 0 {
		opts.DeadZone = 0
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.With("component", "playback")
	}

	names := view.Drones()
	drones := make([]string, len(names))
	for i, d := range names {
		drones[i] = string(d)
	}

	return &Manager{
		view:     view,
		sink:     sink,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
		drones:   drones,
		acts:     view.Acts(),
		lastSent: make([]geom.Pose, len(drones)),
		hasSent:  make([]bool, len(drones)),
		buf:      make([]geom.Pose, 0, len(drones)),
		force:    true,
	}
}

// AddFrameListener registers fn for every frame. Listeners run on the
// playback goroutine and must not block.
func (m *Manager) AddFrameListener(fn FrameListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// AddStateListener registers fn for state changes.
func (m *Manager) AddStateListener(fn StateListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stateListeners = append(m.stateListeners, fn)
}

// Run plays the show from the current show time until it ends (unless
// looping) or ctx is cancelled. It returns nil when the show finished and
// ctx.Err() when cancelled, in which case the manager is left paused.
func (m *Manager) Run(ctx context.Context) error {
	if err := m.begin(); err != nil {
		return err
	}
	defer func() {
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
	}()

	m.logger.Info("playback started",
		"run", m.RunID(),
		"show", m.opts.ShowName,
		"duration", m.view.Duration(),
		"drones", len(m.drones),
		"hz", math.Round(1/m.opts.Rate.Seconds()),
	)
	m.notifyState()

	ticker := time.NewTicker(m.opts.Rate)
	defer ticker.Stop()

	// First setpoint goes out immediately, not one period late.
	if m.tick(ctx) {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			m.halt()
			return ctx.Err()
		case <-ticker.C:
			if m.tick(ctx) {
				return nil
			}
		}
	}
}

// begin starts a new run at the current show time.
func (m *Manager) begin() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return ErrAlreadyRunning
	}
	m.running = true
	if m.state == StateFinished {
		m.offset = 0
	}
	m.runID = uuid.NewString()
	m.seq = 0
	m.force = true
	m.state = StatePlaying
	m.startedAt = m.now()
	return nil
}

// halt freezes the show clock when Run is cancelled mid-show. The
// manager is left paused so a later Run or Resume continues from there.
func (m *Manager) halt() {
	m.mu.Lock()
	if m.state == StatePlaying {
		m.offset = math.Min(m.showTimeLocked(), m.view.Duration())
		m.state = StatePaused
	}
	t := m.offset
	m.mu.Unlock()

	m.logger.Info("playback stopped", "run", m.RunID(), "t", t)
	m.notifyState()
}

// tick executes one control cycle. It reports whether the show is over.
func (m *Manager) tick(ctx context.Context) bool {
	m.mu.Lock()
	if m.state != StatePlaying {
		m.mu.Unlock()
		return false
	}

	duration := m.view.Duration()
	t := m.showTimeLocked()
	finished := t >= duration
	if finished {
		t = duration
	}

	// 1. Sample every drone
	m.buf = m.view.SampleInto(t, m.buf)

	// 2. Dead-zone filtering; the first and last frames carry everyone
	force := m.force || finished
	gen := m.seekGen
	frame := &protocol.FrameData{
		RunID:    m.runID,
		ShowTime: t,
		Act:      m.actName(t),
	}
	for i, pose := range m.buf {
		if force || !m.hasSent[i] || pose.MaxDelta(m.lastSent[i]) >= m.opts.DeadZone {
			frame.Poses = append(frame.Poses, protocol.DronePose{Drone: m.drones[i], Pose: pose})
		}
	}
	listeners := m.listeners
	m.mu.Unlock()

	m.tickCount++
	m.opts.Metrics.tick()
	m.opts.Metrics.progress(t, duration)
	m.opts.Metrics.skipped(len(m.buf) - len(frame.Poses))

	// 3. Send
	if len(frame.Poses) > 0 {
		m.seq++
		frame.Seq = m.seq
		m.send(ctx, frame, gen)
		for _, fn := range listeners {
			fn(frame)
		}
	}

	// 4. Periodic heartbeat
	if m.tickCount%100 == 0 {
		m.logger.Debug("playback heartbeat",
			"ticks", m.tickCount,
			"frames", m.seq,
			"errors", m.errorCount,
			"t", t,
		)
	}

	if !finished {
		return false
	}
	return m.finish()
}

// send delivers frame and records what was sent. gen is the seek
// generation the frame was sampled under.
func (m *Manager) send(ctx context.Context, frame *protocol.FrameData, gen uint64) {
	start := m.now()
	err := m.sink.Send(ctx, frame)
	if err != nil {
		m.errorCount++
		m.opts.Metrics.failed()
		if m.errorCount%100 == 1 {
			m.logger.Warn("frame send failed", "seq", frame.Seq, "errors", m.errorCount, "error", err)
		}
		return
	}
	m.opts.Metrics.sent(len(frame.Poses), m.now().Sub(start).Seconds())

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range frame.Poses {
		i := m.index(p.Drone)
		m.lastSent[i] = p.Pose
		m.hasSent[i] = true
	}
	if m.seekGen == gen {
		m.force = false
	}
}

// finish handles the end of the show. It reports whether Run should return.
func (m *Manager) finish() bool {
	m.mu.Lock()
	if m.opts.Loop {
		m.offset = 0
		m.startedAt = m.now()
		m.mu.Unlock()
		m.logger.Info("show looped", "run", m.RunID())
		return false
	}
	m.state = StateFinished
	m.offset = m.view.Duration()
	m.mu.Unlock()

	m.logger.Info("playback finished", "run", m.RunID(), "frames", m.seq, "errors", m.errorCount)
	m.notifyState()
	return true
}

func (m *Manager) index(drone string) int {
	for i, d := range m.drones {
		if d == drone {
			return i
		}
	}
	return -1
}

func (m *Manager) actName(t float64) string {
	if i := m.view.ActAt(t); i >= 0 {
		return m.acts[i].Name
	}
	return ""
}

func (m *Manager) showTimeLocked() float64 {
	if m.state != StatePlaying {
		return m.offset
	}
	return m.offset + m.now().Sub(m.startedAt).Seconds()
}

// ============================================================
// Control API
// ============================================================

// Pause freezes the show clock. Drones hold their last setpoint.
func (m *Manager) Pause() error {
	m.mu.Lock()
	if m.state != StatePlaying {
		m.mu.Unlock()
		return ErrNotPlaying
	}
	m.offset = math.Min(m.showTimeLocked(), m.view.Duration())
	m.state = StatePaused
	t := m.offset
	m.mu.Unlock()

	m.logger.Info("playback paused", "t", t)
	m.notifyState()
	return nil
}

// Resume restarts the show clock after Pause.
func (m *Manager) Resume() error {
	m.mu.Lock()
	if m.state != StatePaused {
		m.mu.Unlock()
		return ErrNotPaused
	}
	m.state = StatePlaying
	m.startedAt = m.now()
	t := m.offset
	m.mu.Unlock()

	m.logger.Info("playback resumed", "t", t)
	m.notifyState()
	return nil
}

// Seek moves the show clock to t, clamped to the show. The next frame
// carries every drone.
func (m *Manager) Seek(t float64) error {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return ErrInvalidSeek
	}
	t = math.Max(0, math.Min(t, m.view.Duration()))

	m.mu.Lock()
	m.offset = t
	m.startedAt = m.now()
	m.force = true
	m.seekGen++
	if m.state == StateFinished && t < m.view.Duration() {
		m.state = StateIdle
	}
	m.mu.Unlock()

	m.logger.Info("playback seek", "t", t)
	m.notifyState()
	return nil
}

// ============================================================
// Status
// ============================================================

// State returns the lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// RunID returns the current run's ID, or "" before the first Run.
func (m *Manager) RunID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.runID
}

// ShowTime returns the current position on the show timeline.
func (m *Manager) ShowTime() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return math.Min(m.showTimeLocked(), m.view.Duration())
}

// Status returns the playback state as sent to viewers.
func (m *Manager) Status() protocol.StateData {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.statusLocked()
}

func (m *Manager) statusLocked() protocol.StateData {
	t := math.Min(m.showTimeLocked(), m.view.Duration())
	return protocol.StateData{
		RunID:    m.runID,
		Show:     m.opts.ShowName,
		State:    m.state.String(),
		ShowTime: t,
		Duration: m.view.Duration(),
		Act:      m.actName(t),
		Loop:     m.opts.Loop,
	}
}

func (m *Manager) notifyState() {
	m.mu.RLock()
	status := m.statusLocked()
	listeners := m.stateListeners
	m.mu.RUnlock()

	for _, fn := range listeners {
		fn(status)
	}
}
