package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-swarmshow/pkg/choreo"
	"github.com/teslashibe/go-swarmshow/pkg/flight"
	"github.com/teslashibe/go-swarmshow/pkg/geom"
	"github.com/teslashibe/go-swarmshow/pkg/hub"
	"github.com/teslashibe/go-swarmshow/pkg/playback"
	"github.com/teslashibe/go-swarmshow/pkg/protocol"
	"github.com/teslashibe/go-swarmshow/pkg/shows"
	"github.com/teslashibe/go-swarmshow/pkg/trajectory"
)

// twoActShow: alpha flies 4 m then 1 m sideways, beta hovers then jumps 1 m.
func twoActShow(t *testing.T) *choreo.View {
	t.Helper()
	act := func(name string, alpha, beta [2]geom.Pose) *choreo.LockedAct {
		cfg, err := choreo.NewActConfiguration(name,
			choreo.DronePositionConfiguration{Drone: "alpha", Initial: alpha[0], Final: alpha[1]},
			choreo.DronePositionConfiguration{Drone: "beta", Initial: beta[0], Final: beta[1]},
		)
		require.NoError(t, err)
		a, err := choreo.NewActFromConfiguration(cfg, choreo.DirectFlight(1))
		require.NoError(t, err)
		locked, err := a.LockAndBuild()
		require.NoError(t, err)
		return locked
	}

	c, err := choreo.NewChoreography("alpha", "beta")
	require.NoError(t, err)
	require.NoError(t, c.AddAct(act("out",
		[2]geom.Pose{{Z: 1}, {X: 4, Z: 1}},
		[2]geom.Pose{{Y: 2, Z: 1}, {Y: 2, Z: 1}},
	)))
	require.NoError(t, c.AddAct(act("back",
		[2]geom.Pose{{X: 4, Z: 1}, {X: 4, Y: 1, Z: 1}},
		[2]geom.Pose{{Y: 3, Z: 1}, {Y: 3, Z: 1}},
	)))
	return c.View()
}

func newTestServer(t *testing.T, player Player) *Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics, err := playback.NewMetrics(reg)
	require.NoError(t, err)
	metrics.Ticks.Inc()

	catalog := shows.NewRegistry()
	require.NoError(t, catalog.LoadBuiltIn())

	return NewServer(Config{
		ShowName: "two-act",
		View:     twoActShow(t),
		Catalog:  catalog,
		Player:   player,
		Poses:    hub.New("poses"),
		Metrics:  metrics.Handler(),
	})
}

func do(t *testing.T, s *Server, method, path, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	code, body := do(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, code)

	health := decode[map[string]any](t, body)
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "two-act", health["show"])
	assert.Equal(t, 0.0, health["viewers"])
}

func TestShow(t *testing.T) {
	s := newTestServer(t, nil)
	code, body := do(t, s, http.MethodGet, "/api/show", "")
	require.Equal(t, http.StatusOK, code)

	info := decode[ShowInfo](t, body)
	assert.Equal(t, "two-act", info.Name)
	assert.InDelta(t, 5.0, info.Duration, 1e-9)
	assert.Equal(t, []string{"alpha", "beta"}, info.Drones)
	require.Len(t, info.Acts, 2)
	assert.Equal(t, "back", info.Acts[1].Name)
	assert.InDelta(t, 4.0, info.Acts[1].Start, 1e-9)

	require.Len(t, info.Gaps, 1)
	assert.Equal(t, choreo.DroneName("beta"), info.Gaps[0].Drone)
	assert.InDelta(t, 1.0, info.Gaps[0].Delta, 1e-9)
}

func TestListShows(t *testing.T) {
	s := newTestServer(t, nil)
	code, body := do(t, s, http.MethodGet, "/api/shows", "")
	require.Equal(t, http.StatusOK, code)

	entries := decode[[]shows.Entry](t, body)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	assert.Contains(t, names, shows.RatsIntro)
}

func TestDrones(t *testing.T) {
	s := newTestServer(t, nil)
	code, body := do(t, s, http.MethodGet, "/api/drones", "")
	require.Equal(t, http.StatusOK, code)

	drones := decode[[]DroneInfo](t, body)
	require.Len(t, drones, 2)
	assert.Equal(t, "alpha", drones[0].Name)
	assert.Equal(t, geom.Pose{Z: 1}, drones[0].Start)
	assert.Equal(t, geom.Pose{X: 4, Y: 1, Z: 1}, drones[0].End)
	assert.Equal(t, geom.Pose{Y: 3, Z: 1}, drones[1].End)
}

func TestPose(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		path  string
		code  int
		wantT float64
		wantX float64
	}{
		{"/api/drones/alpha/pose?t=1", http.StatusOK, 1, 1},
		{"/api/drones/alpha/pose", http.StatusOK, 0, 0},
		{"/api/drones/alpha/pose?t=99", http.StatusOK, 5, 4},
		{"/api/drones/alpha/pose?t=-2", http.StatusOK, 0, 0},
		{"/api/drones/alpha/pose?t=soon", http.StatusBadRequest, 0, 0},
		{"/api/drones/alpha/pose?t=NaN", http.StatusBadRequest, 0, 0},
		{"/api/drones/gamma/pose?t=1", http.StatusNotFound, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			code, body := do(t, s, http.MethodGet, tt.path, "")
			require.Equal(t, tt.code, code, string(body))
			if code != http.StatusOK {
				assert.Contains(t, string(body), "error")
				return
			}
			sample := decode[trajectory.Sample](t, body)
			assert.InDelta(t, tt.wantT, sample.T, 1e-9)
			assert.InDelta(t, tt.wantX, sample.Pose.X, 1e-9)
		})
	}
}

func TestSamples(t *testing.T) {
	s := newTestServer(t, nil)

	code, body := do(t, s, http.MethodGet, "/api/drones/alpha/samples?hz=2", "")
	require.Equal(t, http.StatusOK, code)
	samples := decode[[]trajectory.Sample](t, body)
	require.Len(t, samples, 11)
	assert.InDelta(t, 0.5, samples[1].T, 1e-9)
	assert.InDelta(t, 0.5, samples[1].Pose.X, 1e-9)
	assert.InDelta(t, 5.0, samples[10].T, 1e-9)

	// Off-grid durations still end on the final pose
	code, body = do(t, s, http.MethodGet, "/api/drones/beta/samples?hz=1.5", "")
	require.Equal(t, http.StatusOK, code)
	samples = decode[[]trajectory.Sample](t, body)
	require.Len(t, samples, 9)
	last := samples[len(samples)-1]
	assert.InDelta(t, 5.0, last.T, 1e-9)
	assert.InDelta(t, 3.0, last.Pose.Y, 1e-9)

	code, _ = do(t, s, http.MethodGet, "/api/drones/alpha/samples", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 3, s.samples.ItemCount())

	// Repeated requests are served from the cache
	code, cached := do(t, s, http.MethodGet, "/api/drones/alpha/samples?hz=2", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]trajectory.Sample](t, cached), 11)
	assert.Equal(t, 3, s.samples.ItemCount())

	for _, q := range []string{"hz=0", "hz=-1", "hz=1000", "hz=fast"} {
		code, _ := do(t, s, http.MethodGet, "/api/drones/alpha/samples?"+q, "")
		assert.Equal(t, http.StatusBadRequest, code, q)
	}
	code, _ = do(t, s, http.MethodGet, "/api/drones/gamma/samples", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestPlayback_NotConfigured(t *testing.T) {
	s := newTestServer(t, nil)
	code, _ := do(t, s, http.MethodGet, "/api/playback", "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	code, _ = do(t, s, http.MethodPost, "/api/playback/pause", "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestPlayback_Controls(t *testing.T) {
	view := twoActShow(t)
	opts := playback.DefaultOptions()
	opts.ShowName = "two-act"
	m := playback.NewManager(view, flight.NewLogSink(nil), opts)
	s := newTestServer(t, m)

	code, body := do(t, s, http.MethodGet, "/api/playback", "")
	require.Equal(t, http.StatusOK, code)
	status := decode[protocol.StateData](t, body)
	assert.Equal(t, "idle", status.State)
	assert.Equal(t, "two-act", status.Show)
	assert.InDelta(t, 5.0, status.Duration, 1e-9)

	code, _ = do(t, s, http.MethodPost, "/api/playback/pause", "")
	assert.Equal(t, http.StatusConflict, code)
	code, _ = do(t, s, http.MethodPost, "/api/playback/resume", "")
	assert.Equal(t, http.StatusConflict, code)

	code, body = do(t, s, http.MethodPost, "/api/playback/seek", `{"t": 4.5}`)
	require.Equal(t, http.StatusOK, code, string(body))
	status = decode[protocol.StateData](t, body)
	assert.InDelta(t, 4.5, status.ShowTime, 1e-9)
	assert.Equal(t, "back", status.Act)

	code, _ = do(t, s, http.MethodPost, "/api/playback/seek", `{}`)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = do(t, s, http.MethodPost, "/api/playback/seek", `not json`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestMetrics(t *testing.T) {
	s := newTestServer(t, nil)
	code, body := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), "swarmshow_playback_ticks_total 1")
}

func TestPosesWS_RequiresUpgrade(t *testing.T) {
	s := newTestServer(t, nil)
	code, _ := do(t, s, http.MethodGet, "/ws/poses", "")
	assert.Equal(t, http.StatusUpgradeRequired, code)
}
