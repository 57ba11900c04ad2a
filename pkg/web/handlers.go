package web

import (
	"errors"
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/patrickmn/go-cache"

	"github.com/teslashibe/go-swarmshow/pkg/choreo"
	"github.com/teslashibe/go-swarmshow/pkg/geom"
	"github.com/teslashibe/go-swarmshow/pkg/hub"
	"github.com/teslashibe/go-swarmshow/pkg/playback"
	"github.com/teslashibe/go-swarmshow/pkg/protocol"
	"github.com/teslashibe/go-swarmshow/pkg/trajectory"
)

const (
	// DefaultSampleHz is used by /samples when hz is omitted.
	DefaultSampleHz = 10.0

	// MaxSampleHz bounds the /samples rate.
	MaxSampleHz = 200.0

	// MaxSamples bounds one /samples response.
	MaxSamples = 20000

	// gapTolerance is the pose jump reported as a continuity gap.
	gapTolerance = 1e-6
)

// ShowInfo describes the loaded choreography.
type ShowInfo struct {
	Name     string           `json:"name"`
	Duration float64          `json:"duration"`
	Drones   []string         `json:"drones"`
	Acts     []choreo.ActSpan `json:"acts"`
	Gaps     []choreo.Gap     `json:"gaps"`
}

// DroneInfo is one roster member with its show start and end poses.
type DroneInfo struct {
	Name  string    `json:"name"`
	Start geom.Pose `json:"start"`
	End   geom.Pose `json:"end"`
}

// SeekRequest is the body of POST /api/playback/seek.
type SeekRequest struct {
	T *float64 `json:"t"`
}

func fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": msg,
	})
}

// handleHealth reports liveness
func (s *Server) handleHealth(c *fiber.Ctx) error {
	viewers := 0
	if s.cfg.Poses != nil {
		viewers = s.cfg.Poses.ClientCount()
	}
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": Version,
		"show":    s.cfg.ShowName,
		"viewers": viewers,
	})
}

// handleShow returns the loaded show's timeline
func (s *Server) handleShow(c *fiber.Ctx) error {
	v := s.cfg.View
	gaps := v.ContinuityGaps(gapTolerance)
	if gaps == nil {
		gaps = []choreo.Gap{}
	}
	return c.JSON(ShowInfo{
		Name:     s.cfg.ShowName,
		Duration: v.Duration(),
		Drones:   droneNames(v),
		Acts:     v.Acts(),
		Gaps:     gaps,
	})
}

// handleListShows returns the show catalog
func (s *Server) handleListShows(c *fiber.Ctx) error {
	if s.cfg.Catalog == nil {
		return c.JSON([]any{})
	}
	return c.JSON(s.cfg.Catalog.Entries())
}

// handleListDrones returns the roster
func (s *Server) handleListDrones(c *fiber.Ctx) error {
	v := s.cfg.View
	drones := v.Drones()
	out := make([]DroneInfo, 0, len(drones))
	for _, d := range drones {
		traj, _ := v.Trajectory(d)
		out = append(out, DroneInfo{
			Name:  string(d),
			Start: trajectory.StartPose(traj),
			End:   trajectory.EndPose(traj),
		})
	}
	return c.JSON(out)
}

// handlePose samples one drone at ?t=
func (s *Server) handlePose(c *fiber.Ctx) error {
	traj, ok := s.cfg.View.Trajectory(choreo.DroneName(c.Params("name")))
	if !ok {
		return fail(c, fiber.StatusNotFound, "unknown drone: "+c.Params("name"))
	}

	t, err := queryFloat(c, "t", 0)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}
	t = trajectory.ClampTime(t, traj.Duration())
	return c.JSON(trajectory.Sample{T: t, Pose: traj.DesiredPosition(t)})
}

// handleSamples samples one drone over the whole show at ?hz=
func (s *Server) handleSamples(c *fiber.Ctx) error {
	traj, ok := s.cfg.View.Trajectory(choreo.DroneName(c.Params("name")))
	if !ok {
		return fail(c, fiber.StatusNotFound, "unknown drone: "+c.Params("name"))
	}

	hz, err := queryFloat(c, "hz", DefaultSampleHz)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}
	if hz <= 0 || hz > MaxSampleHz {
		return fail(c, fiber.StatusBadRequest, "hz must be in (0, "+strconv.FormatFloat(MaxSampleHz, 'f', -1, 64)+"]")
	}

	key := c.Params("name") + "@" + strconv.FormatFloat(hz, 'g', -1, 64)
	if cached, ok := s.samples.Get(key); ok {
		return c.JSON(cached)
	}

	if n := int(math.Ceil(traj.Duration()*hz)) + 1; n > MaxSamples {
		return fail(c, fiber.StatusBadRequest, "too many samples, lower hz")
	}

	samples := trajectory.Samples(traj, hz)
	s.samples.Set(key, samples, cache.DefaultExpiration)
	return c.JSON(samples)
}

// handlePlayback returns the playback status
func (s *Server) handlePlayback(c *fiber.Ctx) error {
	if s.cfg.Player == nil {
		return fail(c, fiber.StatusServiceUnavailable, "playback not configured")
	}
	return c.JSON(s.cfg.Player.Status())
}

func (s *Server) handlePause(c *fiber.Ctx) error {
	return s.control(c, "pause", func(p Player) error { return p.Pause() })
}

func (s *Server) handleResume(c *fiber.Ctx) error {
	return s.control(c, "resume", func(p Player) error { return p.Resume() })
}

func (s *Server) handleSeek(c *fiber.Ctx) error {
	var req SeekRequest
	if err := c.BodyParser(&req); err != nil || req.T == nil {
		return fail(c, fiber.StatusBadRequest, "body must be {\"t\": seconds}")
	}
	return s.control(c, "seek", func(p Player) error { return p.Seek(*req.T) })
}

// control runs a playback command and answers with the new status.
func (s *Server) control(c *fiber.Ctx, name string, fn func(Player) error) error {
	if s.cfg.Player == nil {
		return fail(c, fiber.StatusServiceUnavailable, "playback not configured")
	}

	if err := fn(s.cfg.Player); err != nil {
		status := fiber.StatusInternalServerError
		switch {
		case errors.Is(err, playback.ErrNotPlaying), errors.Is(err, playback.ErrNotPaused):
			status = fiber.StatusConflict
		case errors.Is(err, playback.ErrInvalidSeek):
			status = fiber.StatusBadRequest
		}
		return fail(c, status, err.Error())
	}

	s.logger.Info("playback command", "command", name)
	return c.JSON(s.cfg.Player.Status())
}

// handlePosesWS streams playback frames to a viewer
func (s *Server) handlePosesWS(c *websocket.Conn) {
	if s.cfg.Poses == nil {
		c.Close()
		return
	}

	var greeting [][]byte
	if s.cfg.Player != nil {
		if msg, err := protocol.NewStateMessage(s.cfg.Player.Status()); err == nil {
			if data, err := msg.Bytes(); err == nil {
				greeting = append(greeting, data)
			}
		}
	}
	hub.NewClient(s.cfg.Poses, c, greeting...).Run()
}

func droneNames(v *choreo.View) []string {
	drones := v.Drones()
	out := make([]string, len(drones))
	for i, d := range drones {
		out[i] = string(d)
	}
	return out
}

func queryFloat(c *fiber.Ctx, key string, def float64) (float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("invalid " + key + ": " + raw)
	}
	return v, nil
}
