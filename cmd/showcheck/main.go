// showcheck validates drone shows and prints their timeline: act spans,
// per-drone start/end poses and peak speeds, and continuity gaps between
// acts. It exits non-zero when a show fails to build (or, with -strict,
// when any act boundary jumps).
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"text/tabwriter"

	"github.com/teslashibe/go-swarmshow/internal/log"
	"github.com/teslashibe/go-swarmshow/pkg/choreo"
	"github.com/teslashibe/go-swarmshow/pkg/geom"
	"github.com/teslashibe/go-swarmshow/pkg/shows"
	"github.com/teslashibe/go-swarmshow/pkg/trajectory"
)

// sampleHz is the rate used to estimate peak speeds.
const sampleHz = 50.0

// Report summarizes one show.
type Report struct {
	Show     string           `json:"show"`
	Source   string           `json:"source"`
	Duration float64          `json:"duration"`
	Acts     []choreo.ActSpan `json:"acts"`
	Drones   []DroneReport    `json:"drones"`
	Gaps     []choreo.Gap     `json:"gaps"`
	Error    string           `json:"error,omitempty"`
}

// DroneReport summarizes one drone over the whole show.
type DroneReport struct {
	Name     string    `json:"name"`
	Start    geom.Pose `json:"start"`
	End      geom.Pose `json:"end"`
	MaxSpeed float64   `json:"max_speed"`
}

func main() {
	asJSON := flag.Bool("json", false, "Print reports as JSON")
	strict := flag.Bool("strict", false, "Fail on continuity gaps between acts")
	tolerance := flag.Float64("tolerance", 1e-6, "Largest pose jump not reported as a gap")
	showsDir := flag.String("shows-dir", "", "Extra directory of YAML shows")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: showcheck [flags] [show-name | show.yaml]...\n\n")
		fmt.Fprintf(os.Stderr, "With no arguments every catalog show is checked.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	log.Init("warn")

	catalog := shows.NewRegistry()
	if err := catalog.LoadBuiltIn(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	if *showsDir != "" {
		if err := catalog.LoadCustomDir(*showsDir); err != nil {
			fmt.Fprintf(os.Stderr, "❌ %v\n", err)
			os.Exit(1)
		}
	}

	refs := flag.Args()
	if len(refs) == 0 {
		refs = catalog.List()
	}

	reports := make([]Report, 0, len(refs))
	failed := false
	for _, ref := range refs {
		r := check(catalog, ref, *tolerance)
		if r.Error != "" || (*strict && len(r.Gaps) > 0) {
			failed = true
		}
		reports = append(reports, r)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(reports)
	} else {
		for _, r := range reports {
			printReport(os.Stdout, r)
		}
	}

	if failed {
		os.Exit(1)
	}
}

// check resolves and builds one show and summarizes it.
func check(catalog *shows.Registry, ref string, tolerance float64) Report {
	entry, view, err := catalog.Resolve(ref)
	if err != nil {
		return Report{Show: ref, Error: err.Error()}
	}

	r := Report{
		Show:     entry.Name,
		Source:   entry.Source,
		Duration: view.Duration(),
		Acts:     view.Acts(),
		Gaps:     view.ContinuityGaps(tolerance),
	}
	for _, d := range view.Drones() {
		traj, _ := view.Trajectory(d)
		dr := DroneReport{
			Name:  string(d),
			Start: trajectory.StartPose(traj),
			End:   trajectory.EndPose(traj),
		}

		samples := trajectory.Samples(traj, sampleHz)
		for i := 1; i < len(samples); i++ {
			dt := samples[i].T - samples[i-1].T
			if dt < 1e-6 {
				continue
			}
			step := geom.Distance(samples[i-1].Pose.Position(), samples[i].Pose.Position())
			dr.MaxSpeed = math.Max(dr.MaxSpeed, step/dt)
		}
		r.Drones = append(r.Drones, dr)
	}
	return r
}

func printReport(w io.Writer, r Report) {
	if r.Error != "" {
		fmt.Fprintf(w, "❌ %s: %s\n\n", r.Show, r.Error)
		return
	}

	status := "✅"
	if len(r.Gaps) > 0 {
		status = "⚠️ "
	}
	fmt.Fprintf(w, "%s %s (%s) %.2fs\n", status, r.Show, r.Source, r.Duration)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  ACT\tSTART\tEND\tDURATION")
	for _, a := range r.Acts {
		fmt.Fprintf(tw, "  %s\t%.2f\t%.2f\t%.2f\n", a.Name, a.Start, a.End, a.Duration())
	}
	tw.Flush()

	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  DRONE\tSTART\tEND\tMAX SPEED")
	for _, d := range r.Drones {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%.2f m/s\n", d.Name, formatPose(d.Start), formatPose(d.End), d.MaxSpeed)
	}
	tw.Flush()

	for _, g := range r.Gaps {
		fmt.Fprintf(w, "  gap: %s jumps %.3f between %s and %s at %.2fs\n", g.Drone, g.Delta, g.FromAct, g.ToAct, g.At)
	}
	fmt.Fprintln(w)
}

func formatPose(p geom.Pose) string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f, %.2f)", p.X, p.Y, p.Z, p.Yaw)
}
