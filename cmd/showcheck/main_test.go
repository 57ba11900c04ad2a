package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/teslashibe/go-swarmshow/pkg/shows"
)

func TestCheck(t *testing.T) {
	catalog := shows.NewRegistry()
	if err := catalog.LoadBuiltIn(); err != nil {
		t.Fatal(err)
	}

	r := check(catalog, shows.RatsIntro, 1e-6)
	if r.Error != "" {
		t.Fatalf("rats intro failed: %s", r.Error)
	}
	if len(r.Drones) != 5 || len(r.Acts) != 1 {
		t.Errorf("got %d drones, %d acts", len(r.Drones), len(r.Acts))
	}
	for _, d := range r.Drones {
		if d.MaxSpeed <= 0 || d.MaxSpeed > 20 {
			t.Errorf("%s max speed %.2f out of range", d.Name, d.MaxSpeed)
		}
	}

	var out bytes.Buffer
	printReport(&out, r)
	for _, want := range []string{"rats-intro", "IntroAct", "Nerve", "MAX SPEED"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("report missing %q:\n%s", want, out.String())
		}
	}
}

func TestCheck_Errors(t *testing.T) {
	catalog := shows.NewRegistry()

	r := check(catalog, "no-such-show", 1e-6)
	if r.Error == "" {
		t.Error("expected an error for an unknown show")
	}

	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("name: broken\nacts: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	r = check(catalog, path, 1e-6)
	if r.Error == "" {
		t.Error("expected an error for a show without acts")
	}

	var out bytes.Buffer
	printReport(&out, r)
	if !strings.HasPrefix(out.String(), "❌") {
		t.Errorf("unexpected output: %s", out.String())
	}
}
