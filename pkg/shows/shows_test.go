package shows

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestListEmbedded(t *testing.T) {
	names, err := ListEmbedded()
	if err != nil {
		t.Fatalf("ListEmbedded failed: %v", err)
	}

	found := make(map[string]bool)
	for _, name := range names {
		found[name] = true
	}
	for _, want := range []string{"carousel", "relay"} {
		if !found[want] {
			t.Errorf("embedded show %q missing from %v", want, names)
		}
	}
}

func TestEmbeddedShowsBuildContinuously(t *testing.T) {
	names, err := ListEmbedded()
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			show, err := LoadEmbedded(name)
			if err != nil {
				t.Fatalf("LoadEmbedded(%s) failed: %v", name, err)
			}
			view, err := show.Build()
			if err != nil {
				t.Fatalf("Build(%s) failed: %v", name, err)
			}
			if view.Duration() <= 0 {
				t.Errorf("expected positive duration, got %v", view.Duration())
			}
			if gaps := view.ContinuityGaps(1e-6); len(gaps) != 0 {
				t.Errorf("unexpected continuity gaps: %+v", gaps)
			}
			t.Logf("%s: %d acts, %.1fs", name, len(view.Acts()), view.Duration())
		})
	}
}

func TestLoadEmbedded_NotFound(t *testing.T) {
	_, err := LoadEmbedded("nonexistent_show_12345")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRegistry_BuiltIn(t *testing.T) {
	r := NewRegistry()
	if err := r.LoadBuiltIn(); err != nil {
		t.Fatalf("LoadBuiltIn failed: %v", err)
	}

	if r.Count() < 3 {
		t.Errorf("expected at least 3 shows, got %d: %v", r.Count(), r.List())
	}

	e, err := r.Get(RatsIntro)
	if err != nil {
		t.Fatal(err)
	}
	if e.Source != "builtin" {
		t.Errorf("Source = %q, want builtin", e.Source)
	}

	first, err := r.View(RatsIntro)
	if err != nil {
		t.Fatalf("View(%s) failed: %v", RatsIntro, err)
	}
	second, _ := r.View(RatsIntro)
	if first != second {
		t.Error("expected the view to be built once and cached")
	}
	if len(first.Drones()) != 5 {
		t.Errorf("expected 5 drones, got %d", len(first.Drones()))
	}

	if _, err := r.View("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := r.LoadBuiltIn(); !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate on reload, got %v", err)
	}
}

func TestRegistry_CustomDirAndResolve(t *testing.T) {
	dir := t.TempDir()
	show := `
name: solo
roster: [one]
acts:
  - name: hop
    drones:
      - drone: one
        initial: {x: 0, y: 0, z: 0.5}
        final:   {x: 0, y: 0, z: 1.5}
`
	path := filepath.Join(dir, "solo.yml")
	if err := os.WriteFile(path, []byte(show), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry()
	if err := r.LoadCustomDir(dir); err != nil {
		t.Fatalf("LoadCustomDir failed: %v", err)
	}
	if got := r.List(); len(got) != 1 || got[0] != "solo" {
		t.Fatalf("List() = %v, want [solo]", got)
	}

	e, view, err := r.Resolve("solo")
	if err != nil {
		t.Fatal(err)
	}
	if e.Source != "dir:"+dir || view.Duration() != 1 {
		t.Errorf("Resolve(solo) = %+v, %.2fs", e, view.Duration())
	}

	e, view, err = r.Resolve(path)
	if err != nil {
		t.Fatal(err)
	}
	if e.Source != "file:"+path || view.Duration() != 1 {
		t.Errorf("Resolve(path) = %+v, %.2fs", e, view.Duration())
	}

	if _, _, err := r.Resolve("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
