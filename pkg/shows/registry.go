package shows

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/teslashibe/go-swarmshow/internal/log"
	"github.com/teslashibe/go-swarmshow/internal/showconfig"
	"github.com/teslashibe/go-swarmshow/pkg/choreo"
	"github.com/teslashibe/go-swarmshow/pkg/shows/rats"
)

var (
	// ErrNotFound is returned when a show is not in the catalog.
	ErrNotFound = errors.New("show not found")

	// ErrDuplicate is returned when registering a name twice.
	ErrDuplicate = errors.New("show already registered")
)

// RatsIntro is the catalog name of the built-in rats introduction.
const RatsIntro = "rats-intro"

// BuildFunc produces a choreography's playback view.
type BuildFunc func() (*choreo.View, error)

// Entry describes a catalog show.
type Entry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Source      string `json:"source"`
}

type entry struct {
	Entry
	build BuildFunc

	once sync.Once
	view *choreo.View
	err  error
}

func (e *entry) get() (*choreo.View, error) {
	e.once.Do(func() {
		e.view, e.err = e.build()
	})
	return e.view, e.err
}

// Registry is a catalog of named shows. Shows are built on first use and
// the view is cached.
type Registry struct {
	mu    sync.RWMutex
	shows map[string]*entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{shows: make(map[string]*entry)}
}

// Register adds a show under name.
func (r *Registry) Register(e Entry, build BuildFunc) error {
	if e.Name == "" || build == nil {
		return fmt.Errorf("register show: missing name or builder")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.shows[e.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, e.Name)
	}
	r.shows[e.Name] = &entry{Entry: e, build: build}
	return nil
}

// RegisterShow adds a parsed YAML show under its own name.
func (r *Registry) RegisterShow(show *showconfig.Show, source string) error {
	return r.Register(Entry{
		Name:        show.Name,
		Description: show.Description,
		Source:      source,
	}, show.Build)
}

// LoadBuiltIn registers the rats introduction and every embedded show.
func (r *Registry) LoadBuiltIn() error {
	err := r.Register(Entry{
		Name:        RatsIntro,
		Description: "Nerve, Romeo, Juliet, Fievel and Dumbo introduce themselves",
		Source:      "builtin",
	}, rats.IntroChoreography)
	if err != nil {
		return err
	}

	names, err := ListEmbedded()
	if err != nil {
		return err
	}
	for _, name := range names {
		show, err := LoadEmbedded(name)
		if err != nil {
			return err
		}
		if err := r.RegisterShow(show, "embedded:"+name); err != nil {
			return err
		}
	}

	log.Debug("built-in shows loaded", "count", r.Count())
	return nil
}

// LoadCustomDir registers every show file in dir.
func (r *Registry) LoadCustomDir(dir string) error {
	loaded, err := LoadFromDirectory(dir)
	if err != nil {
		return err
	}
	for _, show := range loaded {
		if err := r.RegisterShow(show, "dir:"+dir); err != nil {
			return err
		}
	}
	log.Info("custom shows loaded", "dir", dir, "count", len(loaded))
	return nil
}

// Resolve finds a show by catalog name, or loads it from disk when ref is
// a path to a show file.
func (r *Registry) Resolve(ref string) (Entry, *choreo.View, error) {
	if isFile(ref) {
		show, err := LoadFromFile(ref)
		if err != nil {
			return Entry{}, nil, err
		}
		view, err := show.Build()
		if err != nil {
			return Entry{}, nil, err
		}
		return Entry{Name: show.Name, Description: show.Description, Source: "file:" + ref}, view, nil
	}

	view, err := r.View(ref)
	if err != nil {
		return Entry{}, nil, err
	}
	e, _ := r.Get(ref)
	return e, view, nil
}

// Get returns a show's catalog entry.
func (r *Registry) Get(name string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.shows[name]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return e.Entry, nil
}

// View builds (once) and returns a show's playback view.
func (r *Registry) View(name string) (*choreo.View, error) {
	r.mu.RLock()
	e, ok := r.shows[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	view, err := e.get()
	if err != nil {
		return nil, fmt.Errorf("build show %q: %w", name, err)
	}
	return view, nil
}

// List returns all show names, sorted alphabetically.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.shows))
	for name := range r.shows {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entries returns every catalog entry sorted by name.
func (r *Registry) Entries() []Entry {
	names := r.List()

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(names))
	for _, name := range names {
		if e, ok := r.shows[name]; ok {
			out = append(out, e.Entry)
		}
	}
	return out
}

// Count returns the number of registered shows.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.shows)
}
