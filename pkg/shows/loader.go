// Package shows is the catalog of ready-made choreographies: YAML shows
// embedded in the binary, shows loaded from disk and the built-in rats
// introduction.
package shows

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/teslashibe/go-swarmshow/internal/showconfig"
)

//go:embed data/*.yaml
var embeddedShows embed.FS

// LoadEmbedded parses an embedded show by file name (without extension).
func LoadEmbedded(name string) (*showconfig.Show, error) {
	data, err := embeddedShows.ReadFile(fmt.Sprintf("data/%s.yaml", name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	show, err := showconfig.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("embedded show %q: %w", name, err)
	}
	return show, nil
}

// LoadFromFile parses a show file on disk.
func LoadFromFile(path string) (*showconfig.Show, error) {
	return showconfig.Load(path)
}

// LoadFromDirectory parses every *.yaml and *.yml file in dir.
func LoadFromDirectory(dir string) ([]*showconfig.Show, error) {
	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to list show files: %w", err)
		}
		files = append(files, matches...)
	}

	var out []*showconfig.Show
	for _, file := range files {
		show, err := LoadFromFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
		out = append(out, show)
	}
	return out, nil
}

// ListEmbedded returns the names of all embedded shows.
func ListEmbedded() ([]string, error) {
	entries, err := embeddedShows.ReadDir("data")
	if err != nil {
		return nil, fmt.Errorf("failed to list embedded shows: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".yaml") {
			names = append(names, strings.TrimSuffix(entry.Name(), ".yaml"))
		}
	}
	return names, nil
}

// isFile reports whether path names an existing regular file.
func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
