package showconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidShow is returned for a structurally invalid show file.
	ErrInvalidShow = errors.New("invalid show")

	// ErrInvalidStep is returned for a script step that sets no kind or
	// more than one.
	ErrInvalidStep = errors.New("invalid script step")

	// ErrInvalidDecorator is returned for a decorator that sets no kind or
	// more than one.
	ErrInvalidDecorator = errors.New("invalid decorator")
)

// DefaultSpeed is the direct-flight speed (m/s) of acts that set none.
const DefaultSpeed = 1.0

// Load reads and parses a show file.
func Load(path string) (*Show, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read show file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML into a validated Show. Unknown fields are rejected so
// that a misspelt step does not silently disappear from a script.
func Parse(data []byte) (*Show, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var show Show
	if err := dec.Decode(&show); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidShow)
		}
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	if err := show.Validate(); err != nil {
		return nil, err
	}
	return &show, nil
}

// Marshal encodes a show back to YAML.
func Marshal(show *Show) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(show); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// Validate checks the show's structure. Motion parameters are checked when
// the show is built.
func (s *Show) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidShow)
	}
	if len(s.Roster) == 0 {
		return fmt.Errorf("%w: empty roster", ErrInvalidShow)
	}
	if len(s.Acts) == 0 {
		return fmt.Errorf("%w: no acts", ErrInvalidShow)
	}

	for i, a := range s.Acts {
		if a.Name == "" {
			return fmt.Errorf("%w: act %d has no name", ErrInvalidShow, i)
		}
		if a.Speed < 0 {
			return fmt.Errorf("%w: act %q has negative speed", ErrInvalidShow, a.Name)
		}
		for _, d := range a.Drones {
			if err := d.validate(); err != nil {
				return fmt.Errorf("act %q: drone %q: %w", a.Name, d.Drone, err)
			}
		}
	}
	return nil
}

func (d Drone) validate() error {
	if d.Drone == "" {
		return fmt.Errorf("%w: missing drone name", ErrInvalidShow)
	}
	for i, st := range d.Script {
		if _, n := st.kind(); n != 1 {
			return fmt.Errorf("%w: step %d sets %d kinds", ErrInvalidStep, i, n)
		}
	}
	for i, dec := range d.Decorators {
		if _, n := dec.kind(); n != 1 {
			return fmt.Errorf("%w: decorator %d sets %d kinds", ErrInvalidDecorator, i, n)
		}
	}
	return nil
}
