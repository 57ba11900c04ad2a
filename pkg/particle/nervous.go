package particle

import "fmt"

// Beat is one sideways twitch of a nervous move.
type Beat struct {
	Duration  float64 // seconds
	Amplitude float64 // metres, peak lateral deviation
}

// NervousShape is the pattern of beats played in a loop by
// MoveNervouslyToPoint. Beats alternate sides.
type NervousShape struct {
	Beats []Beat
}

// NervousShapeFromParams builds a shape from a flat (duration, amplitude)
// list, the form used in show scripts.
func NervousShapeFromParams(params ...float64) (NervousShape, error) {
	if len(params) == 0 || len(params)%2 != 0 {
		return NervousShape{}, fmt.Errorf("%w: want (duration, amplitude) pairs, got %d values", ErrInvalidShape, len(params))
	}

	shape := NervousShape{Beats: make([]Beat, 0, len(params)/2)}
	for i := 0; i < len(params); i += 2 {
		shape.Beats = append(shape.Beats, Beat{Duration: params[i], Amplitude: params[i+1]})
	}
	return shape, shape.Validate()
}

// Cycle returns the duration of one pass through the beats.
func (s NervousShape) Cycle() float64 {
	var total float64
	for _, b := range s.Beats {
		total += b.Duration
	}
	return total
}

// Validate checks that the shape can be played.
func (s NervousShape) Validate() error {
	if len(s.Beats) == 0 {
		return fmt.Errorf("%w: no beats", ErrInvalidShape)
	}
	for i, b := range s.Beats {
		if !finite(b.Duration) || !finite(b.Amplitude) {
			return fmt.Errorf("%w: beat %d", ErrNonFinite, i)
		}
		if b.Duration < 0 {
			return fmt.Errorf("%w: beat %d has negative duration %v", ErrInvalidShape, i, b.Duration)
		}
		if b.Amplitude < 0 {
			return fmt.Errorf("%w: beat %d has negative amplitude %v", ErrInvalidShape, i, b.Amplitude)
		}
	}
	if s.Cycle() <= 0 {
		return fmt.Errorf("%w: cycle has zero length", ErrInvalidShape)
	}
	return nil
}
