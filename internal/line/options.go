package line

import (
	"time"

	"github.com/OCAP2/dirline/internal/animation"
	"github.com/OCAP2/dirline/internal/markerset"
)

// Options is everything configurable on one line.
type Options struct {
	Markers markerset.Options
	// Repeat is the animation repeat count; 0 means static markers and
	// animation.Infinite animates until stopped.
	Repeat   int
	Duration time.Duration
}

// DefaultOptions returns static direction arrows.
func DefaultOptions() Options {
	return Options{
		Markers:  markerset.DefaultOptions(),
		Duration: animation.DefaultStepDuration,
	}
}

// Clone returns options that share no symbol descriptors with o.
func (o Options) Clone() Options {
	out := o
	out.Markers = o.Markers.Clone()
	return out
}

func (o Options) animated() bool {
	return o.Repeat >= 1 || o.Repeat == animation.Infinite
}
