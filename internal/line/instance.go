package line

import (
	"slices"
	"sync"

	"github.com/OCAP2/dirline/internal/animation"
	"github.com/OCAP2/dirline/internal/model/core"
	"github.com/OCAP2/dirline/internal/surface"
)

// Instance is one attached line: its geometry, current marker set,
// animation state and options. Only the Manager mutates it, under mu.
type Instance struct {
	mu       *sync.Mutex // the owning Manager's lock
	id       string
	geometry core.LineGeometry
	style    surface.LineStyle
	hidden   bool
	options  Options
	markers  []*core.MarkerInstance
	lastErr  error
	seq      *animation.Sequencer

	// pending is set while the configured animation has not started on the
	// current marker set yet.
	pending bool
}

// ID returns the line id.
func (i *Instance) ID() string { return i.id }

// Geometry returns the map geometry the markers are built from.
func (i *Instance) Geometry() core.LineGeometry {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.geometry
}

// Hidden reports whether the line is hidden.
func (i *Instance) Hidden() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.hidden
}

// Options returns a copy of the line's options.
func (i *Instance) Options() Options {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.options.Clone()
}

// Markers returns the current marker set in animation order.
func (i *Instance) Markers() []*core.MarkerInstance {
	i.mu.Lock()
	defer i.mu.Unlock()
	return slices.Clone(i.markers)
}

// Err returns the error of the last build, if it failed.
func (i *Instance) Err() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.lastErr
}

// AnimationState returns the sequencer state.
func (i *Instance) AnimationState() animation.State { return i.seq.State() }

// Remaining returns the animation repeats left.
func (i *Instance) Remaining() int { return i.seq.Remaining() }
