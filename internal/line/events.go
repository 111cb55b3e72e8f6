package line

import (
	"github.com/OCAP2/dirline/internal/dispatcher"
	"github.com/OCAP2/dirline/internal/model/core"
	"github.com/OCAP2/dirline/internal/surface"
)

// Dispatcher commands the Manager subscribes to.
const (
	EventLineDrawn       = "line.drawn"
	EventLineRemoved     = "line.removed"
	EventViewportChanged = "viewport.changed"
)

// Drawn is the payload of EventLineDrawn. Drawing an id that is already
// attached replaces its geometry.
type Drawn struct {
	ID       string
	Geometry core.LineGeometry
	Style    surface.LineStyle
	Hidden   bool
	// Options overrides the manager defaults when set.
	Options *Options
}

// Removed is the payload of EventLineRemoved.
type Removed struct {
	ID string
}

// ViewportChanged is the payload of EventViewportChanged.
type ViewportChanged struct {
	Viewport core.Viewport
}

// NewDrawnEvent wraps p for Dispatcher.Dispatch.
func NewDrawnEvent(p Drawn) dispatcher.Event {
	return dispatcher.Event{Command: EventLineDrawn, Payload: p}
}

// NewRemovedEvent wraps a removal of id for Dispatcher.Dispatch.
func NewRemovedEvent(id string) dispatcher.Event {
	return dispatcher.Event{Command: EventLineRemoved, Payload: Removed{ID: id}}
}

// NewViewportChangedEvent wraps vp for Dispatcher.Dispatch.
func NewViewportChangedEvent(vp core.Viewport) dispatcher.Event {
	return dispatcher.Event{Command: EventViewportChanged, Payload: ViewportChanged{Viewport: vp}}
}
