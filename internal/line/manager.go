// Package line keeps the direction markers of every attached line in step
// with its geometry and the view.
package line

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/OCAP2/dirline/internal/animation"
	"github.com/OCAP2/dirline/internal/cache"
	"github.com/OCAP2/dirline/internal/dispatcher"
	"github.com/OCAP2/dirline/internal/logging"
	"github.com/OCAP2/dirline/internal/markerset"
	"github.com/OCAP2/dirline/internal/model/core"
	"github.com/OCAP2/dirline/internal/surface"
)

var (
	// ErrUnknownLine is returned for operations on ids that are not attached.
	ErrUnknownLine = errors.New("unknown line")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("line manager closed")
)

// Surface is what the Manager draws on.
type Surface interface {
	markerset.Surface
	SetLine(id string, g core.LineGeometry, style surface.LineStyle, hidden bool)
	DeleteLine(id string)
	SetViewport(vp core.Viewport)
	Viewport() core.Viewport
	Query(class string) []*core.MarkerInstance
}

// Recorder receives the outcome of every build.
type Recorder interface {
	RecordBuild(s *core.BuildSnapshot) error
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(s *core.BuildSnapshot) error

// RecordBuild calls f(s).
func (f RecorderFunc) RecordBuild(s *core.BuildSnapshot) error { return f(s) }

// Option configures a Manager.
type Option func(*Manager)

// WithDefaults sets the options given to lines drawn without their own.
func WithDefaults(o Options) Option {
	return func(m *Manager) {
		m.defaults = o.Clone()
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// WithFader sets the fade primitive used by every line's sequencer.
func WithFader(f animation.Fader) Option {
	return func(m *Manager) {
		m.fader = f
	}
}

// WithFadeOut sets the fade-out time at the start of each animation cycle.
func WithFadeOut(d time.Duration) Option {
	return func(m *Manager) {
		m.fadeOut = d
	}
}

// WithRecorder records a snapshot after every build.
func WithRecorder(r Recorder) Option {
	return func(m *Manager) {
		m.recorder = r
	}
}

// Manager owns the attached lines. Its methods are safe for concurrent use.
// It subscribes to the dispatcher's line
// and viewport events on construction and unsubscribes on Close.
type Manager struct {
	dispatcher *dispatcher.Dispatcher
	surface    Surface
	builder    *markerset.Builder
	lines      *cache.Store[*Instance]

	defaults Options
	logger   *slog.Logger
	fader    animation.Fader
	fadeOut  time.Duration
	recorder Recorder

	mu     sync.Mutex
	closed bool
}

// NewManager creates a Manager drawing on s and registers its handlers on d.
func NewManager(d *dispatcher.Dispatcher, s Surface, b *markerset.Builder, opts ...Option) (*Manager, error) {
	if d == nil || s == nil || b == nil {
		return nil, errors.New("line manager needs a dispatcher, a surface and a builder")
	}

	m := &Manager{
		dispatcher: d,
		surface:    s,
		builder:    b,
		lines:      cache.New[*Instance](),
		defaults:   DefaultOptions(),
		logger:     slog.Default(),
		fader:      animation.TimerFader{},
		fadeOut:    animation.DefaultFadeOut,
	}
	for _, opt := range opts {
		opt(m)
	}

	d.Register(EventLineDrawn, m.handleDrawn, dispatcher.Logged())
	d.Register(EventLineRemoved, m.handleRemoved, dispatcher.Logged())
	d.Register(EventViewportChanged, m.handleViewportChanged, dispatcher.Logged())

	return m, nil
}

// Close unsubscribes from the dispatcher and stops every animation. Lines
// stay on the surface.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	m.dispatcher.Unregister(EventLineDrawn)
	m.dispatcher.Unregister(EventLineRemoved)
	m.dispatcher.Unregister(EventViewportChanged)
	for _, inst := range m.lines.Values() {
		inst.seq.Stop()
	}
}

func (m *Manager) handleDrawn(e dispatcher.Event) (any, error) {
	p, ok := e.Payload.(Drawn)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected payload %T", e.Command, e.Payload)
	}
	if err := m.Draw(p); err != nil {
		return nil, err
	}
	return p.ID, nil
}

func (m *Manager) handleRemoved(e dispatcher.Event) (any, error) {
	p, ok := e.Payload.(Removed)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected payload %T", e.Command, e.Payload)
	}
	return p.ID, m.Remove(p.ID)
}

func (m *Manager) handleViewportChanged(e dispatcher.Event) (any, error) {
	p, ok := e.Payload.(ViewportChanged)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected payload %T", e.Command, e.Payload)
	}
	m.SetViewport(p.Viewport)
	return m.lines.Len(), nil
}

// Draw attaches a new line or replaces an attached line's geometry, style
// and visibility, then rebuilds its markers. A failed build leaves the line
// without markers and is not returned; see Instance.Err.
func (m *Manager) Draw(p Drawn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if p.ID == "" {
		return errors.New("line id is required")
	}

	inst, ok := m.lines.Get(p.ID)
	if !ok {
		opts := m.defaults
		if p.Options != nil {
			opts = *p.Options
		}
		seq, err := animation.NewSequencer(p.ID,
			animation.WithFader(m.fader),
			animation.WithFadeOut(m.fadeOut),
			animation.WithLogger(m.logger),
		)
		if err != nil {
			return err
		}
		inst = &Instance{mu: &m.mu, id: p.ID, options: opts.Clone(), seq: seq, pending: true}
		m.lines.Set(p.ID, inst)
	} else if p.Options != nil {
		inst.options = p.Options.Clone()
		inst.pending = true
	}

	inst.geometry = p.Geometry
	inst.style = p.Style
	inst.hidden = p.Hidden
	m.rebuild(inst)
	return nil
}

// Remove stops a line's animation and deletes it with its markers.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inst, ok := m.lines.Delete(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLine, id)
	}
	inst.seq.Stop()
	m.surface.DeleteLine(id)
	return nil
}

// Line returns an attached line.
func (m *Manager) Line(id string) (*Instance, bool) {
	return m.lines.Get(id)
}

// Lines returns the attached lines in attachment order.
func (m *Manager) Lines() []*Instance {
	return m.lines.Values()
}

// SetGeometry replaces a line's geometry and rebuilds it.
func (m *Manager) SetGeometry(id string, g core.LineGeometry) error {
	return m.update(id, func(inst *Instance) { inst.geometry = g })
}

// SetHidden shows or hides a line and its markers.
func (m *Manager) SetHidden(id string, hidden bool) error {
	return m.update(id, func(inst *Instance) { inst.hidden = hidden })
}

// SetViewport moves the view and rebuilds every line. Each line is built
// from its own state only.
func (m *Manager) SetViewport(vp core.Viewport) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.surface.SetViewport(vp)
	for _, inst := range m.lines.Values() {
		m.rebuild(inst)
	}
}

// SetOptions replaces all of a line's options.
func (m *Manager) SetOptions(id string, o Options) error {
	return m.update(id, func(inst *Instance) {
		inst.options = o.Clone()
		inst.pending = true
	})
}

// SetDirectionSymbol changes the symbol repeated along the line.
func (m *Manager) SetDirectionSymbol(id string, spec core.SymbolSpec) error {
	return m.update(id, func(inst *Instance) { inst.options.Markers.Direction = spec.Clone() })
}

// SetStartSymbol changes the symbol on the first vertex.
func (m *Manager) SetStartSymbol(id string, spec core.SymbolSpec) error {
	return m.update(id, func(inst *Instance) { inst.options.Markers.Start = spec.Clone() })
}

// SetEndSymbol changes the symbol on the last vertex.
func (m *Manager) SetEndSymbol(id string, spec core.SymbolSpec) error {
	return m.update(id, func(inst *Instance) { inst.options.Markers.End = spec.Clone() })
}

// ShowDirection toggles the direction symbols.
func (m *Manager) ShowDirection(id string, show bool) error {
	return m.update(id, func(inst *Instance) { inst.options.Markers.ShowDirection = show })
}

// ShowStart toggles the start symbol.
func (m *Manager) ShowStart(id string, show bool) error {
	return m.update(id, func(inst *Instance) { inst.options.Markers.ShowStart = show })
}

// ShowEnd toggles the end symbol.
func (m *Manager) ShowEnd(id string, show bool) error {
	return m.update(id, func(inst *Instance) { inst.options.Markers.ShowEnd = show })
}

// SetSpacing changes the minimum gap between direction symbols.
func (m *Manager) SetSpacing(id string, s core.SpacingConfig) error {
	return m.update(id, func(inst *Instance) { inst.options.Markers.Spacing = s })
}

// AnimateDirection animates every line. A non-positive duration keeps each
// line's own. A repeat below 1 other than animation.Infinite stops instead.
func (m *Manager) AnimateDirection(repeat int, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, inst := range m.lines.Values() {
		if repeat < 1 && repeat != animation.Infinite {
			m.stop(inst)
			continue
		}
		m.animate(inst, repeat, duration)
	}
}

// AnimateLine animates one line.
func (m *Manager) AnimateLine(id string, repeat int, duration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inst, ok := m.lines.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLine, id)
	}
	if repeat < 1 && repeat != animation.Infinite {
		m.stop(inst)
		return nil
	}
	m.animate(inst, repeat, duration)
	return nil
}

// StopAnimation stops every line's animation and shows every symbol on the
// surface.
func (m *Manager) StopAnimation() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, inst := range m.lines.Values() {
		m.stop(inst)
	}
	for _, mk := range m.surface.Query(core.SymbolClass) {
		mk.SetOpacity(1)
	}
}

// Wait blocks until no line is animating or ctx is done.
func (m *Manager) Wait(ctx context.Context) error {
	for _, inst := range m.lines.Values() {
		if err := inst.seq.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) animate(inst *Instance, repeat int, duration time.Duration) {
	inst.options.Repeat = repeat
	if duration > 0 {
		inst.options.Duration = duration
	}
	m.setAnimatedStyle(inst, true)
	inst.seq.Start(inst.markers, repeat, inst.options.Duration)
	inst.pending = inst.seq.State() != animation.Running
}

func (m *Manager) stop(inst *Instance) {
	inst.options.Repeat = 0
	inst.pending = false
	m.setAnimatedStyle(inst, false)
	inst.seq.Stop()
}

func (m *Manager) setAnimatedStyle(inst *Instance, animated bool) {
	if inst.style.Animated == animated {
		return
	}
	inst.style.Animated = animated
	m.surface.SetLine(inst.id, inst.geometry, inst.style, inst.hidden)
}

func (m *Manager) update(id string, fn func(inst *Instance)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	inst, ok := m.lines.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLine, id)
	}
	fn(inst)
	m.rebuild(inst)
	return nil
}

// rebuild replaces inst's marker set. A pending animation starts with its
// configured repeat. A running one carries on over the new markers with the
// repeats it had left, and a finished one is not replayed. The previous chain
// is always cancelled first.
func (m *Manager) rebuild(inst *Instance) {
	if !inst.pending {
		inst.options.Repeat = 0
		if inst.seq.State() == animation.Running {
			inst.options.Repeat = inst.seq.Remaining()
		}
	}
	inst.seq.Stop()

	animated := inst.options.animated()
	inst.style.Animated = animated
	m.surface.SetLine(inst.id, inst.geometry, inst.style, inst.hidden)

	vp := m.surface.Viewport()
	markers, err := m.builder.Build(markerset.Line{
		ID:       inst.id,
		Geometry: inst.geometry,
		Viewport: vp,
		Hidden:   inst.hidden,
		Options:  inst.options.Markers,
	}, m.surface)
	inst.markers = markers
	inst.lastErr = err

	inst.pending = false
	if animated {
		if err == nil {
			inst.seq.Start(markers, inst.options.Repeat, inst.options.Duration)
		}
		inst.pending = inst.seq.State() != animation.Running
	}

	m.record(inst, vp, markers, err)
}

func (m *Manager) record(inst *Instance, vp core.Viewport, markers []*core.MarkerInstance, buildErr error) {
	if m.recorder == nil {
		return
	}
	snap := &core.BuildSnapshot{
		LineID:   inst.id,
		BuiltAt:  time.Now().UTC(),
		Viewport: vp,
		Markers:  markers,
	}
	if buildErr != nil {
		snap.Error = buildErr.Error()
	}
	if err := m.recorder.RecordBuild(snap); err != nil {
		ctx := logging.WithLine(context.Background(), inst.id)
		m.logger.WarnContext(ctx, "Failed to record build snapshot", "error", err)
	}
}
