// Package animation plays an ordered fade-in reveal over a marker set.
package animation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/OCAP2/dirline/internal/model/core"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Infinite repeats the chain until Stop is called.
const Infinite = -1

// Defaults for the step timings.
const (
	DefaultStepDuration = 350 * time.Millisecond
	DefaultFadeOut      = 10 * time.Millisecond
)

// State of a Sequencer.
type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ParseRepeat reads a repeat count. Empty means no animation, an integer is
// taken as is (fractions truncate) and anything else repeats forever.
func ParseRepeat(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return int(f)
	}
	return Infinite
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithFader replaces the default TimerFader.
func WithFader(f Fader) Option {
	return func(s *Sequencer) {
		s.fader = f
	}
}

// WithFadeOut sets how long markers take to disappear at the start of a cycle.
func WithFadeOut(d time.Duration) Option {
	return func(s *Sequencer) {
		s.fadeOut = d
	}
}

// WithLogger sets the logger used for swallowed play failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Sequencer) {
		s.logger = l
	}
}

// Sequencer drives one line's fade chain. Each cycle fades every marker out
// and then fades them back in one after another in set order. At most one
// chain is live at a time.
type Sequencer struct {
	lineID  string
	fader   Fader
	fadeOut time.Duration
	logger  *slog.Logger
	cycles  metric.Int64Counter

	mu        sync.Mutex
	state     State
	markers   []*core.MarkerInstance
	remaining int
	step      time.Duration
	gen       uint64
	cancel    CancelFunc
	done      chan struct{}
}

// NewSequencer creates an idle Sequencer for the given line.
func NewSequencer(lineID string, opts ...Option) (*Sequencer, error) {
	s := &Sequencer{
		lineID:  lineID,
		fader:   TimerFader{},
		fadeOut: DefaultFadeOut,
		logger:  slog.Default(),
		done:    closedChan(),
	}
	for _, opt := range opts {
		opt(s)
	}

	var err error
	s.cycles, err = meter().Int64Counter(
		"dirline.animation.cycles",
		metric.WithDescription("Completed fade chain cycles"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating cycles counter: %w", err)
	}
	return s, nil
}

// Start cancels any running chain and plays a new one over markers. A repeat
// below 1 other than Infinite only stops. Non-positive step durations fall
// back to DefaultStepDuration.
func (s *Sequencer) Start(markers []*core.MarkerInstance, repeat int, step time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	if repeat < 1 && repeat != Infinite {
		return
	}
	if len(markers) == 0 {
		return
	}
	if step <= 0 {
		step = DefaultStepDuration
	}

	s.markers = append([]*core.MarkerInstance(nil), markers...)
	s.remaining = repeat
	s.step = step
	s.state = Running
	s.done = make(chan struct{})
	s.cycleLocked(s.gen)
}

// Stop cancels the chain, shows every marker fully and resets the repeat
// count. Safe to call at any time.
func (s *Sequencer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// State returns the current state.
func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Remaining returns the repeats left including the running cycle, or Infinite.
func (s *Sequencer) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

// Done returns a channel closed when the current chain ends for any reason.
// When idle the channel is already closed.
func (s *Sequencer) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Wait blocks until the current chain ends or ctx is done.
func (s *Sequencer) Wait(ctx context.Context) error {
	select {
	case <-s.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Sequencer) stopLocked() {
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	for _, m := range s.markers {
		m.SetOpacity(1)
	}
	s.remaining = 0
	s.finishLocked()
}

func (s *Sequencer) finishLocked() {
	s.state = Idle
	select {
	case <-s.done:
	default:
		close(s.done)
	}
}

func (s *Sequencer) cycleLocked(gen uint64) {
	pending := len(s.markers)
	cancels := make([]CancelFunc, 0, len(s.markers))
	s.cancel = func() {
		for _, c := range cancels {
			c()
		}
	}
	for _, m := range s.markers {
		c, err := s.fader.Fade(m, 0, s.fadeOut, func() { s.fadedOut(gen, &pending) })
		if err != nil {
			s.rejectLocked(err)
			return
		}
		cancels = append(cancels, c)
	}
}

// fadedOut starts the fade-in chain once every marker has disappeared.
// pending is guarded by s.mu.
func (s *Sequencer) fadedOut(gen uint64, pending *int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen || s.state != Running {
		return
	}
	*pending--
	if *pending > 0 {
		return
	}
	s.cancel = nil
	s.playLocked(gen, 0)
}

func (s *Sequencer) playLocked(gen uint64, i int) {
	cancel, err := s.fader.Fade(s.markers[i], 1, s.step, func() { s.advance(gen, i) })
	if err != nil {
		s.rejectLocked(err)
		return
	}
	s.cancel = cancel
}

// rejectLocked drops the chain after a play failure. The markers stay as a
// static, fully visible set.
func (s *Sequencer) rejectLocked(err error) {
	s.logger.Debug("Discarding marker animation", "line", s.lineID, "error", err)
	s.stopLocked()
}

func (s *Sequencer) advance(gen uint64, i int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen || s.state != Running {
		return
	}
	s.cancel = nil

	if i+1 < len(s.markers) {
		s.playLocked(gen, i+1)
		return
	}

	s.cycles.Add(context.Background(), 1, metric.WithAttributes(attribute.String("line", s.lineID)))

	switch {
	case s.remaining == Infinite:
		s.cycleLocked(gen)
	case s.remaining > 1:
		s.remaining--
		s.cycleLocked(gen)
	default:
		s.remaining = 0
		s.finishLocked()
	}
}

func closedChan() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}
