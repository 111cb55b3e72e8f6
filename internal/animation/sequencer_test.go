package animation

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/OCAP2/dirline/internal/model/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fadeCall struct {
	ordinal int
	to      float64
	d       time.Duration
}

// fakeFader queues completions so tests advance the chain by hand.
type fakeFader struct {
	mu           sync.Mutex
	calls        []fadeCall
	pending      []*fakeFade
	reject       func(m *core.MarkerInstance, to float64) bool
	ignoreCancel bool
}

type fakeFade struct {
	m         *core.MarkerInstance
	to        float64
	done      func()
	cancelled bool
}

func (f *fakeFader) Fade(m *core.MarkerInstance, to float64, d time.Duration, done func()) (CancelFunc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, fadeCall{ordinal: m.Ordinal, to: to, d: d})
	if f.reject != nil && f.reject(m, to) {
		return nil, fmt.Errorf("%w: test", ErrPlayRejected)
	}
	fade := &fakeFade{m: m, to: to, done: done}
	f.pending = append(f.pending, fade)
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if !f.ignoreCancel {
			fade.cancelled = true
		}
	}, nil
}

// step completes the oldest queued fade. It reports false when nothing is queued.
func (f *fakeFader) step() bool {
	f.mu.Lock()
	if len(f.pending) == 0 {
		f.mu.Unlock()
		return false
	}
	fade := f.pending[0]
	f.pending = f.pending[1:]
	cancelled := fade.cancelled
	f.mu.Unlock()

	if cancelled {
		return true
	}
	fade.m.SetOpacity(fade.to)
	if fade.done != nil {
		fade.done()
	}
	return true
}

// drain steps until the queue is empty or limit steps ran.
func (f *fakeFader) drain(limit int) int {
	n := 0
	for n < limit && f.step() {
		n++
	}
	return n
}

func (f *fakeFader) fadeIns() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []int
	for _, c := range f.calls {
		if c.to == 1 {
			out = append(out, c.ordinal)
		}
	}
	return out
}

func (f *fakeFader) fadeOuts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.to == 0 {
			n++
		}
	}
	return n
}

func testMarkers(n int) []*core.MarkerInstance {
	out := make([]*core.MarkerInstance, n)
	for i := range out {
		out[i] = core.NewMarkerInstance("line", core.RoleDirection, core.Point2D{X: float64(i)}, core.Point2D{}, &core.MarkerDescriptor{})
		out[i].Ordinal = i
	}
	return out
}

func newTestSequencer(t *testing.T) (*Sequencer, *fakeFader) {
	t.Helper()
	f := &fakeFader{}
	s, err := NewSequencer("line", WithFader(f))
	require.NoError(t, err)
	return s, f
}

func TestSequencer_RunsOnceAndGoesIdle(t *testing.T) {
	s, f := newTestSequencer(t)
	markers := testMarkers(3)

	s.Start(markers, 1, 100*time.Millisecond)
	assert.Equal(t, Running, s.State())
	assert.Equal(t, 1, s.Remaining())

	assert.Equal(t, 6, f.drain(100))
	assert.Equal(t, Idle, s.State())
	assert.Equal(t, 0, s.Remaining())
	assert.Equal(t, []int{0, 1, 2}, f.fadeIns())
	assert.Equal(t, 3, f.fadeOuts())
	for _, m := range markers {
		assert.Equal(t, 1.0, m.Opacity())
	}

	select {
	case <-s.Done():
	default:
		t.Fatal("Done not closed after the last cycle")
	}
}

func TestSequencer_FadeOutThenSequentialFadeIn(t *testing.T) {
	s, f := newTestSequencer(t)
	markers := testMarkers(3)

	s.Start(markers, 1, 100*time.Millisecond)

	// all fade-outs are queued before any fade-in
	f.mu.Lock()
	require.Len(t, f.calls, 3)
	for _, c := range f.calls {
		assert.Equal(t, 0.0, c.to)
		assert.Equal(t, DefaultFadeOut, c.d)
	}
	f.mu.Unlock()

	for range 3 {
		require.True(t, f.step())
	}
	for _, m := range markers {
		assert.Equal(t, 0.0, m.Opacity())
	}

	require.True(t, f.step())
	assert.Equal(t, 1.0, markers[0].Opacity())
	assert.Equal(t, 0.0, markers[1].Opacity())
	assert.Equal(t, 0.0, markers[2].Opacity())

	f.mu.Lock()
	last := f.calls[len(f.calls)-1]
	f.mu.Unlock()
	assert.Equal(t, fadeCall{ordinal: 1, to: 1, d: 100 * time.Millisecond}, last)
}

func TestSequencer_FiniteRepeat(t *testing.T) {
	s, f := newTestSequencer(t)

	s.Start(testMarkers(2), 3, time.Millisecond)
	f.drain(1000)

	assert.Equal(t, Idle, s.State())
	assert.Equal(t, []int{0, 1, 0, 1, 0, 1}, f.fadeIns())
	assert.Equal(t, 6, f.fadeOuts())
}

func TestSequencer_RemainingCountsDown(t *testing.T) {
	s, f := newTestSequencer(t)

	s.Start(testMarkers(1), 3, time.Millisecond)
	assert.Equal(t, 3, s.Remaining())

	// fade-out plus fade-in completes one cycle
	f.step()
	f.step()
	assert.Equal(t, 2, s.Remaining())
	f.step()
	f.step()
	assert.Equal(t, 1, s.Remaining())
	f.step()
	f.step()
	assert.Equal(t, 0, s.Remaining())
	assert.Equal(t, Idle, s.State())
}

func TestSequencer_InfiniteUntilStopped(t *testing.T) {
	s, f := newTestSequencer(t)
	markers := testMarkers(2)

	s.Start(markers, Infinite, time.Millisecond)
	assert.Equal(t, 200, f.drain(200))
	assert.Equal(t, Running, s.State())
	assert.Equal(t, Infinite, s.Remaining())

	// leave a fade-in half way through the chain
	f.step()
	f.step()
	f.step()

	s.Stop()
	assert.Equal(t, Idle, s.State())
	assert.Equal(t, 0, s.Remaining())
	for _, m := range markers {
		assert.Equal(t, 1.0, m.Opacity())
	}

	before := len(f.fadeIns())
	f.drain(100)
	assert.Equal(t, before, len(f.fadeIns()), "no fades after stop")
}

func TestSequencer_StopWhenIdle(t *testing.T) {
	s, _ := newTestSequencer(t)

	assert.NotPanics(t, func() {
		s.Stop()
		s.Stop()
	})
	assert.Equal(t, Idle, s.State())
	assert.Equal(t, 0, s.Remaining())
}

func TestSequencer_RepeatBelowOneOnlyStops(t *testing.T) {
	s, f := newTestSequencer(t)
	markers := testMarkers(2)

	s.Start(markers, Infinite, time.Millisecond)
	f.step()
	require.Equal(t, 0.0, markers[0].Opacity())

	s.Start(markers, 0, time.Millisecond)
	assert.Equal(t, Idle, s.State())
	assert.Equal(t, 1.0, markers[0].Opacity())

	s.Start(markers, -3, time.Millisecond)
	assert.Equal(t, Idle, s.State())
}

func TestSequencer_EmptyMarkerSet(t *testing.T) {
	s, f := newTestSequencer(t)

	s.Start(nil, 5, time.Millisecond)
	assert.Equal(t, Idle, s.State())
	assert.Zero(t, f.drain(10))
}

func TestSequencer_RestartCancelsPreviousChain(t *testing.T) {
	s, f := newTestSequencer(t)
	f.ignoreCancel = true

	first := testMarkers(2)
	second := testMarkers(3)

	s.Start(first, 1, time.Millisecond)
	f.step()
	f.step()
	s.Start(second, 1, time.Millisecond)

	f.drain(100)
	assert.Equal(t, Idle, s.State())
	// the first chain's fade-in of marker 0 was queued before the restart and
	// its completion must not advance the new chain
	assert.Equal(t, []int{0, 0, 1, 2}, f.fadeIns())
	for _, m := range first {
		assert.Equal(t, 1.0, m.Opacity())
	}
}

func TestSequencer_PlayRejectionLeavesStaticMarkers(t *testing.T) {
	s, f := newTestSequencer(t)
	markers := testMarkers(3)
	f.reject = func(m *core.MarkerInstance, to float64) bool { return to == 1 && m.Ordinal == 1 }

	s.Start(markers, Infinite, time.Millisecond)
	f.drain(100)

	assert.Equal(t, Idle, s.State())
	assert.Equal(t, 0, s.Remaining())
	for _, m := range markers {
		assert.Equal(t, 1.0, m.Opacity())
	}

	f.reject = nil
	s.Start(markers, 1, time.Millisecond)
	assert.Equal(t, Running, s.State())
	f.drain(100)
	assert.Equal(t, Idle, s.State())
}

func TestSequencer_RejectedFadeOut(t *testing.T) {
	s, f := newTestSequencer(t)
	f.reject = func(m *core.MarkerInstance, to float64) bool { return to == 0 && m.Ordinal == 2 }

	s.Start(testMarkers(3), 1, time.Millisecond)
	assert.Equal(t, Idle, s.State())
	assert.Empty(t, f.fadeIns())
}

func TestSequencer_WaitReturnsOnStop(t *testing.T) {
	s, _ := newTestSequencer(t)
	s.Start(testMarkers(2), Infinite, time.Millisecond)

	go s.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Wait(ctx))
}

func TestSequencer_WaitHonoursContext(t *testing.T) {
	s, _ := newTestSequencer(t)
	s.Start(testMarkers(2), Infinite, time.Millisecond)
	t.Cleanup(s.Stop)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Wait(ctx), context.Canceled)
}

func TestSequencer_DefaultStepDuration(t *testing.T) {
	s, f := newTestSequencer(t)
	s.Start(testMarkers(1), 1, 0)
	f.step()

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Equal(t, DefaultStepDuration, f.calls[len(f.calls)-1].d)
}

func TestSequencer_WithFadeOut(t *testing.T) {
	f := &fakeFader{}
	s, err := NewSequencer("line", WithFader(f), WithFadeOut(25*time.Millisecond))
	require.NoError(t, err)

	s.Start(testMarkers(1), 1, time.Millisecond)
	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Equal(t, 25*time.Millisecond, f.calls[0].d)
}

func TestParseRepeat(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"  ", 0},
		{"1", 1},
		{"3", 3},
		{" 7 ", 7},
		{"0", 0},
		{"-2", -2},
		{"2.9", 2},
		{"Infinity", Infinite},
		{"forever", Infinite},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRepeat(tt.in))
		})
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "State(9)", State(9).String())
}
