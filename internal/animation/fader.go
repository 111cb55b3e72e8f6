package animation

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/OCAP2/dirline/internal/model/core"
)

// ErrPlayRejected is returned by a Fader that refuses to animate a marker.
var ErrPlayRejected = errors.New("animation rejected")

// DefaultFrame is the opacity update interval of TimerFader.
const DefaultFrame = 16 * time.Millisecond

// CancelFunc stops a running fade. Calling it after the fade finished is a
// no-op.
type CancelFunc func()

// Fader moves a marker's opacity to a target over a duration.
//
// done, when not nil, is called once the target is reached. Implementations
// must not call done before Fade returns.
type Fader interface {
	Fade(m *core.MarkerInstance, to float64, d time.Duration, done func()) (CancelFunc, error)
}

// TimerFader interpolates opacity on time.AfterFunc ticks.
type TimerFader struct {
	Frame time.Duration
}

// Fade implements Fader. Hidden markers keep the timing of the fade but
// their opacity is left alone.
func (f TimerFader) Fade(m *core.MarkerInstance, to float64, d time.Duration, done func()) (CancelFunc, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil marker", ErrPlayRejected)
	}
	set := func(o float64) {
		if !m.Hidden {
			m.SetOpacity(o)
		}
	}

	frame := f.Frame
	if frame <= 0 {
		frame = DefaultFrame
	}

	var (
		mu      sync.Mutex
		timer   *time.Timer
		stopped bool
	)
	from := m.Opacity()
	began := time.Now()

	var tick func()
	tick = func() {
		mu.Lock()
		if stopped {
			mu.Unlock()
			return
		}
		elapsed := time.Since(began)
		if elapsed >= d {
			set(to)
			stopped = true
			mu.Unlock()
			if done != nil {
				done()
			}
			return
		}
		set(from + (to-from)*float64(elapsed)/float64(d))
		timer = time.AfterFunc(min(frame, d-elapsed), tick)
		mu.Unlock()
	}

	mu.Lock()
	timer = time.AfterFunc(min(frame, max(d, 0)), tick)
	mu.Unlock()

	return func() {
		mu.Lock()
		defer mu.Unlock()
		stopped = true
		timer.Stop()
	}, nil
}
