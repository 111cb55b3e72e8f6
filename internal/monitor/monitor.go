package monitor

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/OCAP2/dirline/internal/animation"
	"github.com/OCAP2/dirline/internal/line"
)

// DefaultInterval is how often the status file is rewritten.
const DefaultInterval = time.Second

// LineSource lists the lines to report on. *line.Manager satisfies it.
type LineSource interface {
	Lines() []*line.Instance
}

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	Lines      LineSource
	Logger     *slog.Logger
	StatusFile string // rewritten every tick, empty disables the file
	Interval   time.Duration
}

// LineStatus is the reported state of one line.
type LineStatus struct {
	ID        string `json:"id"`
	Hidden    bool   `json:"hidden,omitempty"`
	Markers   int    `json:"markers"`
	Animation string `json:"animation"`
	Remaining int    `json:"remaining"`
	Error     string `json:"error,omitempty"`
}

// Status is one snapshot of every line.
type Status struct {
	Time      time.Time    `json:"time"`
	Lines     []LineStatus `json:"lines"`
	Animating int          `json:"animating"`
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	done      chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Interval <= 0 {
		deps.Interval = DefaultInterval
	}
	return &Service{deps: deps}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetStatus returns the current state of every line
func (s *Service) GetStatus() Status {
	st := Status{Time: time.Now().UTC(), Lines: []LineStatus{}}
	if s.deps.Lines == nil {
		return st
	}
	for _, inst := range s.deps.Lines.Lines() {
		state := inst.AnimationState()
		ls := LineStatus{
			ID:        inst.ID(),
			Hidden:    inst.Hidden(),
			Markers:   len(inst.Markers()),
			Animation: state.String(),
			Remaining: inst.Remaining(),
		}
		if err := inst.Err(); err != nil {
			ls.Error = err.Error()
		}
		if state == animation.Running {
			st.Animating++
		}
		st.Lines = append(st.Lines, ls)
	}
	return st
}

// WriteStatus writes the current status to the status file.
func (s *Service) WriteStatus() error {
	if s.deps.StatusFile == "" {
		return nil
	}
	data, err := json.MarshalIndent(s.GetStatus(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding status: %w", err)
	}
	tmp := s.deps.StatusFile + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing status file: %w", err)
	}
	return os.Rename(tmp, s.deps.StatusFile)
}

// Start starts the status monitor goroutine
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stopChan, s.done
	s.mu.Unlock()

	go func() {
		defer close(done)

		logger := s.deps.Logger
		logger.Debug("Starting status monitor", "interval", s.deps.Interval)

		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				st := s.GetStatus()
				for _, ls := range st.Lines {
					if ls.Animation == "running" {
						logger.Info("Animating", "line", ls.ID, "remaining", ls.Remaining, "markers", ls.Markers)
					}
				}
				if err := s.WriteStatus(); err != nil {
					logger.Error("Error writing status file", "error", err)
				}
			}
		}
	}()

	return nil
}

// Stop stops the status monitor, writes a final status and waits for the
// goroutine to exit
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	close(s.stopChan)
	done := s.done
	s.mu.Unlock()

	<-done
	if err := s.WriteStatus(); err != nil {
		s.deps.Logger.Error("Error writing status file", "error", err)
	}
}
