package dispatcher

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// testLogger implements Logger for testing
type testLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *testLogger) Debug(msg string, keysAndValues ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("DEBUG: %s %v", msg, keysAndValues))
}

func (l *testLogger) Info(msg string, keysAndValues ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("INFO: %s %v", msg, keysAndValues))
}

func (l *testLogger) Error(msg string, keysAndValues ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("ERROR: %s %v", msg, keysAndValues))
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *testLogger) {
	logger := &testLogger{}

	d, err := New(logger)
	if err != nil {
		t.Fatalf("failed to create dispatcher: %v", err)
	}

	return d, logger
}

func TestDispatcher_SyncHandler(t *testing.T) {
	d, _ := newTestDispatcher(t)

	called := false
	d.Register("line.drawn", func(e Event) (any, error) {
		called = true
		return "result", nil
	})

	result, err := d.Dispatch(Event{Command: "line.drawn", Payload: "route-1"})

	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !called {
		t.Error("handler was not called")
	}
	if result != "result" {
		t.Errorf("expected 'result', got %v", result)
	}
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	d, _ := newTestDispatcher(t)

	_, err := d.Dispatch(Event{Command: "line.unknown"})

	if err == nil {
		t.Error("expected error for unknown command")
	}
}

func TestDispatcher_BufferedHandler(t *testing.T) {
	d, _ := newTestDispatcher(t)

	var processed atomic.Int32
	var wg sync.WaitGroup
	wg.Add(3)

	d.Register("snapshot.record", func(e Event) (any, error) {
		processed.Add(1)
		wg.Done()
		return nil, nil
	}, Buffered(100))

	// Dispatch 3 events
	for i := 0; i < 3; i++ {
		result, err := d.Dispatch(Event{Command: "snapshot.record"})
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if result != "queued" {
			t.Errorf("expected 'queued', got %v", result)
		}
	}

	// Wait for processing
	wg.Wait()

	if processed.Load() != 3 {
		t.Errorf("expected 3 processed, got %d", processed.Load())
	}
}

func TestDispatcher_BufferedDropsWhenFull(t *testing.T) {
	d, _ := newTestDispatcher(t)

	// Block the handler so queue fills up
	block := make(chan struct{})
	d.Register("snapshot.full", func(e Event) (any, error) {
		<-block
		return nil, nil
	}, Buffered(2))

	// Fill the queue (2 items) + 1 being processed
	d.Dispatch(Event{Command: "snapshot.full"}) // being processed
	d.Dispatch(Event{Command: "snapshot.full"}) // queued
	d.Dispatch(Event{Command: "snapshot.full"}) // queued

	// This should be dropped
	_, err := d.Dispatch(Event{Command: "snapshot.full"})

	if err == nil {
		t.Error("expected error when queue is full")
	}

	close(block)
}

func TestDispatcher_BufferedBlocking(t *testing.T) {
	d, _ := newTestDispatcher(t)

	block := make(chan struct{})
	d.Register("snapshot.blocking", func(e Event) (any, error) {
		<-block
		return nil, nil
	}, Buffered(1), Blocking())

	// First event starts processing
	d.Dispatch(Event{Command: "snapshot.blocking"})
	// Second event fills the queue
	d.Dispatch(Event{Command: "snapshot.blocking"})

	// Third event should block (test with timeout)
	done := make(chan struct{})
	go func() {
		d.Dispatch(Event{Command: "snapshot.blocking"})
		close(done)
	}()

	select {
	case <-done:
		t.Error("dispatch should have blocked")
	case <-time.After(50 * time.Millisecond):
		// Expected - dispatch is blocking
	}

	close(block)
}

func TestDispatcher_LoggedHandler(t *testing.T) {
	d, logger := newTestDispatcher(t)

	d.Register("viewport.changed", func(e Event) (any, error) {
		return "ok", nil
	}, Logged())

	d.Dispatch(Event{Command: "viewport.changed", Payload: 3})

	// Give time for logging
	time.Sleep(10 * time.Millisecond)

	logger.mu.Lock()
	defer logger.mu.Unlock()

	if len(logger.messages) < 2 {
		t.Errorf("expected at least 2 log messages, got %d", len(logger.messages))
	}
}

func TestDispatcher_LoggedHandlerError(t *testing.T) {
	d, logger := newTestDispatcher(t)

	d.Register("line.removed", func(e Event) (any, error) {
		return nil, fmt.Errorf("test error")
	}, Logged())

	d.Dispatch(Event{Command: "line.removed"})

	logger.mu.Lock()
	defer logger.mu.Unlock()

	hasError := false
	for _, msg := range logger.messages {
		if len(msg) >= 5 && msg[:5] == "ERROR" {
			hasError = true
			break
		}
	}

	if !hasError {
		t.Error("expected error log message")
	}
}

func TestDispatcher_HasHandler(t *testing.T) {
	d, _ := newTestDispatcher(t)

	d.Register("line.drawn", func(e Event) (any, error) { return nil, nil })

	if !d.HasHandler("line.drawn") {
		t.Error("expected handler to exist")
	}

	if d.HasHandler("line.missing") {
		t.Error("expected handler to not exist")
	}
}

func TestDispatcher_CombinedOptions(t *testing.T) {
	d, logger := newTestDispatcher(t)

	var processed atomic.Int32
	var wg sync.WaitGroup
	wg.Add(1)

	d.Register("snapshot.combined", func(e Event) (any, error) {
		processed.Add(1)
		wg.Done()
		return "done", nil
	}, Buffered(100), Logged())

	result, err := d.Dispatch(Event{Command: "snapshot.combined"})

	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if result != "queued" {
		t.Errorf("expected 'queued', got %v", result)
	}

	wg.Wait()

	if processed.Load() != 1 {
		t.Errorf("expected 1 processed, got %d", processed.Load())
	}

	logger.mu.Lock()
	defer logger.mu.Unlock()

	if len(logger.messages) < 2 {
		t.Errorf("expected log messages, got %d", len(logger.messages))
	}
}

func TestDispatcher_PayloadAndTimestamp(t *testing.T) {
	d, _ := newTestDispatcher(t)

	var got Event
	d.Register("viewport.changed", func(e Event) (any, error) {
		got = e
		return nil, nil
	})

	type viewport struct{ w, h int }
	if _, err := d.Dispatch(Event{Command: "viewport.changed", Payload: viewport{200, 100}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Payload != (viewport{200, 100}) {
		t.Errorf("expected payload to reach handler, got %v", got.Payload)
	}
	if got.Timestamp.IsZero() {
		t.Error("expected dispatch to stamp the event")
	}
}

func TestDispatcher_Unregister(t *testing.T) {
	d, _ := newTestDispatcher(t)

	d.Register("line.drawn", func(e Event) (any, error) { return nil, nil })
	d.Unregister("line.drawn")

	if d.HasHandler("line.drawn") {
		t.Error("expected handler to be removed")
	}
	if _, err := d.Dispatch(Event{Command: "line.drawn"}); err == nil {
		t.Error("expected error after unregister")
	}

	// unknown commands are ignored
	d.Unregister("line.drawn")
}

func TestDispatcher_UnregisterBuffered(t *testing.T) {
	d, _ := newTestDispatcher(t)

	var processed atomic.Int32
	var wg sync.WaitGroup
	wg.Add(2)

	d.Register("snapshot.record", func(e Event) (any, error) {
		processed.Add(1)
		wg.Done()
		return nil, nil
	}, Buffered(10))

	send, ok := d.handlers["snapshot.record"]
	if !ok {
		t.Fatal("expected buffered handler")
	}

	d.Dispatch(Event{Command: "snapshot.record"})
	d.Dispatch(Event{Command: "snapshot.record"})
	d.Unregister("snapshot.record")

	wg.Wait()
	if processed.Load() != 2 {
		t.Errorf("expected queued events to drain, got %d", processed.Load())
	}

	// a handler grabbed before unregister must not panic on the closed queue
	if _, err := send(Event{Command: "snapshot.record"}); err == nil {
		t.Error("expected error from removed handler")
	}
}

func TestDispatcher_DrainWaitsForQueue(t *testing.T) {
	d, _ := newTestDispatcher(t)

	var processed atomic.Int32
	d.Register("snapshot.recorded", func(e Event) (any, error) {
		time.Sleep(time.Millisecond)
		processed.Add(1)
		return nil, nil
	}, Buffered(10), Blocking())

	for range 5 {
		if _, err := d.Dispatch(Event{Command: "snapshot.recorded"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := d.Drain(ctx, "snapshot.recorded"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if processed.Load() != 5 {
		t.Errorf("expected 5 processed after drain, got %d", processed.Load())
	}
	if d.HasHandler("snapshot.recorded") {
		t.Error("expected handler to be removed")
	}
}

func TestDispatcher_DrainTimeout(t *testing.T) {
	d, _ := newTestDispatcher(t)

	block := make(chan struct{})
	defer close(block)
	d.Register("snapshot.recorded", func(e Event) (any, error) {
		<-block
		return nil, nil
	}, Buffered(1))
	d.Dispatch(Event{Command: "snapshot.recorded"})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := d.Drain(ctx, "snapshot.recorded"); err == nil {
		t.Error("expected timeout error")
	}
}

func TestDispatcher_DrainUnbufferedAndUnknown(t *testing.T) {
	d, _ := newTestDispatcher(t)
	d.Register("line.drawn", func(e Event) (any, error) { return nil, nil })

	if err := d.Drain(context.Background(), "line.drawn"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if d.HasHandler("line.drawn") {
		t.Error("expected handler to be removed")
	}
	if err := d.Drain(context.Background(), "line.missing"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
