package main

import (
	"fmt"

	"github.com/OCAP2/dirline/internal/config"
	"github.com/OCAP2/dirline/internal/dispatcher"
	"github.com/OCAP2/dirline/internal/line"
	"github.com/OCAP2/dirline/internal/model/core"
	"github.com/OCAP2/dirline/internal/storage"
)

// EventSnapshotRecorded carries a *core.BuildSnapshot to the snapshot store.
const EventSnapshotRecorded = "snapshot.recorded"

// snapshotQueueSize bounds the snapshots waiting for the store. Builds block
// when it is full rather than lose snapshots.
const snapshotQueueSize = 256

func initStorage() error {
	Logger.Debug("Initializing snapshot store")

	storageCfg := config.GetStorageConfig()

	backend, err := storage.NewBackend(storageCfg, Logger)
	if err != nil {
		Logger.Error("Failed to create snapshot store", "error", err)
		return err
	}
	if err := backend.Init(); err != nil {
		Logger.Error("Failed to initialize snapshot store", "error", err)
		return err
	}
	storageBackend = backend

	eventDispatcher.Register(EventSnapshotRecorded, func(e dispatcher.Event) (any, error) {
		s, ok := e.Payload.(*core.BuildSnapshot)
		if !ok {
			return nil, fmt.Errorf("%s: unexpected payload %T", e.Command, e.Payload)
		}
		return len(s.Markers), backend.RecordBuild(s)
	}, dispatcher.Buffered(snapshotQueueSize), dispatcher.Blocking(), dispatcher.Logged())

	Logger.Info("Snapshot store initialized", "type", storageCfg.Type)
	return nil
}

// snapshotRecorder forwards build snapshots through the dispatcher. Without
// a store registered snapshots are dropped.
func snapshotRecorder(d *dispatcher.Dispatcher) line.Recorder {
	return line.RecorderFunc(func(s *core.BuildSnapshot) error {
		if !d.HasHandler(EventSnapshotRecorded) {
			return nil
		}
		_, err := d.Dispatch(dispatcher.Event{
			Command: EventSnapshotRecorded,
			Payload: s,
		})
		return err
	})
}
