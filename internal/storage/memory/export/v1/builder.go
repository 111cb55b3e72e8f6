package v1

import (
	"time"

	"github.com/OCAP2/dirline/internal/model/convert"
	"github.com/OCAP2/dirline/internal/model/core"
)

// LineRecord groups every build recorded for one line
type LineRecord struct {
	LineID string
	Builds []Build
}

// SessionData contains all the data needed to build an export
type SessionData struct {
	StartedAt time.Time
	Lines     []*LineRecord
}

// NewBuild captures a snapshot, marker opacities included.
func NewBuild(s *core.BuildSnapshot) Build {
	return Build{
		BuiltAt:  s.BuiltAt,
		Viewport: s.Viewport,
		Markers:  convert.MarkersToJSON(s.Markers),
		Error:    s.Error,
	}
}

// Build converts the session into the v1 export format
func Build(data *SessionData) Export {
	export := Export{
		Version:    Version,
		StartedAt:  data.StartedAt,
		ExportedAt: time.Now().UTC(),
		Lines:      make([]Line, 0, len(data.Lines)),
	}

	for _, record := range data.Lines {
		if record == nil {
			continue
		}
		line := Line{
			ID:     record.LineID,
			Builds: make([]Build, 0, len(record.Builds)),
		}
		for _, b := range record.Builds {
			if b.Error != "" {
				line.ErrorCount++
			}
			export.MarkerCount += len(b.Markers)
			line.Builds = append(line.Builds, b)
		}
		export.BuildCount += len(line.Builds)
		export.Lines = append(export.Lines, line)
	}

	return export
}
