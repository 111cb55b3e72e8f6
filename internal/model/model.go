package model

import (
	"time"

	"github.com/OCAP2/dirline/internal/model/core"
	"gorm.io/datatypes"
)

// DatabaseModels is the list of tables created by the snapshot stores.
var DatabaseModels = []interface{}{
	&BuildRecord{},
}

////////////////////////
// SNAPSHOT MODELS
////////////////////////

// BuildRecord is one stored marker set build.
type BuildRecord struct {
	ID          uint                              `json:"id" gorm:"primarykey"`
	CreatedAt   time.Time                         `json:"createdAt"`
	LineID      string                            `json:"lineId" gorm:"size:127;index:idx_build_line_id"`
	BuiltAt     time.Time                         `json:"builtAt" gorm:"index:idx_build_time"`
	SRID        int                               `json:"srid"`
	ExtentWKT   string                            `json:"extentWkt" gorm:"size:512"`
	Viewport    datatypes.JSONType[core.Viewport] `json:"viewport"`
	MarkerCount int                               `json:"markerCount"`
	Markers     datatypes.JSON                    `json:"markers"`
	Error       string                            `json:"error,omitempty" gorm:"size:2000"`
}

func (*BuildRecord) TableName() string {
	return "build_records"
}

////////////////////////
// EXPORT SHAPES
////////////////////////

// MarkerJSON is the stored form of a placed marker, opacity included.
type MarkerJSON struct {
	Ordinal int                    `json:"ordinal"`
	Role    core.MarkerRole        `json:"role"`
	Screen  core.Point2D           `json:"screen"`
	Map     core.Point2D           `json:"map"`
	Marker  *core.MarkerDescriptor `json:"marker"`
	Opacity float64                `json:"opacity"`
	Hidden  bool                   `json:"hidden,omitempty"`
}
