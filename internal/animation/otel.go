package animation

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/OCAP2/dirline/internal/animation"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
