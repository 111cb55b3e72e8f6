package markerset

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/OCAP2/dirline/internal/markerset"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
