package scenario

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/rasim/simcore/internal/scenario"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
