package team

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/rasim/simcore/internal/team"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
