package dispatcher

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/rasim/simcore/internal/dispatcher"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// instrument creates the command counters and the per-command queue gauge on m. Without a
// configured meter provider every instrument is a no-op.
func (d *Dispatcher) instrument(m metric.Meter) error {
	var err error

	d.queueSize, err = m.Int64ObservableGauge(
		"dispatcher.queue.size",
		metric.WithDescription("Commands waiting in a buffered handler's queue"),
	)
	if err != nil {
		return fmt.Errorf("creating queue size gauge: %w", err)
	}
	_, err = m.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		d.mu.RLock()
		defer d.mu.RUnlock()
		for cmd, buf := range d.buffers {
			o.ObserveInt64(d.queueSize, int64(len(buf)), metric.WithAttributes(attribute.String("command", cmd)))
		}
		return nil
	}, d.queueSize)
	if err != nil {
		return fmt.Errorf("registering queue callback: %w", err)
	}

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&d.processed, "dispatcher.commands.processed", "Engine commands handled"},
		{&d.failed, "dispatcher.commands.failed", "Engine commands whose handler returned an error"},
		{&d.dropped, "dispatcher.commands.dropped", "Engine commands dropped on a full queue"},
	}
	for _, c := range counters {
		if *c.dst, err = m.Int64Counter(c.name, metric.WithDescription(c.desc)); err != nil {
			return fmt.Errorf("creating %s counter: %w", c.name, err)
		}
	}
	return nil
}
