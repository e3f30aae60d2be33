// Package telemetry exposes simulator health as OpenTelemetry metrics. The
// instruments come from the global meter provider and stay no-ops until the
// host process registers one.
package telemetry

import (
	"context"
	"fmt"
	"sync"

	"github.com/Garsondee/Drone-Fleet/internal/fleet"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/Garsondee/Drone-Fleet"

// Metrics records tick cost, step count, airborne drones and collisions.
type Metrics struct {
	tickCost   metric.Float64Histogram
	steps      metric.Int64ObservableGauge
	airborne   metric.Int64ObservableGauge
	collisions metric.Int64Counter

	mu   sync.RWMutex
	last fleet.TickReport
	hits int64
}

// New uses the global meter provider.
func New() (*Metrics, error) {
	return NewWithMeter(otel.Meter(instrumentationName))
}

func NewWithMeter(m metric.Meter) (*Metrics, error) {
	t := &Metrics{}
	var err error

	t.tickCost, err = m.Float64Histogram(
		"fleet.tick.cost",
		metric.WithDescription("Compute time of one simulator tick"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating tick cost histogram: %w", err)
	}

	t.steps, err = m.Int64ObservableGauge(
		"fleet.tick.steps",
		metric.WithDescription("Sub-steps the next tick will run"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating steps gauge: %w", err)
	}

	t.airborne, err = m.Int64ObservableGauge(
		"fleet.drones.airborne",
		metric.WithDescription("Drones not landed after the last tick"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating airborne gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			t.mu.RLock()
			defer t.mu.RUnlock()
			o.ObserveInt64(t.steps, int64(t.last.NextSteps))
			o.ObserveInt64(t.airborne, int64(t.last.Airborne))
			return nil
		},
		t.steps, t.airborne,
	)
	if err != nil {
		return nil, fmt.Errorf("registering gauge callback: %w", err)
	}

	t.collisions, err = m.Int64Counter(
		"fleet.collisions",
		metric.WithDescription("Drones entering another drone's collision threshold"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating collision counter: %w", err)
	}

	return t, nil
}

// ObserveTick records one tick report.
func (t *Metrics) ObserveTick(r fleet.TickReport) {
	t.tickCost.Record(context.Background(), float64(r.Cost.Microseconds())/1000)
	t.mu.Lock()
	t.last = r
	t.mu.Unlock()
}

// Record implements fleet.EventSink; only collision begins are counted.
func (t *Metrics) Record(e fleet.FlightEvent) {
	if e.Category != fleet.CatCollision || e.Key != fleet.KeyBegin {
		return
	}
	t.collisions.Add(context.Background(), 1, metric.WithAttributes(attribute.String("drone", e.Drone)))
	t.mu.Lock()
	t.hits++
	t.mu.Unlock()
}

// Last returns the most recent tick report and the collision count so far.
func (t *Metrics) Last() (fleet.TickReport, int64) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last, t.hits
}
