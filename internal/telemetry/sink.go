// Package telemetry mirrors committed readings to external systems.
package telemetry

import (
	"context"
	"errors"

	"temp_monitor/internal/models"
)

// Sink receives every batch after it has been written to the log.
type Sink interface {
	Publish(ctx context.Context, readings []models.Reading) error
	Close() error
}

// Fanout sends each batch to all sinks and joins their errors.
type Fanout []Sink

func (f Fanout) Publish(ctx context.Context, readings []models.Reading) error {
	var errs []error
	for _, s := range f {
		if err := s.Publish(ctx, readings); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f Fanout) Close() error {
	var errs []error
	for _, s := range f {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Publish(context.Context, []models.Reading) error { return nil }
func (Nop) Close() error                                    { return nil }
