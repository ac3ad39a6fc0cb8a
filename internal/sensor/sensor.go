// Package sensor reads temperature probes. Values are always °C.
package sensor

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Bus lists and reads the probes attached to the host.
type Bus interface {
	ListAvailable(ctx context.Context) ([]string, error)
	Read(ctx context.Context, id string) (float64, error)
}

var (
	ErrNotFound  = errors.New("sensor not found")
	ErrNotReady  = errors.New("sensor not ready")
	ErrBadFormat = errors.New("unexpected sensor output")
)

// Drivers accepted by New.
const (
	DriverW1   = "w1"
	DriverMock = "mock"
)

// New returns the bus for driver. w1Dir is only used by the w1 driver.
func New(driver, w1Dir string) (Bus, error) {
	switch driver {
	case DriverW1:
		return NewW1Bus(w1Dir), nil
	case DriverMock, "":
		return NewMockBus(), nil
	default:
		return nil, fmt.Errorf("unknown sensor driver %q", driver)
	}
}

// ReadWithTimeout bounds a single read. A read that ignores ctx is abandoned
// after timeout; its goroutine finishes on its own.
func ReadWithTimeout(ctx context.Context, bus Bus, id string, timeout time.Duration) (float64, error) {
	if timeout <= 0 {
		return bus.Read(ctx, id)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		v   float64
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := bus.Read(ctx, id)
		ch <- result{v, err}
	}()

	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		return 0, fmt.Errorf("read %s: %w", id, ctx.Err())
	}
}
