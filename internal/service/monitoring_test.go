package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"temp_monitor/internal/logger"
	"temp_monitor/internal/models"
)

func newLiveFixture(t *testing.T) (*Engine, *scriptedBus, *LiveService) {
	t.Helper()
	engine := NewEngine(newTestLog(t), logger.Nop())
	if err := engine.Rebuild(context.Background(), testRoles, models.Fahrenheit, models.Minutes); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	bus := &scriptedBus{ids: []string{prodID, ambID}}
	bus.set(prodID, 100, nil)
	bus.set(ambID, 0, nil)
	return engine, bus, NewLiveService(bus, engine, time.Second, logger.Nop())
}

func TestMonitoringService_ChartFillsCurrentValues(t *testing.T) {
	t.Parallel()

	engine, bus, live := newLiveFixture(t)
	svc := NewMonitoringService(engine, live, bus, &sensorStateStub{})

	snap, err := svc.Chart(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := snap.Current[models.RoleProduct]; got != "--.-" {
		t.Fatalf("expected placeholder before first poll, got %q", got)
	}

	live.PollOnce(context.Background())
	snap, _ = svc.Chart(context.Background())

	if got := snap.Current[models.RoleProduct]; got != "212.0" {
		t.Fatalf("product current: got %q, want %q", got, "212.0")
	}
	if got := snap.Current[models.RoleAmbient]; got != "32.0" {
		t.Fatalf("ambient current: got %q, want %q", got, "32.0")
	}
	if len(snap.Series[models.RoleProduct]) != 0 {
		t.Fatalf("live polling must not add chart points")
	}
}

func TestLiveService_FailedReadKeepsPreviousValue(t *testing.T) {
	t.Parallel()

	_, bus, live := newLiveFixture(t)
	live.PollOnce(context.Background())

	bus.set(prodID, 55, errors.New("crc mismatch"))
	live.PollOnce(context.Background())

	v, ok := live.Current(prodID)
	if !ok || v != 100 {
		t.Fatalf("expected previous value 100, got %v (ok=%v)", v, ok)
	}
}

func TestLiveService_UnassignedRoleShowsPlaceholder(t *testing.T) {
	t.Parallel()

	_, _, live := newLiveFixture(t)
	live.PollOnce(context.Background())

	out := live.CurrentText(models.RoleAssignment{models.RoleProduct: prodID}, models.Celsius)
	if out[models.RoleProduct] != "100.0" {
		t.Fatalf("product: got %q", out[models.RoleProduct])
	}
	if out[models.RoleAmbient] != "--.-" {
		t.Fatalf("ambient: got %q", out[models.RoleAmbient])
	}
}

func TestLiveService_RunStopsOnCancel(t *testing.T) {
	t.Parallel()

	_, bus, live := newLiveFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		live.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}

	bus.mu.Lock()
	reads := bus.reads
	bus.mu.Unlock()
	if reads < 2 {
		t.Fatalf("expected several polls, got %d reads", reads)
	}
}

func TestMonitoringService_Sensors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		bus     *scriptedBus
		states  *sensorStateStub
		wantIDs int
		wantErr bool
	}{
		{
			name:    "lists bus and stored state",
			bus:     &scriptedBus{ids: []string{prodID, ambID}},
			states:  &sensorStateStub{readings: []models.Reading{{SensorID: prodID, Celsius: 21}}},
			wantIDs: 2,
		},
		{
			name:    "empty bus gives empty lists",
			bus:     &scriptedBus{},
			states:  &sensorStateStub{},
			wantIDs: 0,
		},
		{
			name:    "bus error",
			bus:     &scriptedBus{listErr: errors.New("w1 master missing")},
			states:  &sensorStateStub{},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewMonitoringService(nil, nil, tc.bus, tc.states)
			view, err := svc.Sensors(context.Background())
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(view.Available) != tc.wantIDs {
				t.Fatalf("available: got %d, want %d", len(view.Available), tc.wantIDs)
			}
			if view.Available == nil || view.States == nil {
				t.Fatal("lists must be non-nil for JSON")
			}
		})
	}
}
