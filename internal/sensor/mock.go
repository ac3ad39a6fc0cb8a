package sensor

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
)

// Mock probe ids used when no hardware is present.
const (
	MockProductID = "28-MockProd"
	MockAmbientID = "28-MockAmb"
)

// MockBus returns uniform values in [Min, Max] rounded to two decimals.
type MockBus struct {
	mu  sync.Mutex
	ids []string
	rng *rand.Rand

	Min, Max float64
}

func NewMockBus() *MockBus {
	return &MockBus{
		ids: []string{MockProductID, MockAmbientID},
		rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		Min: 20,
		Max: 30,
	}
}

func (b *MockBus) ListAvailable(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]string(nil), b.ids...), nil
}

func (b *MockBus) Read(ctx context.Context, id string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	known := false
	for _, k := range b.ids {
		if k == id {
			known = true
			break
		}
	}
	if !known {
		return 0, fmt.Errorf("%s: %w", id, ErrNotFound)
	}

	b.mu.Lock()
	v := b.Min + b.rng.Float64()*(b.Max-b.Min)
	b.mu.Unlock()
	return math.Round(v*100) / 100, nil
}
