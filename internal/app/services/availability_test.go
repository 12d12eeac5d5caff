package services_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentsync/internal/app/services"
	"rentsync/internal/infra/cache"
	"rentsync/internal/infra/storage/memory"
)

type mapCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMapCache() *mapCache {
	return &mapCache{items: make(map[string][]byte)}
}

func (c *mapCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	val, ok := c.items[key]
	if !ok {
		return nil, cache.ErrMiss
	}
	return val, nil
}

func (c *mapCache) Set(ctx context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return nil
}

func (c *mapCache) Invalidate(ctx context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
		}
	}
	return nil
}

func TestGetAvailabilityUsesAndInvalidatesCache(t *testing.T) {
	factory := memory.NewFactory()
	stub := newMapCache()
	core, err := services.New(services.Options{
		UoWFactory: factory,
		Fetcher:    &stubFetcher{},
		Cache:      stub,
		Now:        func() time.Time { return testClock },
	})
	require.NoError(t, err)

	env := &testEnv{core: core, factory: factory}
	env.seedRoom(t, "room-1")
	ctx := context.Background()
	window := mustRange(t, "2025-06-01", "2025-06-05")

	days, err := core.GetAvailability(ctx, "room-1", window)
	require.NoError(t, err)
	require.Len(t, days, 4)
	assert.Len(t, stub.items, 1)

	// A block write must drop the cached view so the next read sees it.
	_, err = core.CreateBlockedPeriod(ctx, "room-1", mustRange(t, "2025-06-02", "2025-06-03"), "maintenance", "")
	require.NoError(t, err)
	assert.Empty(t, stub.items)

	days, err = core.GetAvailability(ctx, "room-1", window)
	require.NoError(t, err)
	assert.True(t, days[1].Blocked)
}

func TestGetAvailabilityCalendarIsComputedPerWindow(t *testing.T) {
	env := newTestEnv(t)
	env.seedRoom(t, "room-1")
	env.seedConfirmedBooking(t, "b-1", "room-1", "2025-06-03", "2025-06-06")
	ctx := context.Background()

	days, err := env.core.GetAvailability(ctx, "room-1", mustRange(t, "2025-06-01", "2025-06-10"))
	require.NoError(t, err)
	require.Len(t, days, 9)
	assert.True(t, days[0].Available)
	assert.True(t, days[2].Blocked)
	require.NotNil(t, days[2].Booking)
	assert.Equal(t, "CONF-b-1", days[2].Booking.ConfirmationCode)
	assert.True(t, days[4].Blocked)
	assert.True(t, days[5].Available) // checkout day is open again
}
