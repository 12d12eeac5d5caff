package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainavailability "rentsync/internal/domain/availability"
	domainrooms "rentsync/internal/domain/rooms"
	domainschedule "rentsync/internal/domain/schedule"
)

func TestCreateBlockedPeriodRejectsOverlap(t *testing.T) {
	env := newTestEnv(t)
	env.seedRoom(t, "room-1")
	ctx := context.Background()

	first, err := env.core.CreateBlockedPeriod(ctx, "room-1", mustRange(t, "2025-06-01", "2025-06-05"), "maintenance", "")
	require.NoError(t, err)

	_, err = env.core.CreateBlockedPeriod(ctx, "room-1", mustRange(t, "2025-06-04", "2025-06-10"), "painting", "")
	var conflict *domainschedule.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, first.ID, conflict.With.ID)
	assert.Equal(t, mustRange(t, "2025-06-01", "2025-06-05"), conflict.With.Range)

	// An adjacent range sharing only the boundary day is fine.
	_, err = env.core.CreateBlockedPeriod(ctx, "room-1", mustRange(t, "2025-06-05", "2025-06-10"), "painting", "")
	require.NoError(t, err)
}

func TestCreateBlockedPeriodRejectsBookingOverlap(t *testing.T) {
	env := newTestEnv(t)
	env.seedRoom(t, "room-1")
	env.seedConfirmedBooking(t, "b-1", "room-1", "2025-07-10", "2025-07-15")
	ctx := context.Background()

	_, err := env.core.CreateBlockedPeriod(ctx, "room-1", mustRange(t, "2025-07-14", "2025-07-20"), "repairs", "")
	var conflict *domainschedule.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Contains(t, conflict.With.Label, "CONF-b-1")
}

func TestCreateBlockedPeriodUnknownRoom(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.core.CreateBlockedPeriod(context.Background(), "ghost", mustRange(t, "2025-06-01", "2025-06-02"), "x", "")
	assert.ErrorIs(t, err, domainrooms.ErrNotFound)
}

func TestBlockedPeriodMaterializesLedgerDays(t *testing.T) {
	env := newTestEnv(t)
	env.seedRoom(t, "room-1")
	ctx := context.Background()

	_, err := env.core.CreateBlockedPeriod(ctx, "room-1", mustRange(t, "2025-06-01", "2025-06-04"), "maintenance", "")
	require.NoError(t, err)

	records, err := env.factory.LedgerRepo.BlockedBySource(ctx, "room-1", domainavailability.SourceManual)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for _, rec := range records {
		assert.True(t, rec.Blocked)
		assert.False(t, rec.Available)
		assert.Equal(t, domainavailability.SourceManual, rec.Source)
	}

	days, err := env.core.GetAvailability(ctx, "room-1", mustRange(t, "2025-06-01", "2025-06-05"))
	require.NoError(t, err)
	assert.True(t, days[0].Blocked)
	assert.True(t, days[2].Blocked)
	assert.True(t, days[3].Available)
}

func TestDeleteBlockedPeriodClearsLedger(t *testing.T) {
	env := newTestEnv(t)
	env.seedRoom(t, "room-1")
	ctx := context.Background()

	period, err := env.core.CreateBlockedPeriod(ctx, "room-1", mustRange(t, "2025-06-01", "2025-06-04"), "maintenance", "")
	require.NoError(t, err)

	require.NoError(t, env.core.DeleteBlockedPeriod(ctx, period.ID))

	records, err := env.factory.LedgerRepo.BlockedBySource(ctx, "room-1", domainavailability.SourceManual)
	require.NoError(t, err)
	assert.Empty(t, records)

	assert.ErrorIs(t, env.core.DeleteBlockedPeriod(ctx, period.ID), domainschedule.ErrNotFound)
}

func TestUpdateBlockedPeriodMovesLedgerDays(t *testing.T) {
	env := newTestEnv(t)
	env.seedRoom(t, "room-1")
	ctx := context.Background()

	period, err := env.core.CreateBlockedPeriod(ctx, "room-1", mustRange(t, "2025-06-01", "2025-06-03"), "maintenance", "")
	require.NoError(t, err)

	_, err = env.core.UpdateBlockedPeriod(ctx, period.ID, mustRange(t, "2025-06-10", "2025-06-12"), "", "crew delayed")
	require.NoError(t, err)

	records, err := env.factory.LedgerRepo.BlockedBySource(ctx, "room-1", domainavailability.SourceManual)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2025-06-10", records[0].Date.Format("2006-01-02"))
	assert.Equal(t, "2025-06-11", records[1].Date.Format("2006-01-02"))
}

func TestUpdateBlockedPeriodRejectsOverlapWithOthers(t *testing.T) {
	env := newTestEnv(t)
	env.seedRoom(t, "room-1")
	ctx := context.Background()

	a, err := env.core.CreateBlockedPeriod(ctx, "room-1", mustRange(t, "2025-06-01", "2025-06-05"), "a", "")
	require.NoError(t, err)
	_, err = env.core.CreateBlockedPeriod(ctx, "room-1", mustRange(t, "2025-06-10", "2025-06-15"), "b", "")
	require.NoError(t, err)

	// Moving a onto b must conflict, but a may freely overlap its own old range.
	_, err = env.core.UpdateBlockedPeriod(ctx, a.ID, mustRange(t, "2025-06-12", "2025-06-16"), "", "")
	var conflict *domainschedule.ConflictError
	require.ErrorAs(t, err, &conflict)

	_, err = env.core.UpdateBlockedPeriod(ctx, a.ID, mustRange(t, "2025-06-02", "2025-06-06"), "", "")
	require.NoError(t, err)
}
