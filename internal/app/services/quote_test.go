package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentsync/internal/app/services"
	domainpricing "rentsync/internal/domain/pricing"
	domainrooms "rentsync/internal/domain/rooms"
	"rentsync/internal/domain/shared/daterange"
)

func TestCalculatePriceAppliesFeesAndTax(t *testing.T) {
	env := newTestEnv(t)
	env.seedRoom(t, "room-1") // $100/night, 10% fee, 5% tax
	ctx := context.Background()

	_, err := env.core.CreatePricingRule(ctx, "room-1", services.RuleParams{
		Type:   domainpricing.RuleSurchargeRate,
		Value:  0.20,
		Range:  mustRange(t, "2025-12-24", "2025-12-26"),
		Active: true,
	})
	require.NoError(t, err)

	quote, err := env.core.CalculatePrice(ctx, "room-1", mustRange(t, "2025-12-23", "2025-12-27"), 2)
	require.NoError(t, err)

	assert.Equal(t, int64(44000), quote.Subtotal.Amount)
	assert.Equal(t, int64(4400), quote.ServiceFee.Amount)
	assert.Equal(t, int64(2200), quote.Tax.Amount)
	assert.Equal(t, int64(50600), quote.Total.Amount)
	require.Len(t, quote.Nights, 4)
	assert.Equal(t, "2025-12-23", daterange.FormatDay(quote.Nights[0].Night))
}

func TestCalculatePriceValidation(t *testing.T) {
	env := newTestEnv(t)
	env.seedRoom(t, "room-1")
	ctx := context.Background()

	_, err := env.core.CalculatePrice(ctx, "room-1", mustRange(t, "2025-06-01", "2025-06-03"), 0)
	assert.ErrorIs(t, err, services.ErrInvalidGuests)

	_, err = daterange.Parse("2025-06-03", "2025-06-01")
	assert.ErrorIs(t, err, daterange.ErrInvalidRange)

	_, err = env.core.CalculatePrice(ctx, "ghost", mustRange(t, "2025-06-01", "2025-06-03"), 2)
	assert.ErrorIs(t, err, domainrooms.ErrNotFound)
}

func TestCreatePricingRuleRejectsActiveOverlap(t *testing.T) {
	env := newTestEnv(t)
	env.seedRoom(t, "room-1")
	ctx := context.Background()

	_, err := env.core.CreatePricingRule(ctx, "room-1", services.RuleParams{
		Type:   domainpricing.RuleSurchargeRate,
		Value:  0.10,
		Range:  mustRange(t, "2025-07-01", "2025-07-10"),
		Active: true,
	})
	require.NoError(t, err)

	_, err = env.core.CreatePricingRule(ctx, "room-1", services.RuleParams{
		Type:   domainpricing.RuleFixedAmount,
		Value:  20,
		Range:  mustRange(t, "2025-07-05", "2025-07-15"),
		Active: true,
	})
	require.Error(t, err)

	// An inactive rule may overlap an active one.
	_, err = env.core.CreatePricingRule(ctx, "room-1", services.RuleParams{
		Type:   domainpricing.RuleFixedAmount,
		Value:  20,
		Range:  mustRange(t, "2025-07-05", "2025-07-15"),
		Active: false,
	})
	require.NoError(t, err)
}

func TestUpdatePricingRuleExcludesSelfFromOverlapCheck(t *testing.T) {
	env := newTestEnv(t)
	env.seedRoom(t, "room-1")
	ctx := context.Background()

	rule, err := env.core.CreatePricingRule(ctx, "room-1", services.RuleParams{
		Type:   domainpricing.RuleSurchargeRate,
		Value:  0.10,
		Range:  mustRange(t, "2025-07-01", "2025-07-10"),
		Active: true,
	})
	require.NoError(t, err)

	updated, err := env.core.UpdatePricingRule(ctx, rule.ID, services.RuleParams{
		Type:   domainpricing.RuleSurchargeRate,
		Value:  0.15,
		Range:  mustRange(t, "2025-07-03", "2025-07-12"),
		Active: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.15, updated.Value)

	require.NoError(t, env.core.DeletePricingRule(ctx, rule.ID))
	assert.ErrorIs(t, env.core.DeletePricingRule(ctx, rule.ID), domainpricing.ErrRuleNotFound)
}
