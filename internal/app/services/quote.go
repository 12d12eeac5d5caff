package services

import (
	"context"
	"errors"

	"rentsync/internal/app/uow"
	domainpricing "rentsync/internal/domain/pricing"
	domainrooms "rentsync/internal/domain/rooms"
	"rentsync/internal/domain/shared/daterange"
	"rentsync/internal/domain/shared/money"
)

var ErrInvalidGuests = errors.New("services: guests must be at least 1")

// PriceQuote is the full price breakdown for a prospective stay.
type PriceQuote struct {
	RoomID     domainrooms.RoomID
	Stay       daterange.DateRange
	Guests     int
	Nights     []domainpricing.NightPrice
	Applied    []domainpricing.AppliedRule
	Subtotal   money.Money
	ServiceFee money.Money
	Tax        money.Money
	Total      money.Money
}

// CalculatePrice quotes a stay: every night priced by the rule evaluator,
// then the room's service fee and tax applied on the subtotal.
func (c *Core) CalculatePrice(ctx context.Context, roomID domainrooms.RoomID, stay daterange.DateRange, guests int) (*PriceQuote, error) {
	if guests < 1 {
		return nil, ErrInvalidGuests
	}

	var quote *PriceQuote
	err := c.withUnit(ctx, uow.TxOptions{ReadOnly: true}, func(ctx context.Context, unit uow.UnitOfWork) error {
		room, err := unit.Rooms().ByID(ctx, roomID)
		if err != nil {
			return err
		}
		rules, err := unit.PricingRules().ListByRoom(ctx, roomID)
		if err != nil {
			return err
		}

		eval := domainpricing.Evaluate(room.BasePrice, stay, rules)
		fee := eval.Subtotal.Scale(room.ServiceFeeRate)
		tax := eval.Subtotal.Scale(room.TaxRate)
		total := eval.Subtotal
		total.Amount += fee.Amount + tax.Amount

		quote = &PriceQuote{
			RoomID:     roomID,
			Stay:       stay,
			Guests:     guests,
			Nights:     eval.Nights,
			Applied:    eval.Applied,
			Subtotal:   eval.Subtotal,
			ServiceFee: fee,
			Tax:        tax,
			Total:      total,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}
