package services

import (
	"context"
	"time"

	"rentsync/internal/app/uow"
	domainpricing "rentsync/internal/domain/pricing"
	domainrooms "rentsync/internal/domain/rooms"
	domainschedule "rentsync/internal/domain/schedule"
	"rentsync/internal/domain/shared/daterange"
)

// RuleParams carries the caller-supplied fields of a pricing rule.
type RuleParams struct {
	Type     domainpricing.RuleType
	Value    float64
	Range    daterange.DateRange
	Active   bool
	Weekdays []time.Weekday
}

// CreatePricingRule adds a rule to the room. Active rules must not overlap
// in date range; an overlap is reported as a ConflictError naming the rule
// already holding the dates. Inactive rules may overlap freely.
func (c *Core) CreatePricingRule(ctx context.Context, roomID domainrooms.RoomID, params RuleParams) (*domainpricing.Rule, error) {
	unlock := c.locks.lock(roomID)
	defer unlock()

	var rule *domainpricing.Rule
	err := c.withUnit(ctx, uow.TxOptions{}, func(ctx context.Context, unit uow.UnitOfWork) error {
		if _, err := unit.Rooms().ByID(ctx, roomID); err != nil {
			return err
		}
		if params.Active {
			occupied, err := activeRuleRanges(ctx, unit, roomID, "")
			if err != nil {
				return err
			}
			if with, ok := domainschedule.FirstConflict(params.Range, occupied); ok {
				return &domainschedule.ConflictError{RoomID: roomID, Candidate: params.Range, With: with}
			}
		}

		var err error
		rule, err = domainpricing.NewRule(domainpricing.CreateParams{
			ID:       c.newID(),
			RoomID:   roomID,
			Type:     params.Type,
			Value:    params.Value,
			Range:    params.Range,
			Active:   params.Active,
			Weekdays: params.Weekdays,
			Now:      c.now(),
		})
		if err != nil {
			return err
		}
		return unit.PricingRules().Save(ctx, rule)
	})
	if err != nil {
		return nil, err
	}
	return rule, nil
}

// UpdatePricingRule replaces a rule's fields. The overlap check excludes
// the rule itself and only applies when the updated rule is active.
func (c *Core) UpdatePricingRule(ctx context.Context, id string, params RuleParams) (*domainpricing.Rule, error) {
	var roomID domainrooms.RoomID
	err := c.withUnit(ctx, uow.TxOptions{ReadOnly: true}, func(ctx context.Context, unit uow.UnitOfWork) error {
		existing, err := unit.PricingRules().ByID(ctx, id)
		if err != nil {
			return err
		}
		roomID = existing.RoomID
		return nil
	})
	if err != nil {
		return nil, err
	}

	unlock := c.locks.lock(roomID)
	defer unlock()

	var rule *domainpricing.Rule
	err = c.withUnit(ctx, uow.TxOptions{}, func(ctx context.Context, unit uow.UnitOfWork) error {
		existing, err := unit.PricingRules().ByID(ctx, id)
		if err != nil {
			return err
		}
		if params.Active {
			occupied, err := activeRuleRanges(ctx, unit, existing.RoomID, id)
			if err != nil {
				return err
			}
			if with, ok := domainschedule.FirstConflict(params.Range, occupied); ok {
				return &domainschedule.ConflictError{RoomID: existing.RoomID, Candidate: params.Range, With: with}
			}
		}

		updated, err := domainpricing.NewRule(domainpricing.CreateParams{
			ID:       existing.ID,
			RoomID:   existing.RoomID,
			Type:     params.Type,
			Value:    params.Value,
			Range:    params.Range,
			Active:   params.Active,
			Weekdays: params.Weekdays,
			Now:      c.now(),
		})
		if err != nil {
			return err
		}
		updated.CreatedAt = existing.CreatedAt
		if err := unit.PricingRules().Save(ctx, updated); err != nil {
			return err
		}
		rule = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rule, nil
}

// DeletePricingRule removes a rule.
func (c *Core) DeletePricingRule(ctx context.Context, id string) error {
	return c.withUnit(ctx, uow.TxOptions{}, func(ctx context.Context, unit uow.UnitOfWork) error {
		return unit.PricingRules().Delete(ctx, id)
	})
}

// ListPricingRules returns the room's rules ordered by start date.
func (c *Core) ListPricingRules(ctx context.Context, roomID domainrooms.RoomID) ([]*domainpricing.Rule, error) {
	var rules []*domainpricing.Rule
	err := c.withUnit(ctx, uow.TxOptions{ReadOnly: true}, func(ctx context.Context, unit uow.UnitOfWork) error {
		if _, err := unit.Rooms().ByID(ctx, roomID); err != nil {
			return err
		}
		var err error
		rules, err = unit.PricingRules().ListByRoom(ctx, roomID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func activeRuleRanges(ctx context.Context, unit uow.UnitOfWork, roomID domainrooms.RoomID, excludeID string) ([]domainschedule.Occupied, error) {
	rules, err := unit.PricingRules().ListByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	var occupied []domainschedule.Occupied
	for _, r := range rules {
		if r.ID == excludeID || !r.Active {
			continue
		}
		occupied = append(occupied, domainschedule.Occupied{ID: r.ID, Label: r.Label(), Range: r.Range})
	}
	return occupied, nil
}
