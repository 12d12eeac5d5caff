package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rentsync/internal/domain/rooms"
	"rentsync/internal/domain/shared/daterange"
)

var (
	ErrRuleNotFound = errors.New("pricing: rule not found")
	ErrRuleType     = errors.New("pricing: unknown rule type")
	ErrRuleValue    = errors.New("pricing: invalid rule value")
)

type RuleType string

const (
	// RuleSurchargeRate adds basePrice * value per affected night; value is a
	// fraction, e.g. 0.15 for +15%.
	RuleSurchargeRate RuleType = "surcharge_rate"
	// RuleFixedAmount adds value (major currency units) per affected night.
	RuleFixedAmount RuleType = "fixed_amount"
	// RuleAbsolutePrice replaces the base price for affected nights with
	// value (major currency units).
	RuleAbsolutePrice RuleType = "absolute_price"
)

// Rule is a date-scoped pricing adjustment. Active rules for one room never
// pairwise-overlap in date range, so at most one rule touches any given
// night and contributions stay independent and additive.
type Rule struct {
	ID        string
	RoomID    rooms.RoomID
	Type      RuleType
	Value     float64
	Range     daterange.DateRange
	Active    bool
	Weekdays  []time.Weekday // nil or empty means every day of the week
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Repository interface {
	ByID(ctx context.Context, id string) (*Rule, error)
	ListByRoom(ctx context.Context, roomID rooms.RoomID) ([]*Rule, error)
	Save(ctx context.Context, rule *Rule) error
	Delete(ctx context.Context, id string) error
}

type CreateParams struct {
	ID       string
	RoomID   rooms.RoomID
	Type     RuleType
	Value    float64
	Range    daterange.DateRange
	Active   bool
	Weekdays []time.Weekday
	Now      time.Time
}

func NewRule(params CreateParams) (*Rule, error) {
	switch params.Type {
	case RuleSurchargeRate, RuleFixedAmount, RuleAbsolutePrice:
	default:
		return nil, fmt.Errorf("%w: %q", ErrRuleType, params.Type)
	}
	if params.Type == RuleAbsolutePrice && params.Value < 0 {
		return nil, fmt.Errorf("%w: absolute price cannot be negative", ErrRuleValue)
	}
	now := params.Now.UTC()
	return &Rule{
		ID:        params.ID,
		RoomID:    params.RoomID,
		Type:      params.Type,
		Value:     params.Value,
		Range:     params.Range,
		Active:    params.Active,
		Weekdays:  append([]time.Weekday(nil), params.Weekdays...),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Label identifies the rule in conflict messages.
func (r *Rule) Label() string {
	return string(r.Type) + " " + r.Range.String()
}

// appliesTo reports whether the rule adjusts the price of the given night.
func (r *Rule) appliesTo(night time.Time) bool {
	if !r.Active || !r.Range.Contains(night) {
		return false
	}
	if len(r.Weekdays) == 0 {
		return true
	}
	wd := night.Weekday()
	for _, allowed := range r.Weekdays {
		if wd == allowed {
			return true
		}
	}
	return false
}
