package pricing

import (
	"time"

	"rentsync/internal/domain/shared/daterange"
	"rentsync/internal/domain/shared/money"
)

// NightPrice is the resolved price of one night of a stay.
type NightPrice struct {
	Night  time.Time
	Price  money.Money
	RuleID string // empty when the night is priced at the base rate
}

// AppliedRule records one rule's total contribution to a stay. The
// contribution of an absolute_price rule is the net delta against the base
// rate and may be negative.
type AppliedRule struct {
	RuleID       string
	Type         RuleType
	Nights       int
	Contribution money.Money
}

// Evaluation is the outcome of pricing a stay against a room's rules.
type Evaluation struct {
	Stay     daterange.DateRange
	Nights   []NightPrice
	Applied  []AppliedRule
	Subtotal money.Money
}

// Evaluate prices every night of [stay.Start, stay.End) at the base rate
// adjusted by the single rule covering that night, if any. Rule bounds are
// half-open like stay bounds, so a rule ending on the checkout day does not
// touch it. Inactive rules are skipped.
func Evaluate(basePrice money.Money, stay daterange.DateRange, rules []*Rule) Evaluation {
	nights := stay.Days()
	out := Evaluation{
		Stay:     stay,
		Nights:   make([]NightPrice, 0, len(nights)),
		Subtotal: money.Money{Currency: basePrice.Currency},
	}
	applied := make(map[string]*AppliedRule)
	order := make([]string, 0, len(rules))

	for _, night := range nights {
		price := basePrice
		ruleID := ""
		for _, rule := range rules {
			if !rule.appliesTo(night) {
				continue
			}
			price = nightPrice(basePrice, rule)
			ruleID = rule.ID
			contrib, ok := applied[rule.ID]
			if !ok {
				contrib = &AppliedRule{
					RuleID:       rule.ID,
					Type:         rule.Type,
					Contribution: money.Money{Currency: basePrice.Currency},
				}
				applied[rule.ID] = contrib
				order = append(order, rule.ID)
			}
			contrib.Nights++
			contrib.Contribution.Amount += price.Amount - basePrice.Amount
			break // active rules never overlap, at most one can match
		}
		out.Nights = append(out.Nights, NightPrice{Night: night, Price: price, RuleID: ruleID})
		out.Subtotal.Amount += price.Amount
	}

	for _, id := range order {
		out.Applied = append(out.Applied, *applied[id])
	}
	return out
}

func nightPrice(basePrice money.Money, rule *Rule) money.Money {
	switch rule.Type {
	case RuleSurchargeRate:
		adj, err := basePrice.Add(basePrice.Scale(rule.Value))
		if err != nil {
			return basePrice
		}
		return adj
	case RuleFixedAmount:
		delta, err := money.FromUnits(rule.Value, basePrice.Currency)
		if err != nil {
			return basePrice
		}
		adj, err := basePrice.Add(delta)
		if err != nil {
			return basePrice
		}
		return adj
	case RuleAbsolutePrice:
		abs, err := money.FromUnits(rule.Value, basePrice.Currency)
		if err != nil {
			return basePrice
		}
		return abs
	default:
		return basePrice
	}
}
