// Package pricing is the boundary contract to the pricing collaborator. The
// engine consumes it as a black box: a pricing failure fails the enclosing
// reservation mutation but never corrupts inventory already applied.
package pricing

import (
	"context"
	"fmt"
	"strings"

	"github.com/kirinyoku/resv-go/internal/domain"
)

type Quote struct {
	Subtotal     domain.Money
	Discount     domain.Money
	Total        domain.Money
	AppliedRules []string
}

type Pricer interface {
	PriceItems(ctx context.Context, eventID int64, items []domain.ReservationItem, discountCode string) (Quote, error)
}

// StaticPricer sums item unit prices and applies flat cent discounts from a
// code table. Unknown codes are an error so buyers learn about typos before
// confirming.
type StaticPricer struct {
	discounts map[string]domain.Money
}

func NewStaticPricer(discounts map[string]domain.Money) *StaticPricer {
	normalized := make(map[string]domain.Money, len(discounts))
	for code, amount := range discounts {
		normalized[strings.ToUpper(code)] = amount
	}
	return &StaticPricer{discounts: normalized}
}

func (p *StaticPricer) PriceItems(_ context.Context, _ int64, items []domain.ReservationItem, discountCode string) (Quote, error) {
	const op = "pricing.StaticPricer.PriceItems"

	var subtotal domain.Money
	for _, it := range items {
		subtotal += it.UnitPrice.Mul(it.Quantity)
	}

	q := Quote{Subtotal: subtotal, Total: subtotal}
	if discountCode == "" {
		return q, nil
	}

	discount, ok := p.discounts[strings.ToUpper(discountCode)]
	if !ok {
		return Quote{}, fmt.Errorf("%s: unknown discount code %q: %w", op, discountCode, domain.ErrInvalidInput)
	}
	if discount > subtotal {
		discount = subtotal
	}
	q.Discount = discount
	q.Total = subtotal - discount
	q.AppliedRules = []string{"discount_code:" + strings.ToUpper(discountCode)}
	return q, nil
}
