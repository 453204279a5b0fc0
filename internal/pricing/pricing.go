// Package pricing computes order totals from the book price table. All
// amounts are whole Kenyan shillings.
package pricing

import (
	"errors"
	"fmt"

	"book-order-service/internal/domain"
)

type Tier string

const (
	TierIntroductory Tier = "introductory"
	TierNormal       Tier = "normal"
)

var (
	ErrUnknownTier     = errors.New("unknown price tier")
	ErrUnknownEdition  = errors.New("unknown edition")
	ErrUnknownZone     = errors.New("unknown delivery location")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

var unitPrices = map[Tier]map[domain.Edition]int64{
	TierIntroductory: {
		domain.EditionPaperback: 2500,
		domain.EditionHardback:  3000,
	},
	TierNormal: {
		domain.EditionPaperback: 2950,
		domain.EditionHardback:  3500,
	},
}

var deliveryFees = map[domain.DeliveryZone]int64{
	domain.ZoneNairobi: 300,
	domain.ZoneKenya:   500,
}

type Breakdown struct {
	BookAmount  int64 `json:"bookAmount"`
	DeliveryFee int64 `json:"deliveryFee"`
	Total       int64 `json:"totalAmount"`
}

// Table is a price table bound to one tier.
type Table struct {
	tier Tier
}

func NewTable(tier Tier) (*Table, error) {
	if _, ok := unitPrices[tier]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTier, tier)
	}
	return &Table{tier: tier}, nil
}

func (t *Table) Tier() Tier {
	return t.tier
}

func (t *Table) UnitPrice(edition domain.Edition) (int64, error) {
	p, ok := unitPrices[t.tier][edition]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownEdition, edition)
	}
	return p, nil
}

func DeliveryFee(zone domain.DeliveryZone) (int64, error) {
	fee, ok := deliveryFees[zone]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownZone, zone)
	}
	return fee, nil
}

func (t *Table) Compute(edition domain.Edition, quantity int, zone domain.DeliveryZone) (Breakdown, error) {
	unit, err := t.UnitPrice(edition)
	if err != nil {
		return Breakdown{}, err
	}
	if quantity < 1 {
		return Breakdown{}, ErrInvalidQuantity
	}
	fee, err := DeliveryFee(zone)
	if err != nil {
		return Breakdown{}, err
	}

	book := unit * int64(quantity)
	return Breakdown{
		BookAmount:  book,
		DeliveryFee: fee,
		Total:       book + fee,
	}, nil
}
