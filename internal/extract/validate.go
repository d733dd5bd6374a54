package extract

import (
	"math"

	"github.com/splitkaro/billscan/internal/models"
)

// Item prices must land in this range after validation or the item is
// dropped.
const (
	itemPriceMin = 1
	itemPriceMax = 10000
)

// reconciliationTolerance is the relative slack allowed between the
// matched total and the sum of its parts before tax is recomputed.
const reconciliationTolerance = 0.1

// reconcile cross-checks the assembled draft for arithmetic consistency,
// backfills missing fields, and guarantees a splittable item whenever a
// total exists. It returns an adjusted copy; the input is not mutated.
func reconcile(draft models.Receipt) models.Receipt {
	r := draft
	r.Items = append([]models.LineItem(nil), draft.Items...)

	// Out-of-range items are OCR misreads, drop them before any sums.
	kept := r.Items[:0]
	for _, it := range r.Items {
		if it.Price < itemPriceMin || it.Price > itemPriceMax {
			continue
		}
		if it.Quantity < 1 {
			it.Quantity = 1
		}
		kept = append(kept, it)
	}
	r.Items = kept

	if r.Subtotal == 0 && len(r.Items) > 0 {
		sum := 0.0
		for _, it := range r.Items {
			sum += it.Price * float64(it.Quantity)
		}
		r.Subtotal = round2(sum)
	}

	if r.Total == 0 {
		r.Total = round2(r.Subtotal + r.Tax + r.ServiceCharge)
	}

	// A directly matched TOTAL line is a stronger signal than scattered
	// tax lines; when the parts disagree with it, recompute tax as the
	// residual.
	parts := r.Subtotal + r.Tax + r.ServiceCharge
	if r.Total > 0 && math.Abs(r.Total-parts) > reconciliationTolerance*r.Total && r.Total > r.Subtotal {
		r.Tax = round2(r.Total - r.Subtotal - r.ServiceCharge)
		// A negative residual means the service charge alone overshoots
		// the matched total. Clamping tax to zero would leave the parts
		// exceeding the total, so shrink the service charge to fit.
		if r.Tax < 0 {
			r.Tax = 0
			r.ServiceCharge = round2(r.Total - r.Subtotal)
		}
	}

	if r.Subtotal < 0 {
		r.Subtotal = 0
	}
	if r.Tax < 0 {
		r.Tax = 0
	}
	if r.ServiceCharge < 0 {
		r.ServiceCharge = 0
	}
	if r.Total < 0 {
		r.Total = 0
	}

	// Every receipt with money on it must have at least one item to split.
	// The synthesized price is clamped into the item range so an
	// implausible total cannot smuggle an out-of-range item past the
	// filter above.
	if len(r.Items) == 0 && r.Total > 0 {
		price := r.Total
		if price > itemPriceMax {
			price = itemPriceMax
		}
		if price < itemPriceMin {
			price = itemPriceMin
		}
		r.Items = []models.LineItem{{
			Name:     "Bill Total",
			Price:    price,
			Quantity: 1,
			Kind:     models.ItemKindGeneric,
		}}
	}

	return r
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
