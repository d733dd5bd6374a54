package extract

import (
	"strings"
)

// totals holds the money fields tracked independently across the document
type totals struct {
	Subtotal      float64
	Tax           float64
	ServiceCharge float64
	Total         float64
}

// extractTotals scans every line for total/subtotal/tax/service keywords and
// keeps the running maximum price per field. OCR noise often repeats the
// "TOTAL" line; taking the maximum across all matches absorbs that.
func (e *Extractor) extractTotals(lines []ClassifiedLine, prices [][]ScoredPrice) totals {
	var t totals

	for _, line := range lines {
		linePrices := prices[line.Index]
		if len(linePrices) == 0 {
			continue
		}
		max := 0.0
		for _, p := range linePrices {
			if p.Value > max {
				max = p.Value
			}
		}
		if max <= 0 {
			continue
		}

		lower := strings.ToLower(line.Text)
		switch {
		case ContainsWord(lower, e.vocab.SubtotalWords) && !strings.Contains(lower, "net amount"):
			if max > t.Subtotal {
				t.Subtotal = max
			}
		case ContainsWord(lower, e.vocab.ServiceWords):
			if max > t.ServiceCharge {
				t.ServiceCharge = max
			}
		case ContainsWord(lower, e.vocab.TaxWords):
			if max > t.Tax {
				t.Tax = max
			}
		case ContainsWord(lower, e.vocab.TotalWords):
			if max > t.Total {
				t.Total = max
			}
		}
	}

	return t
}
