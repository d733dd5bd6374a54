package extract

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/splitkaro/billscan/internal/models"
)

// itemScoreThreshold is the minimum worthiness score for a line to become
// an item candidate.
const itemScoreThreshold = 3

type itemCandidate struct {
	item    models.LineItem
	score   int
	reasons []string
}

// extractItems walks the item-candidate lines, scores each for item
// worthiness, and converts qualifying lines into LineItems. Items are
// deduplicated by (lowercased name, price), first occurrence kept.
func (e *Extractor) extractItems(lines []ClassifiedLine, prices [][]ScoredPrice) []models.LineItem {
	var items []models.LineItem
	seen := make(map[string]bool)

	for _, line := range lines {
		if line.Role != RoleItemCandidate {
			continue
		}
		linePrices := prices[line.Index]
		if len(linePrices) == 0 {
			continue
		}

		cand, ok := e.scoreItemLine(line, linePrices, len(lines))
		if !ok {
			continue
		}

		key := strings.ToLower(cand.item.Name) + "|" + strconv.FormatFloat(cand.item.Price, 'f', 2, 64)
		if seen[key] {
			continue
		}
		seen[key] = true
		items = append(items, cand.item)
	}

	return items
}

func (e *Extractor) scoreItemLine(line ClassifiedLine, linePrices []ScoredPrice, totalLines int) (itemCandidate, bool) {
	lower := strings.ToLower(line.Text)
	c := itemCandidate{score: 5, reasons: []string{"base"}}
	add := func(n int, why string) {
		c.score += n
		c.reasons = append(c.reasons, why)
	}

	if n := CountWords(lower, e.vocab.FoodWords); n > 0 {
		add(2*n, "food vocabulary")
	}
	if CountWords(lower, e.vocab.QuantityWords) > 0 || e.vocab.QuantityMarker.MatchString(line.Text) {
		add(3, "quantity indicator")
	}

	// Items rarely open or close a receipt; favor the middle 60%.
	if totalLines > 4 {
		pos := float64(line.Index) / float64(totalLines)
		if pos >= 0.2 && pos <= 0.8 {
			add(2, "middle of document")
		}
	}

	if hasMixedAlnum(line.Text) {
		add(2, "mixed alphanumeric")
	}

	if ContainsWord(lower, e.vocab.AddressWords) || e.vocab.PhonePattern.MatchString(line.Text) {
		add(-10, "address or phone")
	}

	if c.score <= itemScoreThreshold {
		return c, false
	}

	price, ok := pickItemPrice(lower, linePrices)
	if !ok {
		return c, false
	}

	name := e.stripItemName(line.Text, linePrices)
	if name == "" {
		return c, false
	}

	c.item = models.LineItem{
		Name:     name,
		Price:    price,
		Quantity: e.parseQuantity(line.Text),
		Kind:     models.ItemKindGeneric,
	}
	return c, true
}

// pickItemPrice chooses among a line's price candidates. A line that talks
// about a total wants the largest number; otherwise the first non-round
// candidate in the reasonable per-item range wins, since round numbers on
// item lines are often quantities or codes.
func pickItemPrice(lower string, linePrices []ScoredPrice) (float64, bool) {
	if strings.Contains(lower, "total") || strings.Contains(lower, "amount") {
		max := 0.0
		for _, p := range linePrices {
			if p.Value > max {
				max = p.Value
			}
		}
		return max, max > 0
	}

	for _, p := range linePrices {
		if p.Value >= 1 && p.Value <= 2000 && p.Value != math.Trunc(p.Value) {
			return p.Value, true
		}
	}
	for _, p := range linePrices {
		if p.Value >= 1 && p.Value <= 2000 {
			return p.Value, true
		}
	}
	// Fall back to the top-scored candidate.
	return linePrices[0].Value, linePrices[0].Value > 0
}

// hasMixedAlnum reports whether the line contains both letters and digits,
// the usual shape of a "name price" item row.
func hasMixedAlnum(s string) bool {
	hasLetter, hasDigit := false, false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
		if hasLetter && hasDigit {
			return true
		}
	}
	return false
}

// stripItemName removes price substrings and quantity markers from the line
// and trims what remains into an item name.
func (e *Extractor) stripItemName(text string, linePrices []ScoredPrice) string {
	name := text
	for _, p := range linePrices {
		name = strings.ReplaceAll(name, p.RawToken, " ")
	}
	name = e.vocab.QuantityMarker.ReplaceAllString(name, " ")
	name = strings.NewReplacer("₹", "", "Rs.", "", "Rs", "", "INR", "", "@", "", "*", "", "#", "").Replace(name)
	name = strings.Join(strings.Fields(name), " ")
	name = strings.Trim(name, ".,;:-_ ")
	if len([]rune(name)) < 2 {
		return ""
	}
	return name
}

func (e *Extractor) parseQuantity(text string) int {
	m := e.vocab.QuantityMarker.FindStringSubmatch(text)
	if m == nil {
		return 1
	}
	for _, g := range m[1:] {
		if g == "" {
			continue
		}
		if q, err := strconv.Atoi(g); err == nil && q >= 1 {
			return q
		}
	}
	return 1
}

// formatRoute builds the transportation item name from its endpoints.
func formatRoute(from, to string, distanceKM float64) string {
	if from == "" || to == "" {
		return "Bus Ticket"
	}
	if distanceKM > 0 {
		return fmt.Sprintf("%s to %s (%g km)", from, to, distanceKM)
	}
	return fmt.Sprintf("%s to %s", from, to)
}
