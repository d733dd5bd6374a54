package extract

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/splitkaro/billscan/internal/models"
)

// ScoredPrice is a numeric token pulled from a line together with a
// context-derived plausibility score. Multiple candidates may exist per
// line; extractors pick among them by score.
type ScoredPrice struct {
	Value             float64
	RawToken          string
	HasCurrencySymbol bool
	ContextScore      int
	Reasons           []string
}

// minimum score below which a candidate is discarded outright
const priceScoreFloor = -5

type priceMatch struct {
	start, end int
	raw        string
	value      float64
	currency   bool
}

// tokenizePrices scans a line with every price pattern, normalizes and
// parses each match, and scores it against the surrounding keywords and
// the active receipt type. Results come back sorted by score descending.
func (e *Extractor) tokenizePrices(line ClassifiedLine, rtype models.ReceiptType) []ScoredPrice {
	matches := e.findPriceTokens(line.Text)
	if len(matches) == 0 {
		return nil
	}

	out := make([]ScoredPrice, 0, len(matches))
	for _, m := range matches {
		sp := e.scorePrice(m, line, rtype)
		if sp.ContextScore <= priceScoreFloor {
			continue
		}
		out = append(out, sp)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ContextScore > out[j].ContextScore
	})
	return out
}

// findPriceTokens runs the patterns in precedence order (currency-prefixed,
// two-decimal, comma-decimal, whole number) and keeps the first match per
// span so a token is never counted twice.
func (e *Extractor) findPriceTokens(text string) []priceMatch {
	var matches []priceMatch
	claimed := make([]bool, len(text))

	claim := func(start, end int) bool {
		for i := start; i < end && i < len(claimed); i++ {
			if claimed[i] {
				return false
			}
		}
		for i := start; i < end && i < len(claimed); i++ {
			claimed[i] = true
		}
		return true
	}

	for _, loc := range e.vocab.CurrencyPrice.FindAllStringSubmatchIndex(text, -1) {
		raw := text[loc[2]:loc[3]]
		if v, ok := parseAmount(raw); ok && claim(loc[0], loc[1]) {
			matches = append(matches, priceMatch{loc[0], loc[1], text[loc[0]:loc[1]], v, true})
		}
	}
	for _, loc := range e.vocab.DecimalPrice.FindAllStringSubmatchIndex(text, -1) {
		raw := text[loc[2]:loc[3]]
		if v, ok := parseAmount(raw); ok && claim(loc[0], loc[1]) {
			matches = append(matches, priceMatch{loc[0], loc[1], raw, v, false})
		}
	}
	for _, loc := range e.vocab.CommaPrice.FindAllStringSubmatchIndex(text, -1) {
		raw := text[loc[2]:loc[3]]
		if v, ok := parseAmount(raw); ok && claim(loc[0], loc[1]) {
			matches = append(matches, priceMatch{loc[0], loc[1], raw, v, false})
		}
	}
	for _, loc := range e.vocab.WholePrice.FindAllStringSubmatchIndex(text, -1) {
		raw := text[loc[2]:loc[3]]
		if v, ok := parseAmount(raw); ok && claim(loc[0], loc[1]) {
			matches = append(matches, priceMatch{loc[0], loc[1], raw, v, false})
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].start < matches[j].start })
	return matches
}

// parseAmount normalizes separator conventions and parses the token.
// A comma followed by exactly two digits is a decimal separator
// ("178,00" reads as 178.00); any other comma is a thousands separator.
// Non-positive and unparseable tokens are dropped silently.
func parseAmount(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if i := strings.LastIndex(s, ","); i >= 0 && len(s)-i-1 == 2 && !strings.Contains(s[i:], ".") {
		s = s[:i] + "." + s[i+1:]
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

var idContextWords = []string{"no.", "no:", " no ", "bill no", "ticket no", "receipt no", "invoice no", "gstin"}
var seatContextWords = []string{"seat", "berth", "coach", "platform"}

// Short identifier tokens need word boundaries: as substrings they hit
// ordinary words ("paid", "idli", "refund") and sink their prices.
var idShortWordPattern = regexp.MustCompile(`(?i)\b(?:id|ref|pnr)\b`)

func (e *Extractor) scorePrice(m priceMatch, line ClassifiedLine, rtype models.ReceiptType) ScoredPrice {
	lower := strings.ToLower(line.Text)
	sp := ScoredPrice{
		Value:             m.value,
		RawToken:          m.raw,
		HasCurrencySymbol: m.currency,
	}
	add := func(n int, why string) {
		sp.ContextScore += n
		sp.Reasons = append(sp.Reasons, why)
	}

	if m.currency {
		add(10, "currency symbol")
	}

	switch {
	case line.Role == RoleTotalLike && ContainsWord(lower, e.vocab.TotalWords):
		add(15, "total keyword")
	case ContainsWord(lower, []string{"fare", "price", "rate", "cost"}):
		add(12, "fare/price keyword")
	case ContainsWord(lower, e.vocab.SubtotalWords):
		add(8, "subtotal/net keyword")
	case ContainsWord(lower, e.vocab.TaxWords):
		add(5, "tax keyword")
	}

	// Range plausibility depends on the active receipt type: bus fares
	// cluster far tighter than general merchant amounts.
	switch rtype {
	case models.ReceiptTypeTransportation, models.ReceiptTypeTrain:
		switch {
		case m.value >= 50 && m.value <= 500:
			add(8, "typical fare range")
		case m.value >= 10 && m.value <= 2000:
			add(4, "plausible fare range")
		default:
			add(-6, "outside fare range")
		}
	default:
		if m.value >= 1 && m.value <= 10000 {
			add(2, "plausible amount")
		} else {
			add(-6, "outside amount range")
		}
	}

	if m.value != math.Trunc(m.value) {
		add(3, "decimal value")
	}
	if m.value >= 100 && math.Mod(m.value, 100) == 0 {
		add(-2, "round hundreds")
	}

	if !m.currency {
		if ContainsWord(lower, idContextWords) || idShortWordPattern.MatchString(line.Text) {
			add(-8, "id context")
		}
		if e.vocab.DatePattern.MatchString(line.Text) {
			add(-6, "date/time context")
		}
		if ContainsWord(lower, seatContextWords) {
			add(-3, "seat context")
		}
	}

	return sp
}
