package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/splitkaro/billscan/internal/models"
)

// Fare candidates must land in this range to be considered at all.
const (
	fareRangeMin = 10
	fareRangeMax = 2000
)

var (
	depotPattern   = regexp.MustCompile(`(?i)\b([A-Z][A-Za-z ]{2,30})\s+DEPOT\b`)
	routeToPattern = regexp.MustCompile(`(?i)\b([A-Za-z .]{3,25})\s+to\s+([A-Za-z .]{3,25})\b`)
	routeDashLine  = regexp.MustCompile(`^([A-Za-z .]{3,25})\s*[-–]\s*([A-Za-z .]{3,25})$`)
	originKeyword  = regexp.MustCompile(`(?i)\b(?:origin|source|from)\s*:?\s*([A-Za-z .]{3,25})`)
	destKeyword    = regexp.MustCompile(`(?i)\b(?:destination|to)\s*:?\s*([A-Za-z .]{3,25})`)
	boardingKw     = regexp.MustCompile(`(?i)\b(?:boarding|pickup|pick-up)\s*(?:point|at)?\s*:?\s*([A-Za-z .]{3,25})`)
	droppingKw     = regexp.MustCompile(`(?i)\b(?:dropping|drop|drop-off)\s*(?:point|at)?\s*:?\s*([A-Za-z .]{3,25})`)
)

type fareCandidate struct {
	value      float64
	line       ClassifiedLine
	lastOnLine bool
	score      int
	reasons    []string
}

// extractTransportReceipt is the alternate strategy for bus and rail
// tickets: a single dominant fare amid distances, seat numbers and
// reference codes, with little of the vocabulary a merchant receipt has.
func (e *Extractor) extractTransportReceipt(lines []ClassifiedLine, prices [][]ScoredPrice) *models.Receipt {
	r := &models.Receipt{}

	r.MerchantInfo = e.extractTransportOperator(lines)

	from, to := e.extractRoute(lines)
	distance := e.extractDistance(lines)
	fare := e.resolveFare(lines, prices)

	item := models.LineItem{
		Name:     formatRoute(from, to, distance),
		Price:    fare,
		Quantity: 1,
		Kind:     models.ItemKindTransportation,
	}
	if fare > 0 {
		r.Items = []models.LineItem{item}
	}

	// Tickets carry one inclusive amount; no separate tax modeling.
	r.Total = fare
	r.Subtotal = fare
	return r
}

// extractTransportOperator resolves the operator name: known abbreviation
// first, then a "<NAME> DEPOT" line, then the raw matching line.
func (e *Extractor) extractTransportOperator(lines []ClassifiedLine) models.MerchantInfo {
	info := models.MerchantInfo{}
	for _, line := range lines {
		for abbr, full := range e.vocab.TransportOrgs {
			if strings.Contains(line.Text, abbr) {
				info.Name = full
				return info
			}
		}
	}
	for _, line := range lines {
		if m := depotPattern.FindStringSubmatch(line.Text); m != nil {
			info.Name = strings.TrimSpace(m[0])
			return info
		}
	}
	for _, line := range lines {
		if ContainsWord(strings.ToLower(line.Text), e.vocab.TransportWords) {
			info.Name = line.Text
			return info
		}
	}
	return info
}

// extractRoute tries six patterns in fallback order. Endpoints found by an
// earlier pattern are never overwritten by a later one.
func (e *Extractor) extractRoute(lines []ClassifiedLine) (from, to string) {
	set := func(f, t string) {
		if from == "" && f != "" {
			from = cleanEndpoint(f)
		}
		if to == "" && t != "" {
			to = cleanEndpoint(t)
		}
	}

	for _, line := range lines {
		if from != "" && to != "" {
			break
		}
		if m := routeToPattern.FindStringSubmatch(line.Text); m != nil {
			set(m[1], m[2])
			continue
		}
		if m := routeDashLine.FindStringSubmatch(line.Text); m != nil {
			set(m[1], m[2])
			continue
		}
		if f, t := e.twoCitiesOnLine(line.Text); f != "" {
			set(f, t)
			continue
		}
		if m := originKeyword.FindStringSubmatch(line.Text); m != nil {
			set(m[1], "")
		}
		if m := destKeyword.FindStringSubmatch(line.Text); m != nil && !strings.Contains(strings.ToLower(line.Text), " to ") {
			set("", m[1])
		}
		if m := boardingKw.FindStringSubmatch(line.Text); m != nil {
			set(m[1], "")
		}
		if m := droppingKw.FindStringSubmatch(line.Text); m != nil {
			set("", m[1])
		}
	}
	return from, to
}

// twoCitiesOnLine returns the first two recognized city names on a line,
// in order of appearance.
func (e *Extractor) twoCitiesOnLine(text string) (string, string) {
	lower := strings.ToLower(text)
	type hit struct {
		pos  int
		name string
	}
	var hits []hit
	for _, city := range e.vocab.CityNames {
		if pos := strings.Index(lower, city); pos >= 0 {
			hits = append(hits, hit{pos, city})
		}
	}
	if len(hits) < 2 {
		return "", ""
	}
	first, second := hits[0], hits[1]
	if second.pos < first.pos {
		first, second = second, first
	}
	for _, h := range hits[2:] {
		if h.pos < first.pos {
			second = first
			first = h
		} else if h.pos < second.pos {
			second = h
		}
	}
	return strings.ToUpper(first.name[:1]) + first.name[1:], strings.ToUpper(second.name[:1]) + second.name[1:]
}

func cleanEndpoint(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.Trim(s, ".,:- ")
}

func (e *Extractor) extractDistance(lines []ClassifiedLine) float64 {
	for _, line := range lines {
		if m := e.vocab.DistanceKM.FindStringSubmatch(line.Text); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				return v
			}
		}
	}
	return 0
}

// resolveFare gathers every in-range numeric candidate and applies the
// resolution ladder: explicit keyword scoring first, then the one/two
// candidate shortcuts, then range-based context scoring for larger sets.
//
// The two-candidate rule keeps the larger value. That heuristic is known
// to lose when the smaller number is the fare and the larger is a distance
// printed without its unit; the regression test in transport_test.go pins
// the behavior rather than hiding it.
func (e *Extractor) resolveFare(lines []ClassifiedLine, prices [][]ScoredPrice) float64 {
	var candidates []fareCandidate
	for _, line := range lines {
		linePrices := prices[line.Index]
		for i, p := range linePrices {
			if p.Value < fareRangeMin || p.Value > fareRangeMax {
				continue
			}
			candidates = append(candidates, fareCandidate{
				value:      p.Value,
				line:       line,
				lastOnLine: i == len(linePrices)-1,
			})
		}
	}
	if len(candidates) == 0 {
		return 0
	}

	if v, ok := e.findExplicitFare(candidates); ok {
		return v
	}

	switch len(candidates) {
	case 1:
		return candidates[0].value
	case 2:
		// The lower of two stray numbers is often a reference or partial.
		if candidates[0].value > candidates[1].value {
			return candidates[0].value
		}
		return candidates[1].value
	}

	return e.scoreFaresByContext(candidates)
}

var fareKeywordWeights = []struct {
	words  []string
	weight int
	reason string
}{
	{[]string{"fare", "amount"}, 20, "fare/amount keyword"},
	{[]string{"total", "net"}, 15, "total/net keyword"},
	{[]string{"price", "cost"}, 12, "price/cost keyword"},
	{[]string{"passenger", "ticket"}, 10, "passenger/ticket keyword"},
	{[]string{"journey", "travel"}, 8, "journey keyword"},
}

// findExplicitFare scores each candidate by the keywords on its line and
// returns the winner only when something actually scored positive.
func (e *Extractor) findExplicitFare(candidates []fareCandidate) (float64, bool) {
	best := -1
	bestScore := 0
	for i := range candidates {
		c := &candidates[i]
		lower := strings.ToLower(c.line.Text)

		for _, kw := range fareKeywordWeights {
			if ContainsWord(lower, kw.words) {
				c.score += kw.weight
				c.reasons = append(c.reasons, kw.reason)
			}
		}
		if c.value != math.Trunc(c.value) {
			c.score += 5
			c.reasons = append(c.reasons, "decimal format")
		}
		if c.lastOnLine {
			c.score += 3
			c.reasons = append(c.reasons, "last price on line")
		}
		if e.vocab.DistanceKM.MatchString(c.line.Text) || strings.Contains(lower, "km") {
			c.score -= 5
			c.reasons = append(c.reasons, "distance context")
		}
		if e.vocab.DatePattern.MatchString(c.line.Text) {
			c.score -= 8
			c.reasons = append(c.reasons, "time/date context")
		}
		if ContainsWord(lower, seatContextWords) {
			c.score -= 3
			c.reasons = append(c.reasons, "seat context")
		}

		if c.score > bestScore {
			bestScore = c.score
			best = i
		}
	}
	if best < 0 || bestScore <= 0 {
		return 0, false
	}
	return candidates[best].value, true
}

// scoreFaresByContext ranks three or more candidates purely on numeric
// shape: typical fare bands, decimal formatting, round-number and extreme
// value penalties, plus a bonus for being the maximum.
func (e *Extractor) scoreFaresByContext(candidates []fareCandidate) float64 {
	maxVal := 0.0
	for _, c := range candidates {
		if c.value > maxVal {
			maxVal = c.value
		}
	}

	bestVal := candidates[0].value
	bestScore := math.MinInt32
	for _, c := range candidates {
		score := 0
		switch {
		case c.value >= 100 && c.value <= 300:
			score += 10
		case c.value >= 50 && c.value <= 500:
			score += 5
		}
		if c.value != math.Trunc(c.value) {
			score += 8
		}
		if c.value > 100 && math.Mod(c.value, 100) == 0 {
			score -= 3
		}
		if c.value >= 100 && c.value <= 150 && c.value == math.Trunc(c.value) {
			score -= 2 // possible distance
		}
		if c.value == maxVal {
			score += 7
		}
		if c.value < 50 {
			score -= 10
		}
		if c.value > 1000 {
			score -= 15
		}

		if score > bestScore {
			bestScore = score
			bestVal = c.value
		}
	}
	return bestVal
}
