package extract

import (
	"strings"
	"unicode"

	"github.com/splitkaro/billscan/internal/models"
)

// LineRole is the classification assigned to a single receipt line
type LineRole string

const (
	RoleHeader        LineRole = "header"
	RoleTotalLike     LineRole = "total-like"
	RoleMerchantInfo  LineRole = "merchant-info"
	RoleItemCandidate LineRole = "item-candidate"
	RoleUnclassified  LineRole = "unclassified"
)

// ClassifiedLine is one input line with its assigned role
type ClassifiedLine struct {
	Text  string
	Index int
	Role  LineRole
}

// ClassifyReceiptType inspects raw text for domain keywords and picks the
// extraction strategy. First match wins, checked in priority order:
// transportation, train, restaurant, retail, then general.
func (e *Extractor) ClassifyReceiptType(text string) models.ReceiptType {
	lower := strings.ToLower(text)

	for abbr := range e.vocab.TransportOrgs {
		if strings.Contains(text, abbr) {
			return models.ReceiptTypeTransportation
		}
	}
	if ContainsWord(lower, e.vocab.TransportWords) {
		return models.ReceiptTypeTransportation
	}
	if ContainsWord(lower, e.vocab.TrainWords) {
		return models.ReceiptTypeTrain
	}
	if ContainsWord(lower, e.vocab.FoodWords) || ContainsWord(lower, []string{"restaurant", "cafe", "hotel"}) {
		return models.ReceiptTypeRestaurant
	}
	if ContainsWord(lower, e.vocab.RetailWords) {
		return models.ReceiptTypeRetail
	}
	return models.ReceiptTypeGeneral
}

// SplitLines cleans the OCR text and splits it into trimmed, non-empty lines.
func SplitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.ReplaceAll(l, "|", " ")
		l = strings.ReplaceAll(l, "\\", " ")
		l = strings.Join(strings.Fields(l), " ")
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// classifyLines assigns a role to every line. Rules apply in order, first
// match wins: header vocabulary, total keywords, merchant contact patterns,
// then a noise gate (too short or too numeric), else item candidate.
func (e *Extractor) classifyLines(lines []string) []ClassifiedLine {
	out := make([]ClassifiedLine, 0, len(lines))
	for i, line := range lines {
		out = append(out, ClassifiedLine{
			Text:  line,
			Index: i,
			Role:  e.classifyLine(line),
		})
	}
	return out
}

func (e *Extractor) classifyLine(line string) LineRole {
	lower := strings.ToLower(line)

	if e.isHeaderLine(lower) {
		return RoleHeader
	}
	if ContainsWord(lower, e.vocab.TotalWords) ||
		ContainsWord(lower, e.vocab.SubtotalWords) ||
		ContainsWord(lower, e.vocab.TaxWords) ||
		ContainsWord(lower, e.vocab.ServiceWords) {
		return RoleTotalLike
	}
	if e.isMerchantInfoLine(line, lower) {
		return RoleMerchantInfo
	}
	if len([]rune(line)) < 3 || numericDensity(line) > 0.7 {
		return RoleUnclassified
	}
	return RoleItemCandidate
}

// isHeaderLine matches column-header rows like "ITEM QTY RATE AMOUNT".
// A single header word in a longer line is not enough, real item lines
// mention "plate" or "price" too.
func (e *Extractor) isHeaderLine(lower string) bool {
	hits := CountWords(lower, e.vocab.HeaderWords)
	if hits == 0 {
		return false
	}
	words := len(strings.Fields(lower))
	return hits >= 2 || words <= 2
}

func (e *Extractor) isMerchantInfoLine(line, lower string) bool {
	if e.vocab.PhonePattern.MatchString(line) ||
		e.vocab.EmailPattern.MatchString(line) ||
		e.vocab.WebsitePattern.MatchString(line) {
		return true
	}
	if ContainsWord(lower, e.vocab.AddressWords) {
		return true
	}
	if ContainsWord(lower, e.vocab.CityNames) && e.vocab.PinCodePattern.MatchString(line) {
		return true
	}
	return false
}

// numericDensity returns the fraction of non-space characters that are digits.
func numericDensity(line string) float64 {
	digits, total := 0, 0
	for _, r := range line {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(digits) / float64(total)
}
