package extract

import (
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Vocabulary holds the keyword tables and compiled patterns the extraction
// pipeline runs on. It is built once and never mutated, so a single instance
// is safe to share across concurrent extractions. Alternate regional formats
// can be supported by constructing a different Vocabulary.
type Vocabulary struct {
	// Receipt type routing
	TransportOrgs  map[string]string // abbreviation -> canonical operator name
	TransportWords []string
	TrainWords     []string
	FoodWords      []string
	RetailWords    []string

	// Line classification
	HeaderWords       []string
	TotalWords        []string
	SubtotalWords     []string
	TaxWords          []string
	ServiceWords      []string
	BusinessTypeWords []string
	AddressWords      []string
	CityNames         []string
	QuantityWords     []string
	FareWords         []string

	// Compiled patterns
	CurrencyPrice  *regexp.Regexp // ₹/Rs/INR prefixed amount
	DecimalPrice   *regexp.Regexp // 123.45
	CommaPrice     *regexp.Regexp // 178,00 (comma as decimal separator)
	WholePrice     *regexp.Regexp // bare integer
	PhonePattern   *regexp.Regexp
	EmailPattern   *regexp.Regexp
	WebsitePattern *regexp.Regexp
	TaxIDPattern   *regexp.Regexp
	PinCodePattern *regexp.Regexp
	QuantityMarker *regexp.Regexp // "2x", "3 qty", "1 pc"
	DistanceKM     *regexp.Regexp
	DatePattern    *regexp.Regexp
}

// DefaultVocabulary returns the tables tuned for Indian-format receipts:
// rupee amounts, GST terminology, state transport operators.
func DefaultVocabulary() *Vocabulary {
	return &Vocabulary{
		TransportOrgs: map[string]string{
			"GSRTC":  "Gujarat State Road Transport Corporation",
			"MSRTC":  "Maharashtra State Road Transport Corporation",
			"KSRTC":  "Karnataka State Road Transport Corporation",
			"APSRTC": "Andhra Pradesh State Road Transport Corporation",
			"TSRTC":  "Telangana State Road Transport Corporation",
			"UPSRTC": "Uttar Pradesh State Road Transport Corporation",
			"RSRTC":  "Rajasthan State Road Transport Corporation",
			"HRTC":   "Himachal Road Transport Corporation",
			"BEST":   "Brihanmumbai Electric Supply and Transport",
			"DTC":    "Delhi Transport Corporation",
		},
		TransportWords: []string{
			"bus", "ticket", "depot", "conductor", "passenger", "travels",
			"roadways", "transport corporation", "boarding", "journey",
		},
		TrainWords: []string{
			"railway", "irctc", "train", "pnr", "coach", "berth", "rail",
		},
		FoodWords: []string{
			"restaurant", "cafe", "hotel", "dhaba", "kitchen", "biryani",
			"paneer", "chicken", "dal", "roti", "naan", "rice", "dosa",
			"thali", "curry", "masala", "tea", "coffee", "lassi", "juice",
			"tikka", "kebab", "soup", "salad", "dessert", "ice cream",
		},
		RetailWords: []string{
			"invoice", "bill", "purchase", "mart", "store", "bazaar",
			"supermarket", "pharmacy", "medical",
		},
		HeaderWords: []string{
			"item", "qty", "rate", "price", "bill", "receipt", "invoice",
			"description", "particulars", "sr no", "s.no",
		},
		TotalWords:    []string{"total", "grand total", "net total", "amount payable", "net amount", "amount due", "balance due"},
		SubtotalWords: []string{"subtotal", "sub total", "sub-total", "net"},
		TaxWords:      []string{"tax", "gst", "cgst", "sgst", "igst", "vat"},
		ServiceWords:  []string{"service charge", "service chg", "svc charge", "service"},
		BusinessTypeWords: []string{
			"restaurant", "hotel", "cafe", "store", "mart", "corporation",
			"depot", "travels", "bakery", "traders", "enterprises", "agency",
			"pvt", "ltd", "private limited",
		},
		AddressWords: []string{
			"road", "street", "lane", "sector", "nagar", "marg", "colony",
			"chowk", "circle", "cross", "main", "near", "opp", "floor",
		},
		CityNames: []string{
			"ahmedabad", "mumbai", "delhi", "bangalore", "bengaluru",
			"chennai", "kolkata", "hyderabad", "pune", "surat", "jaipur",
			"vadodara", "rajkot", "lucknow", "nagpur", "indore", "bhopal",
			"vapi", "nashik", "goa",
		},
		QuantityWords: []string{"qty", "nos", "pc", "pcs", "plate", "half", "full"},
		FareWords:     []string{"fare", "amount", "total", "net", "price", "cost", "passenger", "ticket", "journey", "travel"},

		// The grouped-thousands alternative must require at least one comma
		// group: alternation is leftmost-first, and with `(?:,\d{3})*` the
		// first branch matches just the leading 3 digits of ₹1120.00 and
		// truncates the amount.
		CurrencyPrice:  regexp.MustCompile(`(?:₹|Rs\.?|INR)\s*(\d{1,3}(?:,\d{3})+(?:\.\d{1,2})?|\d+(?:\.\d{1,2})?)`),
		DecimalPrice:   regexp.MustCompile(`\b(\d{1,5}\.\d{2})\b`),
		CommaPrice:     regexp.MustCompile(`\b(\d{1,4},\d{2})\b`),
		WholePrice:     regexp.MustCompile(`\b(\d{1,5})\b`),
		PhonePattern:   regexp.MustCompile(`(?:\+91[\s-]?)?(?:0)?[6-9]\d{9}\b|\b0\d{2,4}[\s-]\d{6,8}\b`),
		EmailPattern:   regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
		WebsitePattern: regexp.MustCompile(`(?:www\.|https?://)[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
		TaxIDPattern:   regexp.MustCompile(`\b\d{2}[A-Z]{5}\d{4}[A-Z]\d[A-Z0-9]{2}\b|(?i)GSTIN\s*:?\s*([A-Z0-9]{15})`),
		PinCodePattern: regexp.MustCompile(`\b[1-9]\d{5}\b`),
		QuantityMarker: regexp.MustCompile(`(?i)\b(\d{1,2})\s*(?:x\b|qty|nos\b|pcs?\b|plates?\b)|\bx\s*(\d{1,2})\b`),
		DistanceKM:     regexp.MustCompile(`(?i)\b(\d{1,4}(?:\.\d+)?)\s*kms?\b`),
		DatePattern:    regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b|\b\d{1,2}:\d{2}\b`),
	}
}

// ContainsWord reports whether any vocabulary term occurs in the line,
// tolerating a single OCR character error per word (so "T0TAL" still
// matches "total"). Exact substring match is tried first, fuzzy second.
func ContainsWord(line string, words []string) bool {
	return MatchWord(line, words) != ""
}

// MatchWord returns the first vocabulary term found in the line, or "".
func MatchWord(line string, words []string) string {
	lower := strings.ToLower(line)
	for _, w := range words {
		if strings.Contains(lower, w) {
			return w
		}
	}
	// Fuzzy pass: compare each token of the line against single-token
	// vocabulary words. Words shorter than 4 runes are exact-only, the
	// edit distance would make them match everything.
	tokens := strings.FieldsFunc(lower, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	for _, w := range words {
		if strings.ContainsAny(w, " -") || len(w) < 4 {
			continue
		}
		for _, tok := range tokens {
			if len(tok) < 4 {
				continue
			}
			if levenshtein.ComputeDistance(tok, w) <= 1 {
				return w
			}
		}
	}
	return ""
}

// CountWords returns how many distinct vocabulary terms occur in the line.
func CountWords(line string, words []string) int {
	lower := strings.ToLower(line)
	n := 0
	for _, w := range words {
		if strings.Contains(lower, w) {
			n++
		}
	}
	return n
}
