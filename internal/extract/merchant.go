package extract

import (
	"strings"
	"unicode"

	"github.com/splitkaro/billscan/internal/models"
)

// merchantNameWindow is how many lines from the top are considered for the
// merchant name. Receipt heads conventionally carry the identity block.
const merchantNameWindow = 10

type nameCandidate struct {
	text    string
	score   int
	reasons []string
}

// extractMerchantInfo scans the head of the receipt for the merchant name
// and contact fields. The name is chosen by scoring every early line and
// keeping the single best candidate; contact fields are first-match regex
// pulls over the same window.
func (e *Extractor) extractMerchantInfo(lines []ClassifiedLine) models.MerchantInfo {
	info := models.MerchantInfo{}

	window := lines
	if len(window) > merchantNameWindow {
		window = window[:merchantNameWindow]
	}

	best := nameCandidate{score: 0} // unset name unless something scores above zero
	for _, line := range window {
		c := e.scoreNameCandidate(line)
		if c.score > best.score {
			best = c
		}
	}
	if best.text != "" {
		info.Name = best.text
	}

	for _, line := range window {
		if info.Phone == "" {
			if m := e.vocab.PhonePattern.FindString(line.Text); m != "" {
				info.Phone = strings.TrimSpace(m)
			}
		}
		if info.Email == "" {
			if m := e.vocab.EmailPattern.FindString(line.Text); m != "" {
				info.Email = m
			}
		}
		if info.Website == "" {
			if m := e.vocab.WebsitePattern.FindString(line.Text); m != "" {
				info.Website = m
			}
		}
		if info.TaxID == "" {
			if m := e.vocab.TaxIDPattern.FindString(line.Text); m != "" {
				info.TaxID = strings.TrimSpace(strings.TrimPrefix(strings.ToUpper(m), "GSTIN"))
				info.TaxID = strings.TrimLeft(info.TaxID, ": ")
			}
		}
		if info.Address == "" && line.Role == RoleMerchantInfo &&
			ContainsWord(strings.ToLower(line.Text), e.vocab.AddressWords) {
			info.Address = line.Text
		}
	}

	return info
}

func (e *Extractor) scoreNameCandidate(line ClassifiedLine) nameCandidate {
	c := nameCandidate{text: strings.TrimSpace(line.Text)}
	lower := strings.ToLower(line.Text)
	add := func(n int, why string) {
		c.score += n
		c.reasons = append(c.reasons, why)
	}

	if len(e.findPriceTokens(line.Text)) > 0 {
		add(-5, "contains price")
	}
	if line.Role == RoleHeader {
		add(-4, "header line")
	}

	// Earlier lines are likelier to be the name.
	add(5-line.Index/2, "position")

	if ContainsWord(lower, e.vocab.BusinessTypeWords) {
		add(4, "business type word")
	}
	if isTitleOrUpper(line.Text) {
		add(3, "title case / uppercase")
	}
	if numericDensity(line.Text) > 0.3 {
		add(-4, "digit heavy")
	}
	if ContainsWord(lower, e.vocab.CityNames) {
		add(2, "city name")
	}

	return c
}

// isTitleOrUpper reports whether every word starts with an uppercase letter
// or the whole line is uppercase, the typical formatting of printed names.
func isTitleOrUpper(s string) bool {
	words := strings.Fields(s)
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		r := []rune(w)[0]
		if unicode.IsLetter(r) && !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}
