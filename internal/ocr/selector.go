package ocr

import (
	"context"
	"errors"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/splitkaro/billscan/internal/extract"
)

// ErrExtractionFailed is returned when every engine/variant combination
// errored or produced empty text.
var ErrExtractionFailed = errors.New("all OCR attempts failed or returned empty text")

// goodEnoughConfidence is the plausibility score at which the selector
// stops trying further variants.
const goodEnoughConfidence = 0.7

// shortTextThreshold penalizes suspiciously short transcriptions.
const shortTextThreshold = 50

var currencyMarker = regexp.MustCompile(`₹|Rs\.?|INR`)
var wellFormedPrice = regexp.MustCompile(`\b\d{1,5}[.,]\d{2}\b`)

// Selection is the single best transcription across all attempts.
type Selection struct {
	Text       string
	Confidence float64
	Method     string // "<engine>/<variant>"
}

// Selector fans receipt image variants out to the available engines and
// keeps the highest-scoring transcription. Attempts run sequentially with
// early exit once a good-enough result appears, which bounds cost; each
// attempt carries its own timeout so no single engine call can stall the
// request.
type Selector struct {
	primary  Engine
	fallback Engine
	vocab    *extract.Vocabulary
	timeout  time.Duration
}

// NewSelector builds a selector. fallback may be nil.
func NewSelector(primary, fallback Engine, vocab *extract.Vocabulary, timeout time.Duration) *Selector {
	if vocab == nil {
		vocab = extract.DefaultVocabulary()
	}
	return &Selector{primary: primary, fallback: fallback, vocab: vocab, timeout: timeout}
}

// SelectBest runs the variants through the primary engine, falling back to
// the secondary across all variants when nothing reaches the confidence
// threshold. Texts from different attempts are never blended. Individual
// engine failures are absorbed; only total failure surfaces as an error.
func (s *Selector) SelectBest(ctx context.Context, variants []Variant) (*Selection, error) {
	best := &Selection{Confidence: -1}

	try := func(engine Engine, v Variant) bool {
		attemptCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		result, err := engine.Recognize(attemptCtx, v.Path)
		if err != nil {
			log.Printf("Warning: OCR attempt %s/%s failed: %v", engine.Name(), v.Name, err)
			return false
		}
		text := strings.TrimSpace(result.Text)
		if text == "" {
			return false
		}

		conf := s.scoreText(text)
		if conf > best.Confidence {
			*best = Selection{
				Text:       text,
				Confidence: conf,
				Method:     engine.Name() + "/" + v.Name,
			}
		}
		return conf >= goodEnoughConfidence
	}

	for _, v := range variants {
		if try(s.primary, v) {
			return best, nil
		}
	}

	if best.Confidence < goodEnoughConfidence && s.fallback != nil {
		for _, v := range variants {
			if try(s.fallback, v) {
				return best, nil
			}
		}
	}

	if best.Confidence < 0 || best.Text == "" {
		return nil, ErrExtractionFailed
	}
	return best, nil
}

// scoreText estimates how plausible a transcription is as receipt text,
// from domain keyword presence and the density of well-formed price
// tokens. The result is clamped to [0, 1].
func (s *Selector) scoreText(text string) float64 {
	lower := strings.ToLower(text)
	score := 0.0

	if currencyMarker.MatchString(text) {
		score += 0.15
	}
	if extract.ContainsWord(lower, s.vocab.TaxWords) {
		score += 0.15
	}
	if extract.ContainsWord(lower, s.vocab.TotalWords) {
		score += 0.15
	}
	if s.vocab.PhonePattern.MatchString(text) {
		score += 0.1
	}
	if extract.ContainsWord(lower, s.vocab.FoodWords) || extract.ContainsWord(lower, s.vocab.TransportWords) {
		score += 0.15
	}

	prices := wellFormedPrice.FindAllString(text, -1)
	density := 0.05 * float64(len(prices))
	if density > 0.3 {
		density = 0.3
	}
	score += density

	if len(text) < shortTextThreshold {
		score -= 0.2
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
