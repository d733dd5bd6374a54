// Package extract converts noisy receipt OCR text into a structured,
// validated receipt record. The pipeline is a pure function of the input
// text: the same transcription always yields the same receipt, and no
// state is shared between concurrent extractions.
package extract

import (
	"github.com/splitkaro/billscan/internal/models"
)

// Extractor runs the full interpretation pipeline. Construct one with a
// Vocabulary and reuse it freely; it holds no per-request state.
type Extractor struct {
	vocab *Vocabulary
}

// NewExtractor creates an extractor over the given vocabulary.
func NewExtractor(vocab *Vocabulary) *Extractor {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	return &Extractor{vocab: vocab}
}

// strategy is the closed set of extraction paths selected by receipt type.
type strategy interface {
	extract(lines []ClassifiedLine, prices [][]ScoredPrice) *models.Receipt
}

type generalStrategy struct{ e *Extractor }
type transportStrategy struct{ e *Extractor }

func (s generalStrategy) extract(lines []ClassifiedLine, prices [][]ScoredPrice) *models.Receipt {
	r := &models.Receipt{}
	r.MerchantInfo = s.e.extractMerchantInfo(lines)
	r.Items = s.e.extractItems(lines, prices)
	t := s.e.extractTotals(lines, prices)
	r.Subtotal = t.Subtotal
	r.Tax = t.Tax
	r.ServiceCharge = t.ServiceCharge
	r.Total = t.Total
	return r
}

func (s transportStrategy) extract(lines []ClassifiedLine, prices [][]ScoredPrice) *models.Receipt {
	return s.e.extractTransportReceipt(lines, prices)
}

// Extract interprets OCR text into a validated Receipt. It never returns
// an error: per-line and per-candidate failures are absorbed locally, and
// an empty or hopeless text simply produces a sparse receipt. Confidence
// and field completeness communicate quality, not errors.
func (e *Extractor) Extract(text string) *models.Receipt {
	rtype := e.ClassifyReceiptType(text)
	lines := e.classifyLines(SplitLines(text))

	prices := make([][]ScoredPrice, len(lines))
	for i, line := range lines {
		if line.Role == RoleUnclassified || line.Role == RoleHeader {
			continue
		}
		prices[i] = e.tokenizePrices(line, rtype)
	}

	var strat strategy
	switch rtype {
	case models.ReceiptTypeTransportation, models.ReceiptTypeTrain:
		strat = transportStrategy{e}
	default:
		strat = generalStrategy{e}
	}

	draft := strat.extract(lines, prices)
	final := reconcile(*draft)
	final.ReceiptType = rtype
	final.RawText = text
	return &final
}
