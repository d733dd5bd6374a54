package services

import (
	"context"
	"fmt"

	"github.com/splitkaro/billscan/internal/extract"
	"github.com/splitkaro/billscan/internal/models"
	"github.com/splitkaro/billscan/internal/ocr"
)

// ScannerService runs the full image-to-receipt pipeline: preprocessed
// image variants through the OCR engines, best-transcription selection,
// then heuristic extraction. Each call is independent; the service holds
// no per-request state.
type ScannerService struct {
	selector  *ocr.Selector
	extractor *extract.Extractor
}

// NewScannerService creates a scanner over the given selector and extractor.
func NewScannerService(selector *ocr.Selector, extractor *extract.Extractor) *ScannerService {
	return &ScannerService{
		selector:  selector,
		extractor: extractor,
	}
}

// ScanImage converts raw image bytes into a structured receipt. It fails
// only when no engine/variant combination yields any text; a sparse or
// low-confidence receipt is still a success.
func (s *ScannerService) ScanImage(ctx context.Context, imageBytes []byte) (*models.Receipt, error) {
	variants, cleanup, err := ocr.GenerateVariants(imageBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare image variants: %w", err)
	}
	defer cleanup()

	selection, err := s.selector.SelectBest(ctx, variants)
	if err != nil {
		return nil, err
	}

	receipt := s.extractor.Extract(selection.Text)
	receipt.Confidence = selection.Confidence
	receipt.OCRMethod = selection.Method
	return receipt, nil
}

// ScanText runs extraction over already-recognized text. Useful for
// reprocessing stored transcriptions without re-running OCR.
func (s *ScannerService) ScanText(text string) *models.Receipt {
	return s.extractor.Extract(text)
}
