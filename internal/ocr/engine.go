package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// Result is a single transcription attempt from one engine
type Result struct {
	Text       string
	Confidence float64
}

// Engine wraps an external text-recognition backend. Implementations must
// honor context cancellation so one slow engine never stalls a request.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, imagePath string) (*Result, error)
}

// TesseractEngine runs Tesseract through gosseract with a fixed page
// segmentation mode. A fresh client is created per call; gosseract clients
// are not safe for concurrent use.
type TesseractEngine struct {
	name     string
	language string
	psm      gosseract.PageSegMode
}

// NewBlockEngine returns the primary engine, tuned for the single uniform
// text block of a typical receipt.
func NewBlockEngine(language string) *TesseractEngine {
	return &TesseractEngine{name: "tesseract-block", language: language, psm: gosseract.PSM_SINGLE_BLOCK}
}

// NewSparseEngine returns the fallback engine. Sparse-text segmentation
// recovers more from skewed or fragmented receipts at the cost of noise.
func NewSparseEngine(language string) *TesseractEngine {
	return &TesseractEngine{name: "tesseract-sparse", language: language, psm: gosseract.PSM_SPARSE_TEXT}
}

// Name returns the engine identifier used in the receipt's ocr_method.
func (e *TesseractEngine) Name() string {
	return e.name
}

// Recognize extracts text from the image at the given path. The blocking
// gosseract call runs in its own goroutine so a context timeout returns
// promptly; the abandoned call finishes and is discarded.
func (e *TesseractEngine) Recognize(ctx context.Context, imagePath string) (*Result, error) {
	type outcome struct {
		text string
		err  error
	}
	ch := make(chan outcome, 1)

	go func() {
		client := gosseract.NewClient()
		defer client.Close()

		if err := client.SetLanguage(e.language); err != nil {
			ch <- outcome{err: fmt.Errorf("failed to set OCR language: %w", err)}
			return
		}
		if err := client.SetPageSegMode(e.psm); err != nil {
			ch <- outcome{err: fmt.Errorf("failed to set page segmentation mode: %w", err)}
			return
		}
		if err := client.SetImage(imagePath); err != nil {
			ch <- outcome{err: fmt.Errorf("failed to set image: %w", err)}
			return
		}
		text, err := client.Text()
		if err != nil {
			ch <- outcome{err: fmt.Errorf("failed to extract text: %w", err)}
			return
		}
		ch <- outcome{text: text}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case out := <-ch:
		if out.err != nil {
			return nil, out.err
		}
		// gosseract does not expose confidence in simple mode; the
		// selector scores the text itself.
		return &Result{Text: out.text}, nil
	}
}
