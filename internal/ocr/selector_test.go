package ocr

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const strongText = "SPICE RESTAURANT\nRs. 320.00 GST 28.00\nTOTAL 348.00\nthank you for dining"

var _ = Describe("Selector", func() {
	var (
		primary  *fakeEngine
		fallback *fakeEngine
		variants []Variant
	)

	BeforeEach(func() {
		primary = &fakeEngine{name: "tess-block", results: map[string]string{}, errs: map[string]error{}}
		fallback = &fakeEngine{name: "tess-sparse", results: map[string]string{}, errs: map[string]error{}}
		variants = []Variant{
			{Name: "original", Path: "/tmp/v-original.png"},
			{Name: "gray-contrast", Path: "/tmp/v-gray.png"},
		}
	})

	newSelector := func() *Selector {
		return NewSelector(primary, fallback, nil, time.Second)
	}

	When("no attempt reaches the confidence threshold", func() {
		BeforeEach(func() {
			primary.results[variants[0].Path] = "misc line"
			primary.results[variants[1].Path] = "TOTAL 348.00 GST paid"
			fallback.results[variants[0].Path] = "misc line"
			fallback.results[variants[1].Path] = "misc line"
		})

		It("keeps the highest scoring transcription across all attempts", func() {
			sel, err := newSelector().SelectBest(context.Background(), variants)
			Expect(err).NotTo(HaveOccurred())
			Expect(sel.Text).To(Equal("TOTAL 348.00 GST paid"))
		})

		It("tries the fallback engine over every variant", func() {
			_, err := newSelector().SelectBest(context.Background(), variants)
			Expect(err).NotTo(HaveOccurred())
			Expect(primary.calls).To(HaveLen(2))
			Expect(fallback.calls).To(HaveLen(2))
		})

		It("reports which engine and variant won", func() {
			sel, _ := newSelector().SelectBest(context.Background(), variants)
			Expect(sel.Method).To(Equal("tess-block/gray-contrast"))
		})
	})

	When("the first attempt is already good enough", func() {
		BeforeEach(func() {
			primary.results[variants[0].Path] = strongText
			primary.results[variants[1].Path] = strongText
		})

		It("stops after one attempt", func() {
			sel, err := newSelector().SelectBest(context.Background(), variants)
			Expect(err).NotTo(HaveOccurred())
			Expect(sel.Text).To(Equal(strongText))
			Expect(sel.Confidence).To(BeNumerically(">=", 0.7))
			Expect(primary.calls).To(HaveLen(1))
			Expect(fallback.calls).To(BeEmpty())
		})
	})

	When("the primary engine fails on every variant", func() {
		BeforeEach(func() {
			primary.errs[variants[0].Path] = errors.New("engine crashed")
			primary.errs[variants[1].Path] = errors.New("engine crashed")
			fallback.results[variants[0].Path] = strongText
		})

		It("recovers through the fallback engine", func() {
			sel, err := newSelector().SelectBest(context.Background(), variants)
			Expect(err).NotTo(HaveOccurred())
			Expect(sel.Text).To(Equal(strongText))
			Expect(sel.Method).To(Equal("tess-sparse/original"))
		})
	})

	When("every attempt errors or returns empty text", func() {
		BeforeEach(func() {
			primary.errs[variants[0].Path] = errors.New("boom")
			primary.results[variants[1].Path] = "   "
			fallback.results[variants[0].Path] = ""
			fallback.errs[variants[1].Path] = errors.New("boom")
		})

		It("returns ErrExtractionFailed", func() {
			_, err := newSelector().SelectBest(context.Background(), variants)
			Expect(err).To(MatchError(ErrExtractionFailed))
		})
	})

	It("never blends text from different attempts", func() {
		primary.results[variants[0].Path] = "first half of receipt"
		primary.results[variants[1].Path] = "second half of receipt"
		sel, err := newSelector().SelectBest(context.Background(), variants)
		Expect(err).NotTo(HaveOccurred())
		Expect(sel.Text).To(BeElementOf("first half of receipt", "second half of receipt"))
	})

	It("works without a fallback engine", func() {
		primary.results[variants[0].Path] = "TOTAL 348.00 GST paid"
		sel, err := NewSelector(primary, nil, nil, time.Second).SelectBest(context.Background(), variants)
		Expect(err).NotTo(HaveOccurred())
		Expect(sel.Text).To(Equal("TOTAL 348.00 GST paid"))
	})
})

var _ = Describe("scoreText", func() {
	s := NewSelector(nil, nil, nil, time.Second)

	It("clamps garbage to zero", func() {
		Expect(s.scoreText("xyz")).To(BeZero())
	})

	It("scores receipt-shaped text above the threshold", func() {
		Expect(s.scoreText(strongText)).To(BeNumerically(">=", 0.7))
	})

	It("rewards currency markers", func() {
		withMarker := s.scoreText("Rs. 120.00 paid against order number nine eight seven")
		without := s.scoreText("120.00 paid against order number nine eight seven!!")
		Expect(withMarker).To(BeNumerically(">", without))
	})

	It("penalizes very short transcriptions", func() {
		long := s.scoreText("GST total 120.00 due " + "................................")
		short := s.scoreText("GST total 120.00 due")
		Expect(long).To(BeNumerically(">", short))
	})
})
