package extract

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/splitkaro/billscan/internal/models"
)

var _ = Describe("extractTotals", func() {
	var e *Extractor

	BeforeEach(func() {
		e = NewExtractor(nil)
	})

	extract := func(text string) totals {
		lines, prices := tokenizeAll(e, text, models.ReceiptTypeRestaurant)
		return e.extractTotals(lines, prices)
	}

	It("routes each keyword to its own field", func() {
		t := extract("SUBTOTAL 600.00\nGST 30.00\nSERVICE CHARGE 30.00\nTOTAL 660.00")
		Expect(t.Subtotal).To(Equal(600.00))
		Expect(t.Tax).To(Equal(30.00))
		Expect(t.ServiceCharge).To(Equal(30.00))
		Expect(t.Total).To(Equal(660.00))
	})

	It("keeps the running maximum when a field repeats", func() {
		t := extract("TOTAL 660.00\nTOTAL 860.00\nTOTAL 460.00")
		Expect(t.Total).To(Equal(860.00))
	})

	It("treats NET AMOUNT as a total, not a subtotal", func() {
		t := extract("NET AMOUNT 630.00")
		Expect(t.Total).To(Equal(630.00))
		Expect(t.Subtotal).To(BeZero())
	})

	It("treats a bare NET line as a subtotal", func() {
		t := extract("NET 420.00")
		Expect(t.Subtotal).To(Equal(420.00))
		Expect(t.Total).To(BeZero())
	})

	It("routes GST variants to tax", func() {
		t := extract("CGST 2.5% 15.00\nSGST 2.5% 15.00")
		Expect(t.Tax).To(Equal(15.00))
	})

	It("returns zeros when nothing matches", func() {
		t := extract("Butter Chicken 320.00")
		Expect(t).To(Equal(totals{}))
	})
})
