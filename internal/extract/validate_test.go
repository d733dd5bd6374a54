package extract

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/splitkaro/billscan/internal/models"
)

var _ = Describe("reconcile", func() {
	It("drops items priced outside the plausible range", func() {
		r := reconcile(models.Receipt{Items: []models.LineItem{
			{Name: "Banquet", Price: 10000.00, Quantity: 1},
			{Name: "Misread", Price: 10000.01, Quantity: 1},
			{Name: "Too small", Price: 0.50, Quantity: 1},
		}})
		Expect(r.Items).To(HaveLen(1))
		Expect(r.Items[0].Name).To(Equal("Banquet"))
	})

	It("floors quantity at one", func() {
		r := reconcile(models.Receipt{Items: []models.LineItem{
			{Name: "Tea", Price: 15, Quantity: 0},
		}})
		Expect(r.Items[0].Quantity).To(Equal(1))
	})

	It("backfills the subtotal from quantity-weighted item prices", func() {
		r := reconcile(models.Receipt{Items: []models.LineItem{
			{Name: "Paneer Tikka", Price: 150, Quantity: 2},
			{Name: "Veg Biryani", Price: 180, Quantity: 1},
			{Name: "Lassi", Price: 45, Quantity: 1},
		}})
		Expect(r.Subtotal).To(Equal(525.00))
	})

	It("computes the total from its parts when missing", func() {
		r := reconcile(models.Receipt{Subtotal: 500, Tax: 50, ServiceCharge: 25})
		Expect(r.Total).To(Equal(575.00))
	})

	It("recomputes tax as the residual when the parts disagree with the total", func() {
		r := reconcile(models.Receipt{
			Items: []models.LineItem{{Name: "Thali", Price: 525, Quantity: 1}},
			Total: 630,
		})
		Expect(r.Subtotal).To(Equal(525.00))
		Expect(r.Tax).To(Equal(105.00))
		Expect(r.Total).To(Equal(630.00))
	})

	It("shrinks the service charge when it alone overshoots the matched total", func() {
		r := reconcile(models.Receipt{Subtotal: 100, ServiceCharge: 50, Total: 120})
		Expect(r.Tax).To(BeZero())
		Expect(r.ServiceCharge).To(Equal(20.00))
		Expect(r.Subtotal + r.Tax + r.ServiceCharge).To(Equal(r.Total))
	})

	It("leaves fields alone when the arithmetic is within tolerance", func() {
		r := reconcile(models.Receipt{Subtotal: 600, Tax: 30, ServiceCharge: 30, Total: 660})
		Expect(r.Tax).To(Equal(30.00))
		Expect(r.Total).To(Equal(660.00))
	})

	It("clamps negative money fields to zero", func() {
		r := reconcile(models.Receipt{Subtotal: 200, Tax: -10, Total: 210})
		Expect(r.Tax).To(BeZero())
		Expect(r.Total).To(Equal(210.00))
	})

	It("synthesizes a single item when a total exists without items", func() {
		r := reconcile(models.Receipt{Subtotal: 500, Total: 500})
		Expect(r.Items).To(HaveLen(1))
		Expect(r.Items[0].Name).To(Equal("Bill Total"))
		Expect(r.Items[0].Price).To(Equal(500.00))
		Expect(r.Items[0].Quantity).To(Equal(1))
	})

	It("clamps the synthesized item price into the allowed range", func() {
		high := reconcile(models.Receipt{Total: 10000.01})
		Expect(high.Items).To(HaveLen(1))
		Expect(high.Items[0].Price).To(Equal(10000.00))

		low := reconcile(models.Receipt{Total: 0.50})
		Expect(low.Items).To(HaveLen(1))
		Expect(low.Items[0].Price).To(Equal(1.00))
	})

	It("does not synthesize an item for an empty receipt", func() {
		r := reconcile(models.Receipt{})
		Expect(r.Items).To(BeEmpty())
		Expect(r.Total).To(BeZero())
	})

	It("does not mutate the input draft", func() {
		draft := models.Receipt{Items: []models.LineItem{
			{Name: "Keep", Price: 100, Quantity: 1},
			{Name: "Drop", Price: 99999, Quantity: 1},
		}}
		_ = reconcile(draft)
		Expect(draft.Items).To(HaveLen(2))
		Expect(draft.Items[1].Name).To(Equal("Drop"))
	})

	It("is idempotent", func() {
		draft := models.Receipt{
			Items: []models.LineItem{{Name: "Thali", Price: 525, Quantity: 1}},
			Total: 630,
		}
		once := reconcile(draft)
		twice := reconcile(once)
		Expect(twice).To(Equal(once))
	})
})
