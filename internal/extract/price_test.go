package extract

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/splitkaro/billscan/internal/models"
)

var _ = Describe("tokenizePrices", func() {
	var e *Extractor

	BeforeEach(func() {
		e = NewExtractor(nil)
	})

	tokenize := func(text string, role LineRole, rtype models.ReceiptType) []ScoredPrice {
		return e.tokenizePrices(ClassifiedLine{Text: text, Index: 0, Role: role}, rtype)
	}

	When("the line uses a comma as decimal separator", func() {
		It("reads 178,00 as 178.00", func() {
			prices := tokenize("TOTAL 178,00", RoleTotalLike, models.ReceiptTypeGeneral)
			Expect(prices).To(HaveLen(1))
			Expect(prices[0].Value).To(Equal(178.00))
		})
	})

	When("the amount carries a currency prefix", func() {
		It("claims the whole span once", func() {
			prices := tokenize("Rs. 320.50 paneer", RoleItemCandidate, models.ReceiptTypeGeneral)
			Expect(prices).To(HaveLen(1))
			Expect(prices[0].Value).To(Equal(320.50))
			Expect(prices[0].HasCurrencySymbol).To(BeTrue())
		})

		It("scores higher than the same bare amount", func() {
			withCurrency := tokenize("paneer Rs. 320.50", RoleItemCandidate, models.ReceiptTypeGeneral)
			bare := tokenize("paneer 320.50", RoleItemCandidate, models.ReceiptTypeGeneral)
			Expect(withCurrency[0].ContextScore).To(BeNumerically(">", bare[0].ContextScore))
		})

		It("parses thousands separators", func() {
			prices := tokenize("Rs 1,178.50", RoleItemCandidate, models.ReceiptTypeGeneral)
			Expect(prices[0].Value).To(Equal(1178.50))
		})

		It("keeps every digit of amounts with four or more integer digits", func() {
			prices := tokenize("Subtotal ₹1120.00", RoleTotalLike, models.ReceiptTypeRestaurant)
			Expect(prices).To(HaveLen(1))
			Expect(prices[0].Value).To(Equal(1120.00))
			Expect(prices[0].RawToken).To(Equal("₹1120.00"))
		})
	})

	When("the line is a matched total", func() {
		It("gets the total keyword bonus", func() {
			total := tokenize("TOTAL 660.00", RoleTotalLike, models.ReceiptTypeGeneral)
			plain := tokenize("something 660.00", RoleItemCandidate, models.ReceiptTypeGeneral)
			Expect(total[0].ContextScore - plain[0].ContextScore).To(Equal(15))
			Expect(total[0].Reasons).To(ContainElement("total keyword"))
		})
	})

	When("the context is a reference number", func() {
		It("drops candidates below the score floor", func() {
			prices := tokenize("Ticket No 45678 09/05/2024", RoleItemCandidate, models.ReceiptTypeTransportation)
			Expect(prices).To(BeEmpty())
		})

		It("penalizes standalone id markers only as whole words", func() {
			ref := tokenize("Ref 45678", RoleItemCandidate, models.ReceiptTypeTransportation)
			Expect(ref).To(BeEmpty())

			paid := tokenize("Amount Paid 450", RoleItemCandidate, models.ReceiptTypeGeneral)
			Expect(paid).To(HaveLen(1))
			Expect(paid[0].Value).To(Equal(450.00))

			idli := tokenize("Idli 45.00", RoleItemCandidate, models.ReceiptTypeRestaurant)
			Expect(idli[0].ContextScore).To(BeNumerically(">", 0))
			Expect(idli[0].Reasons).NotTo(ContainElement("id context"))
		})
	})

	When("multiple candidates appear on one line", func() {
		It("sorts them by score descending", func() {
			prices := tokenize("fare 185.50 seat 12", RoleItemCandidate, models.ReceiptTypeTransportation)
			Expect(len(prices)).To(BeNumerically(">=", 2))
			Expect(prices[0].Value).To(Equal(185.50))
			for i := 1; i < len(prices); i++ {
				Expect(prices[i-1].ContextScore).To(BeNumerically(">=", prices[i].ContextScore))
			}
		})
	})

	It("penalizes round hundreds relative to nearby amounts", func() {
		round := tokenize("donation 500", RoleItemCandidate, models.ReceiptTypeGeneral)
		odd := tokenize("donation 550", RoleItemCandidate, models.ReceiptTypeGeneral)
		Expect(round[0].ContextScore).To(BeNumerically("<", odd[0].ContextScore))
	})

	It("rewards typical fare amounts on transport receipts", func() {
		typical := tokenize("stand 185", RoleItemCandidate, models.ReceiptTypeTransportation)
		extreme := tokenize("stand 18500", RoleItemCandidate, models.ReceiptTypeTransportation)
		Expect(typical[0].ContextScore).To(BeNumerically(">", 0))
		Expect(extreme).To(BeEmpty())
	})
})

var _ = Describe("parseAmount", func() {
	It("treats a comma before two digits as the decimal point", func() {
		v, ok := parseAmount("178,00")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(178.00))
	})

	It("treats other commas as thousands separators", func() {
		v, ok := parseAmount("12,345")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(12345.0))
	})

	It("rejects zero and garbage", func() {
		_, ok := parseAmount("0")
		Expect(ok).To(BeFalse())
		_, ok = parseAmount("abc")
		Expect(ok).To(BeFalse())
	})
})
