package extract

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/splitkaro/billscan/internal/models"
)

var _ = Describe("extractMerchantInfo", func() {
	var e *Extractor

	BeforeEach(func() {
		e = NewExtractor(nil)
	})

	extract := func(text string) models.MerchantInfo {
		return e.extractMerchantInfo(e.classifyLines(SplitLines(text)))
	}

	When("the receipt head carries a full identity block", func() {
		var info models.MerchantInfo

		BeforeEach(func() {
			info = extract(`SPICE GARDEN RESTAURANT
FF-12, Shivranjani Road, Ahmedabad
Ph: 9876543210
contact@spicegarden.in
www.spicegarden.in
GSTIN: 24ABCDE1234F1Z5`)
		})

		It("picks the name", func() {
			Expect(info.Name).To(Equal("SPICE GARDEN RESTAURANT"))
		})

		It("pulls the phone number", func() {
			Expect(info.Phone).To(Equal("9876543210"))
		})

		It("pulls the email address", func() {
			Expect(info.Email).To(Equal("contact@spicegarden.in"))
		})

		It("pulls the website", func() {
			Expect(info.Website).To(Equal("www.spicegarden.in"))
		})

		It("pulls the GST number", func() {
			Expect(info.TaxID).To(Equal("24ABCDE1234F1Z5"))
		})

		It("pulls the address line", func() {
			Expect(info.Address).To(Equal("FF-12, Shivranjani Road, Ahmedabad"))
		})
	})

	When("a later line carries a business type word", func() {
		It("beats an earlier generic greeting", func() {
			info := extract("WELCOME\nANNAPURNA DHABA PVT LTD")
			Expect(info.Name).To(Equal("ANNAPURNA DHABA PVT LTD"))
		})
	})

	When("the head is all numeric noise", func() {
		It("leaves the name unset", func() {
			info := extract("9999 8888\n123 456\n777")
			Expect(info.Name).To(BeEmpty())
		})
	})

	When("a name-like line sits past the head window", func() {
		It("is not considered", func() {
			text := ""
			for i := 0; i < 11; i++ {
				text += "77 88\n"
			}
			text += "ROYAL RESTAURANT"
			info := extract(text)
			Expect(info.Name).To(BeEmpty())
		})
	})
})

var _ = Describe("isTitleOrUpper", func() {
	It("accepts uppercase and title case", func() {
		Expect(isTitleOrUpper("SPICE GARDEN")).To(BeTrue())
		Expect(isTitleOrUpper("Spice Garden")).To(BeTrue())
	})

	It("rejects lowercase words", func() {
		Expect(isTitleOrUpper("spice garden")).To(BeFalse())
		Expect(isTitleOrUpper("Spice garden")).To(BeFalse())
	})

	It("rejects empty input", func() {
		Expect(isTitleOrUpper("  ")).To(BeFalse())
	})
})
