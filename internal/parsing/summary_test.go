package parsing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Summary extraction", func() {
	Describe("matchDiscount", func() {
		It("accepts a dash followed by an amount", func() {
			v, ok := matchDiscount("- 5.000")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal(5000.0))
		})

		It("rejects a plain amount", func() {
			_, ok := matchDiscount("5.000")
			Expect(ok).To(BeFalse())
		})
	})

	Describe("classifySummary", func() {
		var (
			lines   []MergedLine
			summary Summary
			match   summaryMatch
		)

		BeforeEach(func() {
			summary = Summary{}
		})

		JustBeforeEach(func() {
			match = DefaultCatalog().classifySummary(lines, 0, &summary)
		})

		When("a percent marker follows the tax keyword", func() {
			BeforeEach(func() {
				lines = single("PPN", "10%", "1000")
				summary.Subtotal = 10000
			})

			It("reads the amount two lines down", func() {
				Expect(summary.Tax).To(Equal(1000.0))
				Expect(summary.TaxPercent).To(Equal(10.0))
			})

			It("consumes both value lines", func() {
				Expect(match).To(Equal(summaryMatch{matched: true, values: 2}))
			})
		})

		When("the tax amount follows without a percent", func() {
			BeforeEach(func() {
				lines = single("PPN", "1000")
				summary.Subtotal = 10000
			})

			It("derives the percentage from the subtotal", func() {
				Expect(summary.Tax).To(Equal(1000.0))
				Expect(summary.TaxPercent).To(Equal(10.0))
				Expect(match.values).To(Equal(1))
			})
		})

		When("the subtotal is not yet known", func() {
			BeforeEach(func() {
				lines = single("Pajak", "1.000")
			})

			It("leaves the percentage at zero", func() {
				Expect(summary.Tax).To(Equal(1000.0))
				Expect(summary.TaxPercent).To(BeZero())
			})
		})

		When("the percentage is on the keyword line", func() {
			BeforeEach(func() {
				lines = single("PPN 11%", "1.100")
			})

			It("reads the amount from the next line", func() {
				Expect(summary.Tax).To(Equal(1100.0))
				Expect(summary.TaxPercent).To(Equal(11.0))
				Expect(match.values).To(Equal(1))
			})
		})

		When("the restaurant tax is labelled PB1", func() {
			BeforeEach(func() {
				lines = single("PB1 10% 5.000")
			})

			It("reads everything from the same line", func() {
				Expect(summary.Tax).To(Equal(5000.0))
				Expect(summary.TaxPercent).To(Equal(10.0))
				Expect(match.values).To(BeZero())
			})
		})

		When("the subtotal amount is on the next line", func() {
			BeforeEach(func() {
				lines = single("Subtotal", "30.000")
			})

			It("reads it from the next line", func() {
				Expect(summary.Subtotal).To(Equal(30000.0))
				Expect(match).To(Equal(summaryMatch{matched: true, values: 1}))
			})
		})

		When("the subtotal amount is on the same line", func() {
			BeforeEach(func() {
				lines = single("Total Belanja 30.000", "Tunai")
			})

			It("does not consume the next line", func() {
				Expect(summary.Subtotal).To(Equal(30000.0))
				Expect(match).To(Equal(summaryMatch{matched: true}))
			})
		})

		When("the line mentions a service charge", func() {
			BeforeEach(func() {
				lines = single("Service Charge 5%", "2.500")
			})

			It("reads the charge from the next line", func() {
				Expect(summary.ServiceCharge).To(Equal(2500.0))
			})
		})

		When("the line is exactly total", func() {
			BeforeEach(func() {
				lines = single("TOTAL", "Rp 55.000")
			})

			It("reads the grand total", func() {
				Expect(summary.Total).To(Equal(55000.0))
			})
		})

		When("the total keyword has no value after it", func() {
			BeforeEach(func() {
				lines = single("Total")
			})

			It("does not classify the line", func() {
				Expect(match.matched).To(BeFalse())
				Expect(summary).To(Equal(Summary{}))
			})
		})

		When("a tax header is followed by an item line", func() {
			BeforeEach(func() {
				lines = single("TAX INVOICE", "2 ICE TEA 20.000")
			})

			It("does not take the item as the tax amount", func() {
				Expect(match.matched).To(BeFalse())
				Expect(summary.Tax).To(BeZero())
			})
		})

		When("the keyword is only the start of a longer word", func() {
			BeforeEach(func() {
				lines = single("TAXI FARE", "20.000")
			})

			It("is not read as tax", func() {
				Expect(match.matched).To(BeFalse())
				Expect(summary.Tax).To(BeZero())
			})
		})

		When("the total keyword is followed by an item line", func() {
			BeforeEach(func() {
				lines = single("TOTAL", "1 KOPI 18.000")
			})

			It("leaves the next line for item matching", func() {
				Expect(match.matched).To(BeFalse())
				Expect(summary.Total).To(BeZero())
			})
		})

		When("the service percent sits on its own line", func() {
			BeforeEach(func() {
				lines = single("Service", "5%", "2.500")
			})

			It("reads the charge after the percent", func() {
				Expect(summary.ServiceCharge).To(Equal(2500.0))
				Expect(match.values).To(Equal(2))
			})
		})

		When("the line is unrelated text", func() {
			BeforeEach(func() {
				lines = single("Terima kasih", "Datang kembali")
			})

			It("does not classify the line", func() {
				Expect(match.matched).To(BeFalse())
			})
		})
	})
})
