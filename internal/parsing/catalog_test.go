package parsing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Catalog", func() {
	It("loads the embedded tables once", func() {
		Expect(DefaultCatalog()).To(BeIdenticalTo(DefaultCatalog()))
		Expect(DefaultCatalog().Merchants).To(ContainElement("kopi kenangan"))
	})

	It("rejects a table without summary keywords", func() {
		_, err := LoadCatalog([]byte("merchants: [warung]\n"))
		Expect(err).To(MatchError(ContainSubstring("missing summary keywords")))
	})

	It("rejects malformed YAML", func() {
		_, err := LoadCatalog([]byte("merchants: [warung"))
		Expect(err).To(MatchError(ContainSubstring("decoding catalog")))
	})

	It("accepts a custom table", func() {
		c, err := LoadCatalog([]byte(`
merchants: [warung bu sri]
payments: [tunai]
summary:
  subtotal: [jumlah]
  tax: [ppn]
  service: [layanan]
  total: [bayar]
`))
		Expect(err).NotTo(HaveOccurred())
		Expect(c.DetectMerchant([]string{"WARUNG BU SRI"})).To(Equal("WARUNG BU SRI"))
		Expect(c.DetectPaymentMethod([]string{"TUNAI: 50.000"})).To(Equal("TUNAI: 50.000"))
		Expect(c.isSummaryKeyword("Jumlah")).To(BeTrue())
		Expect(c.isSummaryKeyword("Total")).To(BeFalse())
	})
})
