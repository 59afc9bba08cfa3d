package parsing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Merchant strategies", func() {
	var catalog *Catalog

	BeforeEach(func() {
		catalog = DefaultCatalog()
	})

	Describe("SelectStrategy", func() {
		DescribeTable("picking by signature",
			func(rawText, expected string) {
				Expect(SelectStrategy(catalog.MerchantStrategies(), rawText).Name()).To(Equal(expected))
			},
			Entry("bakery chain", "BreadTalk\nCheese Floss", "cakery"),
			Entry("food delivery app", "Pesanan GoFood\n2x Nasi Goreng", "food-delivery"),
			Entry("case-insensitive match", "GRABFOOD RECEIPT", "food-delivery"),
			Entry("no signature", "WARUNG BU SRI\n2 NASI 20.000", "generic"),
		)
	})

	Describe("Generic", func() {
		It("reads unit-price and at-unit layouts", func() {
			p := (&Generic{}).Extract([]string{
				"ICE TEA 2 x 5.000",
				"NASI GORENG",
				"1 x @25.000 25.000",
				"2 x @3.000 6.000 KERUPUK",
			}, "")

			Expect(p.Items).To(Equal([]LineItem{
				{Name: "ICE TEA", Quantity: 2, PricePerItem: 5000, Price: 10000},
				{Name: "NASI GORENG", Quantity: 1, PricePerItem: 25000, Price: 25000},
				{Name: "KERUPUK", Quantity: 2, PricePerItem: 3000, Price: 6000},
			}))
		})

		It("leaves the summary to the other passes", func() {
			p := (&Generic{}).Extract([]string{"Subtotal 30.000"}, "")
			Expect(p).To(Equal(Partial{}))
		})
	})

	Describe("Cakery", func() {
		var p Partial

		BeforeEach(func() {
			p = (&Cakery{catalog: catalog}).Extract([]string{
				"BreadTalk",
				"Cheese Floss",
				"2 x 12.000 24.000",
				"Choco Bun 1 x 10.000 10.000",
				"Sub Total 34.000",
				"Disc 4.000",
				"Total 30.000",
				"DEBIT BCA 30.000",
			}, "")
		})

		It("takes the item name from the line above the quantity line", func() {
			Expect(p.Items).To(Equal([]LineItem{
				{Name: "Cheese Floss", Quantity: 2, PricePerItem: 12000, Price: 24000},
				{Name: "Choco Bun", Quantity: 1, PricePerItem: 10000, Price: 10000},
			}))
		})

		It("reads the inline summary amounts", func() {
			Expect(p.Subtotal).To(Equal(34000.0))
			Expect(p.Discount).To(Equal(4000.0))
			Expect(p.Total).To(Equal(30000.0))
		})

		It("reads the payment method", func() {
			Expect(p.PaymentMethod).To(Equal("DEBIT BCA"))
		})
	})

	Describe("FoodDelivery", func() {
		var p Partial

		BeforeEach(func() {
			p = (&FoodDelivery{catalog: catalog}).Extract([]string{
				"GoFood",
				"2x Nasi Goreng",
				"Rp50.000",
				"1x Es Teh Rp 8.000",
				"Subtotal Rp58.000",
				"Diskon -Rp10.000",
				"Total Rp48.000",
				"Dibayar pakai GoPay",
			}, "")
		})

		It("reads prices inline or from the next line", func() {
			Expect(p.Items).To(Equal([]LineItem{
				{Name: "Nasi Goreng", Quantity: 2, PricePerItem: 25000, Price: 50000},
				{Name: "Es Teh", Quantity: 1, PricePerItem: 8000, Price: 8000},
			}))
		})

		It("reads the order summary", func() {
			Expect(p.Subtotal).To(Equal(58000.0))
			Expect(p.Discount).To(Equal(10000.0))
			Expect(p.Total).To(Equal(48000.0))
			Expect(p.PaymentMethod).To(Equal("GoPay"))
		})
	})

	Describe("detection over the raw text", func() {
		lines := []string{
			"Jl. Sudirman 1",
			"KOPI KENANGAN",
			"Kasir: Budi",
			"17/08/2024 12:30",
			"DEBIT BCA:",
			"Starbucks Card",
		}

		It("finds the first line with a brand token", func() {
			Expect(catalog.DetectMerchant(lines)).To(Equal("KOPI KENANGAN"))
		})

		It("finds the first date", func() {
			Expect(DetectDate("Tgl 17/08/2024 12:30\n18-08-2024")).To(Equal("17/08/2024"))
			Expect(DetectDate("2024-08-17")).To(BeEmpty())
		})

		It("finds the payment line without trailing colons", func() {
			Expect(catalog.DetectPaymentMethod(lines)).To(Equal("DEBIT BCA"))
		})

		It("does not mistake a cashier label for cash", func() {
			Expect(catalog.DetectPaymentMethod([]string{"Cashier: Andi"})).To(BeEmpty())
		})
	})
})
