package parsing

// DeriveMissing fills a zero subtotal or total from the other fields. The
// subtotal comes from the item prices when they add up to anything, else from
// the total.
func DeriveMissing(s Summary, items []LineItem) Summary {
	if s.Subtotal == 0 {
		switch sum := itemsTotal(items); {
		case sum > 0:
			s.Subtotal = sum
		case s.Total > 0:
			s.Subtotal = s.Total + s.Discount - s.Tax
		}
	}
	if s.Total == 0 {
		s.Total = s.Subtotal + s.Tax + s.ServiceCharge - s.Discount
	}
	return s
}
