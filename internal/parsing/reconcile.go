package parsing

// misparseRatio is how far the item sum may exceed the printed subtotal before
// the item prices are assumed to have the quantity folded in.
const misparseRatio = 1.5

// Reconcile checks the items against the printed subtotal. When the items add
// up to more than 1.5 times the subtotal, each price is taken to be a line
// total that was multiplied by its quantity a second time: the price is divided
// by the quantity, the unit price recomputed, and subtotal and total rebuilt.
// Otherwise r is returned unchanged.
func Reconcile(r ParseResult) ParseResult {
	manual := itemsTotal(r.Items)
	if r.Subtotal <= 0 || manual <= misparseRatio*r.Subtotal {
		return r
	}

	items := make([]LineItem, len(r.Items))
	for i, it := range r.Items {
		qty := float64(max(it.Quantity, 1))
		price := it.Price / qty
		items[i] = LineItem{
			Name:         it.Name,
			Quantity:     it.Quantity,
			PricePerItem: price / qty,
			Price:        price,
		}
	}

	r.Items = items
	r.Subtotal = itemsTotal(items)
	r.Total = r.Subtotal + r.Tax + r.ServiceCharge - r.Discount
	return r
}
