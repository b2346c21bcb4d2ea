package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Cart is an ordered list of products, unique by ID.
type Cart struct {
	Items []Product
}

func (c Cart) Len() int {
	return len(c.Items)
}

// IndexOf returns the position of the product with the given ID or -1.
func (c Cart) IndexOf(productID int64) int {
	for i, item := range c.Items {
		if item.ID == productID {
			return i
		}
	}

	return -1
}

// Clone returns a copy that shares no backing array with c.
func (c Cart) Clone() Cart {
	items := make([]Product, len(c.Items))
	copy(items, c.Items)

	return Cart{Items: items}
}

// Subtotal returns price * amount of the product, zero when it is not in the cart.
func (c Cart) Subtotal(productID int64) decimal.Decimal {
	i := c.IndexOf(productID)
	if i < 0 {
		return decimal.Zero
	}

	item := c.Items[i]
	return item.Price.Mul(decimal.NewFromInt(int64(item.Amount)))
}

func (c Cart) Total(unit currency.Unit) Money {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(c.Subtotal(item.ID))
	}

	return Money{Amount: total, Currency: unit}
}
