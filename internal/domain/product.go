package domain

import "github.com/shopspring/decimal"

// Product is a catalog item. Amount is the quantity held in the cart and is
// only meaningful for products that are part of a Cart.
type Product struct {
	ID     int64           `json:"id"`
	Title  string          `json:"title"`
	Price  decimal.Decimal `json:"price"`
	Image  string          `json:"image"`
	Amount int             `json:"amount"`
}

// Stock is the maximum purchasable quantity of a product.
type Stock struct {
	ID     int64 `json:"id"`
	Amount int   `json:"amount"`
}
