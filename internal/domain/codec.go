package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMalformedCart = errors.New("malformed cart")

// EncodeCart serializes the cart as a JSON array of products.
func EncodeCart(cart Cart) ([]byte, error) {
	items := cart.Items
	if items == nil {
		items = []Product{}
	}

	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}

	return data, nil
}

// DecodeCart parses a JSON array of products. Values that are not an array,
// hold an entry with amount < 1 or repeat a product ID are rejected.
func DecodeCart(data []byte) (Cart, error) {
	var items []Product
	if err := json.Unmarshal(data, &items); err != nil {
		return Cart{}, fmt.Errorf("%w: %w", ErrMalformedCart, err)
	}

	if items == nil {
		return Cart{}, fmt.Errorf("%w: not an array", ErrMalformedCart)
	}

	seen := make(map[int64]struct{}, len(items))
	for _, item := range items {
		if item.Amount < 1 {
			return Cart{}, fmt.Errorf("%w: product[%d] amount %d", ErrMalformedCart, item.ID, item.Amount)
		}
		if _, ok := seen[item.ID]; ok {
			return Cart{}, fmt.Errorf("%w: product[%d] is duplicated", ErrMalformedCart, item.ID)
		}
		seen[item.ID] = struct{}{}
	}

	return Cart{Items: items}, nil
}
