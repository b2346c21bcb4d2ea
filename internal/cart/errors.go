package cart

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfStock = errors.New("requested quantity is out of stock")
	ErrNotInCart  = errors.New("product is not in cart")
)

type Op string

const (
	OpAdd    Op = "add"
	OpRemove Op = "remove"
	OpUpdate Op = "update"
)

// OpError is returned by every failed mutation. The cart is left as it was.
type OpError struct {
	Op        Op
	ProductID int64
	Err       error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s product[%d]: %v", e.Op, e.ProductID, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// Message is the text reported to the user through the Notifier.
func (e *OpError) Message() string {
	if errors.Is(e.Err, ErrOutOfStock) {
		return "Requested quantity is out of stock"
	}

	switch e.Op {
	case OpAdd:
		return "Failed to add product"
	case OpRemove:
		return "Failed to remove product"
	case OpUpdate:
		return "Failed to update product quantity"
	default:
		return "Cart operation failed"
	}
}
