package domain_test

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/nikolayk812/cartstore-demo/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
)

func TestCodec_RoundTrip(t *testing.T) {
	cart := domain.Cart{Items: []domain.Product{
		{ID: 42, Title: "Shoe", Price: decimal.NewFromInt(100), Image: gofakeit.URL(), Amount: 3},
		{ID: 7, Title: gofakeit.ProductName(), Price: decimal.RequireFromString("139.90"), Image: gofakeit.URL(), Amount: 1},
	}}

	data, err := domain.EncodeCart(cart)
	require.NoError(t, err)

	got, err := domain.DecodeCart(data)
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(cart, got))
}

func TestEncodeCart_EmptyIsArray(t *testing.T) {
	data, err := domain.EncodeCart(domain.Cart{})
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}

func TestDecodeCart(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantLen int
		wantErr bool
	}{
		{
			name:    "products with numeric price: ok",
			data:    `[{"id":1,"title":"Sneaker","price":179.9,"image":"a.jpg","amount":2}]`,
			wantLen: 1,
		},
		{
			name: "empty array: ok",
			data: `[]`,
		},
		{
			name:    "not json: error",
			data:    `{oops`,
			wantErr: true,
		},
		{
			name:    "object instead of array: error",
			data:    `{"id":1}`,
			wantErr: true,
		},
		{
			name:    "null: error",
			data:    `null`,
			wantErr: true,
		},
		{
			name:    "zero amount: error",
			data:    `[{"id":1,"amount":0}]`,
			wantErr: true,
		},
		{
			name:    "duplicated id: error",
			data:    `[{"id":1,"amount":1},{"id":1,"amount":2}]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart, err := domain.DecodeCart([]byte(tt.data))
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrMalformedCart)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLen, cart.Len())
		})
	}
}

func TestCart_Helpers(t *testing.T) {
	cart := domain.Cart{Items: []domain.Product{
		{ID: 1, Price: decimal.RequireFromString("10.50"), Amount: 2},
		{ID: 2, Price: decimal.NewFromInt(100), Amount: 1},
	}}

	assert.Equal(t, 1, cart.IndexOf(2))
	assert.Equal(t, -1, cart.IndexOf(3))

	assert.True(t, cart.Subtotal(1).Equal(decimal.NewFromInt(21)))
	assert.True(t, cart.Subtotal(3).IsZero())

	total := cart.Total(currency.BRL)
	assert.True(t, total.Amount.Equal(decimal.NewFromInt(121)))
	assert.Equal(t, "BRL 121.00", total.String())

	clone := cart.Clone()
	clone.Items[0].Amount = 5
	assert.Equal(t, 2, cart.Items[0].Amount)
}
