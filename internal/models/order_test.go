package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeTotalSkipsCancelledItems(t *testing.T) {
	order := Order{Items: []OrderItem{
		{Quantity: 2, UnitPrice: decimal.NewFromInt(50), Status: ItemPlaced},
		{Quantity: 1, UnitPrice: decimal.RequireFromString("12.50"), Status: ItemServed},
		{Quantity: 3, UnitPrice: decimal.NewFromInt(9), Status: ItemCancelled},
	}}

	assert.True(t, order.ComputeTotal().Equal(decimal.RequireFromString("112.50")))
}

func TestComputeTotalEmpty(t *testing.T) {
	var order Order

	assert.True(t, order.ComputeTotal().IsZero())
	assert.False(t, order.HasPlacedItems())
}

func TestParseOrderStatus(t *testing.T) {
	tests := []struct {
		in       string
		ok       bool
		terminal bool
	}{
		{in: "open", ok: true},
		{in: "completed", ok: true},
		{in: "paid", ok: true, terminal: true},
		{in: "cancelled", ok: true, terminal: true},
		{in: "closed", ok: true, terminal: true},
		{in: "served", ok: false},
		{in: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			st, ok := ParseOrderStatus(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.terminal, st.IsTerminal())
		})
	}
}

func TestParseOrderItemStatus(t *testing.T) {
	_, ok := ParseOrderItemStatus("served")
	assert.True(t, ok)

	_, ok = ParseOrderItemStatus("paid")
	assert.False(t, ok)
}

func TestTableStatusToggled(t *testing.T) {
	assert.Equal(t, TableActive, TableAvailable.Toggled())
	assert.Equal(t, TableAvailable, TableActive.Toggled())
}
