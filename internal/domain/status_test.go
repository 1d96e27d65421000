package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestStatusMovesForwardOnly(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusPending, StatusCancelled, true},
		{StatusProcessing, StatusShipped, true},
		{StatusProcessing, StatusCancelled, true},
		{StatusShipped, StatusDelivered, true},
		{StatusShipped, StatusCancelled, false},
		{StatusProcessing, StatusPending, false},
		{StatusDelivered, StatusShipped, false},
		{StatusCancelled, StatusPending, false},
		{StatusPending, StatusPending, false},
		{StatusPending, StatusDelivered, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransition(tc.to); got != tc.ok {
			t.Errorf("%s -> %s: want %v, got %v", tc.from, tc.to, tc.ok, got)
		}
	}
}

func TestParseStatus(t *testing.T) {
	if st, ok := ParseStatus("shipped"); !ok || st != StatusShipped {
		t.Fatalf("shipped should parse, got %q %v", st, ok)
	}
	if _, ok := ParseStatus("SHIPPED"); ok {
		t.Fatal("status codes are lowercase")
	}
	if StatusCancelled.Display() != "Cancelled" {
		t.Fatalf("unexpected display %q", StatusCancelled.Display())
	}
}

func TestCartItemSubtotal(t *testing.T) {
	it := CartItem{UnitPrice: MustMoney("3.50"), Quantity: 3}
	if !it.Subtotal().Equal(decimal.RequireFromString("10.50")) {
		t.Fatalf("want 10.50, got %s", it.Subtotal())
	}
}
