package orders

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	contractx "github.com/graphmind/pastelaria/agent/contract"
)

func TestBuildRow(t *testing.T) {
	t.Parallel()

	confirmedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	order := contractx.Order{
		SessionID:       "sess-1",
		CustomerName:    "Maria",
		DeliveryAddress: "Rua X, 10",
		PaymentMethod:   "pix",
		Items: []contractx.CartItemView{
			{Flavor: "Pastel de Queijo", Quantity: 2, UnitPrice: decimal.RequireFromString("8.50"), Subtotal: decimal.RequireFromString("17.00")},
		},
		Total:       decimal.RequireFromString("17.00"),
		ConfirmedAt: confirmedAt,
	}

	row, err := buildRow(order)
	if err != nil {
		t.Fatalf("buildRow() error = %v", err)
	}
	if row.SessionID != "sess-1" || row.CustomerName != "Maria" {
		t.Errorf("row = %+v", row)
	}
	if !row.ConfirmedAt.Equal(confirmedAt) {
		t.Errorf("confirmed_at = %v, want %v", row.ConfirmedAt, confirmedAt)
	}
	if !row.Total.Equal(order.Total) {
		t.Errorf("total = %s, want %s", row.Total, order.Total)
	}

	var items []contractx.CartItemView
	if err := json.Unmarshal(row.Items, &items); err != nil {
		t.Fatalf("items payload is not valid JSON: %v", err)
	}
	if len(items) != 1 || items[0].Flavor != "Pastel de Queijo" || items[0].Quantity != 2 {
		t.Errorf("items = %#v", items)
	}
}

func TestBuildRowDefaultsConfirmedAt(t *testing.T) {
	t.Parallel()

	row, err := buildRow(contractx.Order{SessionID: "sess-1"})
	if err != nil {
		t.Fatalf("buildRow() error = %v", err)
	}
	if row.ConfirmedAt.IsZero() {
		t.Error("confirmed_at was not defaulted")
	}
}
