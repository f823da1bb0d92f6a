package tool

import (
	"context"
	"testing"
	"time"

	contractx "github.com/graphmind/pastelaria/agent/contract"
	statex "github.com/graphmind/pastelaria/agent/state"
)

type fakeArchive struct {
	orders []contractx.Order
	err    error
}

func (f *fakeArchive) Archive(ctx context.Context, order contractx.Order) error {
	f.orders = append(f.orders, order)
	return f.err
}

func TestSetCustomerInfoAddressRequiresCart(t *testing.T) {
	t.Parallel()

	exec := NewExecutor(Deps{Graph: menuGraph()})
	sess := newTestSession()

	res := exec(context.Background(), sess, ToolSetCustomerInfo, map[string]any{"field": "address", "value": "Rua X, 10"})
	if res.Error != addressNeedsCartMsg {
		t.Fatalf("error = %q, want address precondition message", res.Error)
	}
	if sess.Profile.DeliveryAddress != "" {
		t.Errorf("address must stay unset, got %q", sess.Profile.DeliveryAddress)
	}
}

func TestSetCustomerInfoFields(t *testing.T) {
	t.Parallel()

	exec := NewExecutor(Deps{Graph: menuGraph()})
	sess := newTestSession()

	if res := exec(context.Background(), sess, ToolSetCustomerInfo, map[string]any{"field": "name", "value": "  Ana  "}); res.Error != "" {
		t.Fatalf("set name failed: %s", res.Error)
	}
	if sess.Profile.Name != "Ana" {
		t.Errorf("name = %q, want Ana", sess.Profile.Name)
	}

	exec(context.Background(), sess, ToolAddToCart, map[string]any{"flavor": "queijo"})

	if res := exec(context.Background(), sess, ToolSetCustomerInfo, map[string]any{"field": "address", "value": "Rua X, 10"}); res.Error != "" {
		t.Fatalf("set address failed: %s", res.Error)
	}
	if res := exec(context.Background(), sess, ToolSetCustomerInfo, map[string]any{"field": "payment", "value": "pix"}); res.Error != "" {
		t.Fatalf("set payment failed: %s", res.Error)
	}

	if sess.Profile.Stage != statex.StageAwaitingConfirmation {
		t.Errorf("stage = %s, want awaiting_confirmation", sess.Profile.Stage)
	}
}

func TestSetCustomerInfoUnknownField(t *testing.T) {
	t.Parallel()

	exec := NewExecutor(Deps{Graph: menuGraph()})
	sess := newTestSession()

	res := exec(context.Background(), sess, ToolSetCustomerInfo, map[string]any{"field": "birthday", "value": "hoje"})
	if res.Error == "" {
		t.Fatal("expected an error result for an unknown field")
	}
}

func TestConfirmOrderRequiresCompleteProfileAndCart(t *testing.T) {
	t.Parallel()

	exec := NewExecutor(Deps{Graph: menuGraph()})
	sess := newTestSession()

	if res := exec(context.Background(), sess, ToolConfirmOrder, nil); res.Error != cartEmptyMsg {
		t.Fatalf("error = %q, want empty-cart message", res.Error)
	}

	exec(context.Background(), sess, ToolAddToCart, map[string]any{"flavor": "queijo"})
	if res := exec(context.Background(), sess, ToolConfirmOrder, nil); res.Error == "" {
		t.Fatal("expected missing-fields error before profile is complete")
	}
	if sess.Profile.OrderConfirmed {
		t.Error("order must not confirm with an incomplete profile")
	}
}

func TestConfirmOrderArchivesAndMarksReady(t *testing.T) {
	t.Parallel()

	archive := &fakeArchive{}
	confirmedAt := time.Date(2026, 8, 12, 18, 30, 0, 0, time.UTC)
	exec := NewExecutor(Deps{
		Graph:   menuGraph(),
		Archive: archive,
		Now:     func() time.Time { return confirmedAt },
	})
	sess := newTestSession()

	exec(context.Background(), sess, ToolAddToCart, map[string]any{"flavor": "queijo", "quantity": float64(2)})
	exec(context.Background(), sess, ToolSetCustomerInfo, map[string]any{"field": "name", "value": "Ana"})
	exec(context.Background(), sess, ToolSetCustomerInfo, map[string]any{"field": "address", "value": "Rua X, 10"})
	exec(context.Background(), sess, ToolSetCustomerInfo, map[string]any{"field": "payment", "value": "pix"})

	res := exec(context.Background(), sess, ToolConfirmOrder, nil)
	if res.Error != "" {
		t.Fatalf("confirm failed: %s", res.Error)
	}
	if res.Result != orderConfirmedMsg {
		t.Errorf("unexpected result: %v", res.Result)
	}
	if !sess.OrderReady() {
		t.Error("session should report order ready after confirmation")
	}

	if len(archive.orders) != 1 {
		t.Fatalf("archived %d orders, want 1", len(archive.orders))
	}
	order := archive.orders[0]
	if order.CustomerName != "Ana" || order.PaymentMethod != "pix" {
		t.Errorf("unexpected order: %+v", order)
	}
	if !order.ConfirmedAt.Equal(confirmedAt) {
		t.Errorf("confirmed at = %v, want %v", order.ConfirmedAt, confirmedAt)
	}
	if got := order.Total.StringFixed(2); got != "17.00" {
		t.Errorf("order total = %s, want 17.00", got)
	}
}

func TestCartEditAfterConfirmationClearsFlag(t *testing.T) {
	t.Parallel()

	exec := NewExecutor(Deps{Graph: menuGraph()})
	sess := newTestSession()

	exec(context.Background(), sess, ToolAddToCart, map[string]any{"flavor": "queijo"})
	exec(context.Background(), sess, ToolSetCustomerInfo, map[string]any{"field": "name", "value": "Ana"})
	exec(context.Background(), sess, ToolSetCustomerInfo, map[string]any{"field": "address", "value": "Rua X, 10"})
	exec(context.Background(), sess, ToolSetCustomerInfo, map[string]any{"field": "payment", "value": "pix"})
	exec(context.Background(), sess, ToolConfirmOrder, nil)

	if !sess.Profile.OrderConfirmed {
		t.Fatal("order should be confirmed")
	}

	exec(context.Background(), sess, ToolAddToCart, map[string]any{"flavor": "carne"})
	if sess.Profile.OrderConfirmed {
		t.Error("editing the cart must clear the confirmation flag")
	}
	if sess.Profile.Stage != statex.StageAwaitingConfirmation {
		t.Errorf("stage = %s, want awaiting_confirmation", sess.Profile.Stage)
	}
}

var _ contractx.OrderArchiver = (*fakeArchive)(nil)
