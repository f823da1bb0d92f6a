package tool

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	contractx "github.com/graphmind/pastelaria/agent/contract"
	statex "github.com/graphmind/pastelaria/agent/state"
)

type fakeGraph struct {
	rows     []map[string]any
	queryErr error
}

func (f *fakeGraph) Query(ctx context.Context, cypher string) ([]map[string]any, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.rows, nil
}

func (f *fakeGraph) SchemaDescription(ctx context.Context) (string, error) {
	return "", nil
}

type fakeMenu struct {
	answer string
	err    error
}

func (f *fakeMenu) Answer(ctx context.Context, question string) (string, error) {
	return f.answer, f.err
}

func menuGraph() *fakeGraph {
	return &fakeGraph{rows: []map[string]any{
		{"flavor": "Pastel de Queijo", "price": "8.50"},
		{"flavor": "Pastel de Carne", "price": "9.00"},
		{"flavor": "Pastel de Frango com Catupiry", "price": "10.50"},
	}}
}

func newTestSession() *statex.Session {
	return statex.NewSession("sess-1", time.Now())
}

func TestAddToCartMergesDuplicates(t *testing.T) {
	t.Parallel()

	exec := NewExecutor(Deps{Graph: menuGraph()})
	sess := newTestSession()

	res := exec(context.Background(), sess, ToolAddToCart, map[string]any{"flavor": "Pastel de Queijo", "quantity": float64(2)})
	if res.Error != "" {
		t.Fatalf("first add failed: %s", res.Error)
	}
	res = exec(context.Background(), sess, ToolAddToCart, map[string]any{"flavor": "pastel de queijo", "quantity": float64(1)})
	if res.Error != "" {
		t.Fatalf("second add failed: %s", res.Error)
	}

	items := sess.Cart.Items()
	if len(items) != 1 {
		t.Fatalf("cart has %d lines, want 1", len(items))
	}
	if items[0].Quantity != 3 {
		t.Errorf("quantity = %d, want 3", items[0].Quantity)
	}
	if got := sess.Cart.Total().StringFixed(2); got != "25.50" {
		t.Errorf("total = %s, want 25.50", got)
	}
}

func TestAddToCartQuantityEmbeddedInFlavor(t *testing.T) {
	t.Parallel()

	exec := NewExecutor(Deps{Graph: menuGraph()})
	sess := newTestSession()

	res := exec(context.Background(), sess, ToolAddToCart, map[string]any{"flavor": "2 pastéis de carne"})
	if res.Error != "" {
		t.Fatalf("add failed: %s", res.Error)
	}

	items := sess.Cart.Items()
	if len(items) != 1 || items[0].Flavor != "Pastel de Carne" {
		t.Fatalf("unexpected cart: %+v", items)
	}
	if items[0].Quantity != 2 {
		t.Errorf("quantity = %d, want 2", items[0].Quantity)
	}
}

func TestAddToCartFuzzyFlavorMatch(t *testing.T) {
	t.Parallel()

	exec := NewExecutor(Deps{Graph: menuGraph()})
	sess := newTestSession()

	res := exec(context.Background(), sess, ToolAddToCart, map[string]any{"flavor": "frango"})
	if res.Error != "" {
		t.Fatalf("add failed: %s", res.Error)
	}
	items := sess.Cart.Items()
	if len(items) != 1 || items[0].Flavor != "Pastel de Frango com Catupiry" {
		t.Fatalf("unexpected cart: %+v", items)
	}
}

func TestAddToCartUnknownFlavor(t *testing.T) {
	t.Parallel()

	exec := NewExecutor(Deps{Graph: menuGraph()})
	sess := newTestSession()

	res := exec(context.Background(), sess, ToolAddToCart, map[string]any{"flavor": "chocolate belga"})
	if res.Error != flavorNotFoundMsg {
		t.Fatalf("error = %q, want flavor-not-found", res.Error)
	}
	if sess.Cart.HasItems() {
		t.Error("cart should stay empty after a failed lookup")
	}
}

func TestAddToCartQueryFailure(t *testing.T) {
	t.Parallel()

	exec := NewExecutor(Deps{Graph: &fakeGraph{queryErr: errors.New("connection refused")}})
	sess := newTestSession()

	res := exec(context.Background(), sess, ToolAddToCart, map[string]any{"flavor": "queijo"})
	if res.Error == "" {
		t.Fatal("expected an error result when the menu store is down")
	}
	if sess.Cart.HasItems() {
		t.Error("cart must be untouched on store failure")
	}
}

func TestRemoveFromCartDecreasesQuantity(t *testing.T) {
	t.Parallel()

	exec := NewExecutor(Deps{Graph: menuGraph()})
	sess := newTestSession()

	exec(context.Background(), sess, ToolAddToCart, map[string]any{"flavor": "queijo", "quantity": float64(3)})
	res := exec(context.Background(), sess, ToolRemoveFromCart, map[string]any{"flavor": "queijo", "quantity": float64(1)})
	if res.Error != "" {
		t.Fatalf("remove failed: %s", res.Error)
	}

	items := sess.Cart.Items()
	if len(items) != 1 || items[0].Quantity != 2 {
		t.Fatalf("unexpected cart: %+v", items)
	}
}

func TestRemoveFromCartDropsLineWithoutQuantity(t *testing.T) {
	t.Parallel()

	exec := NewExecutor(Deps{Graph: menuGraph()})
	sess := newTestSession()

	exec(context.Background(), sess, ToolAddToCart, map[string]any{"flavor": "carne", "quantity": float64(2)})
	res := exec(context.Background(), sess, ToolRemoveFromCart, map[string]any{"flavor": "carne"})
	if res.Error != "" {
		t.Fatalf("remove failed: %s", res.Error)
	}
	if sess.Cart.HasItems() {
		t.Errorf("cart should be empty, got %+v", sess.Cart.Items())
	}
}

func TestRemoveFromCartMissingFlavor(t *testing.T) {
	t.Parallel()

	exec := NewExecutor(Deps{Graph: menuGraph()})
	sess := newTestSession()

	exec(context.Background(), sess, ToolAddToCart, map[string]any{"flavor": "queijo"})
	res := exec(context.Background(), sess, ToolRemoveFromCart, map[string]any{"flavor": "camarão"})
	if res.Error != flavorNotInCartMsg {
		t.Fatalf("error = %q, want not-in-cart", res.Error)
	}
}

func TestClearCartThenViewReportsEmpty(t *testing.T) {
	t.Parallel()

	exec := NewExecutor(Deps{Graph: menuGraph()})
	sess := newTestSession()

	exec(context.Background(), sess, ToolAddToCart, map[string]any{"flavor": "queijo", "quantity": float64(2)})
	res := exec(context.Background(), sess, ToolClearCart, nil)
	if res.Result != cartClearedMsg {
		t.Fatalf("unexpected clear result: %v", res.Result)
	}

	res = exec(context.Background(), sess, ToolViewCart, nil)
	if res.Result != cartEmptyMsg {
		t.Fatalf("view after clear = %v, want empty-cart message", res.Result)
	}
	if got := sess.Cart.Total().StringFixed(2); got != "0.00" {
		t.Errorf("total after clear = %s, want 0.00", got)
	}
}

func TestViewCartListsLinesAndTotal(t *testing.T) {
	t.Parallel()

	exec := NewExecutor(Deps{Graph: menuGraph()})
	sess := newTestSession()

	exec(context.Background(), sess, ToolAddToCart, map[string]any{"flavor": "queijo", "quantity": float64(2)})
	exec(context.Background(), sess, ToolAddToCart, map[string]any{"flavor": "carne", "quantity": float64(1)})

	res := exec(context.Background(), sess, ToolViewCart, nil)
	text, ok := res.Result.(string)
	if !ok {
		t.Fatalf("result is %T, want string", res.Result)
	}
	if !strings.Contains(text, "2× Pastel de Queijo") {
		t.Errorf("missing queijo line in %q", text)
	}
	if !strings.Contains(text, "Total: R$26,00") {
		t.Errorf("missing total in %q", text)
	}
}

func TestMenuToolDelegatesToQA(t *testing.T) {
	t.Parallel()

	exec := NewExecutor(Deps{Graph: menuGraph(), Menu: &fakeMenu{answer: "Temos queijo, carne e frango."}})
	sess := newTestSession()

	res := exec(context.Background(), sess, ToolMenu, map[string]any{"question": "quais sabores tem?"})
	if res.Error != "" {
		t.Fatalf("menu failed: %s", res.Error)
	}
	if res.Result != "Temos queijo, carne e frango." {
		t.Errorf("unexpected answer: %v", res.Result)
	}
}

func TestMenuToolDegradesOnFailure(t *testing.T) {
	t.Parallel()

	exec := NewExecutor(Deps{Graph: menuGraph(), Menu: &fakeMenu{err: errors.New("timeout")}})
	sess := newTestSession()

	res := exec(context.Background(), sess, ToolMenu, map[string]any{"question": "tem pastel doce?"})
	if res.Error != menuUnavailableMsg {
		t.Fatalf("error = %q, want unavailable message", res.Error)
	}
}

func TestUnknownToolReturnsErrorResult(t *testing.T) {
	t.Parallel()

	exec := NewExecutor(Deps{Graph: menuGraph()})
	sess := newTestSession()

	res := exec(context.Background(), sess, "teleport", nil)
	if res.Error == "" {
		t.Fatal("expected an error result for an unknown tool")
	}
}

func TestToolInfosCoverCatalog(t *testing.T) {
	t.Parallel()

	want := map[string]bool{
		ToolMenu:            false,
		ToolAddToCart:       false,
		ToolRemoveFromCart:  false,
		ToolViewCart:        false,
		ToolClearCart:       false,
		ToolSetCustomerInfo: false,
		ToolConfirmOrder:    false,
	}
	for _, info := range Infos() {
		if _, ok := want[info.Name]; !ok {
			t.Errorf("unexpected tool %q", info.Name)
			continue
		}
		want[info.Name] = true
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("tool %q missing from Infos", name)
		}
	}
}

var _ contractx.GraphStore = (*fakeGraph)(nil)
var _ contractx.MenuQA = (*fakeMenu)(nil)
