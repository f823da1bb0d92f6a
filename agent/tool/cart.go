package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	contractx "github.com/graphmind/pastelaria/agent/contract"
	statex "github.com/graphmind/pastelaria/agent/state"
)

const menuLookupQuery = `
MATCH (p:Pastel)
RETURN p.name AS flavor, p.price AS price`

const (
	flavorNotFoundMsg   = "Não encontrei esse sabor no cardápio."
	cartEmptyMsg        = "O carrinho está vazio."
	cartAlreadyEmptyMsg = "O carrinho já está vazio."
	cartClearedMsg      = "Esvaziei o carrinho. Pode recomeçar o pedido!"
	flavorNotInCartMsg  = "Esse sabor não está no carrinho."
)

func executeAddToCart(ctx context.Context, deps Deps, sess *statex.Session, args map[string]any) contractx.ToolResult {
	flavorArg := stringArg(args, "flavor")
	if flavorArg == "" {
		return contractx.ToolResult{Tool: ToolAddToCart, Error: "Preciso do sabor para adicionar ao carrinho."}
	}

	// The customer often folds the quantity into the flavor text
	// ("2 pastéis de carne"); an embedded count beats a missing or
	// defaulted argument.
	flavorHint, parsedQty, hasPrefix := extractQuantityPrefix(flavorArg)
	qty, hasQty := intArg(args, "quantity")
	if !hasQty {
		qty = parsedQty
	}
	if qty <= 1 && hasPrefix && parsedQty > 1 {
		qty = parsedQty
	}
	if qty <= 0 {
		qty = 1
	}

	lookup := flavorHint
	if lookup == "" {
		lookup = flavorArg
	}
	entry, ok := lookupFlavor(ctx, deps.Graph, lookup)
	if !ok {
		return contractx.ToolResult{Tool: ToolAddToCart, Error: flavorNotFoundMsg}
	}

	item, err := sess.Cart.Add(entry.Name, entry.Price, qty)
	if err != nil {
		return contractx.ToolResult{Tool: ToolAddToCart, Error: flavorNotFoundMsg}
	}
	sess.Profile.MarkOrderUnconfirmed(sess.Cart.HasItems())

	merged := item.Quantity != qty
	var message string
	if merged {
		message = fmt.Sprintf("Atualizei o carrinho: agora são %d× %s (subtotal %s).",
			item.Quantity, item.Flavor, formatCurrency(item.Subtotal()))
	} else {
		message = fmt.Sprintf("Adicionei %d× %s ao carrinho (subtotal %s).",
			qty, item.Flavor, formatCurrency(item.Subtotal()))
	}
	return contractx.ToolResult{Tool: ToolAddToCart, Result: message}
}

func executeRemoveFromCart(ctx context.Context, deps Deps, sess *statex.Session, args map[string]any) contractx.ToolResult {
	if !sess.Cart.HasItems() {
		return contractx.ToolResult{Tool: ToolRemoveFromCart, Result: cartAlreadyEmptyMsg}
	}

	flavorArg := stringArg(args, "flavor")
	if flavorArg == "" {
		return contractx.ToolResult{Tool: ToolRemoveFromCart, Error: "Preciso do sabor para remover do carrinho."}
	}

	flavorHint, parsedQty, _ := extractQuantityPrefix(flavorArg)
	removeQty, hasQty := intArg(args, "quantity")
	if !hasQty {
		removeQty = parsedQty
	}
	if flavorHint != "" {
		flavorArg = flavorHint
	}

	target := normalizeText(flavorArg)
	matched, ok := sess.Cart.Find(func(flavor string) bool {
		candidate := normalizeText(flavor)
		return candidate == target || strings.Contains(candidate, target) || strings.Contains(target, candidate)
	})
	if !ok {
		return contractx.ToolResult{Tool: ToolRemoveFromCart, Error: flavorNotInCartMsg}
	}

	remaining, removed := sess.Cart.Remove(matched.Flavor, removeQty)
	if !removed {
		return contractx.ToolResult{Tool: ToolRemoveFromCart, Error: flavorNotInCartMsg}
	}
	sess.Profile.MarkOrderUnconfirmed(sess.Cart.HasItems())

	var message string
	if remaining.Quantity == 0 {
		message = fmt.Sprintf("Removi %s do carrinho.", matched.Flavor)
	} else {
		message = fmt.Sprintf("Atualizei %s para %d× (subtotal %s).",
			remaining.Flavor, remaining.Quantity, formatCurrency(remaining.Subtotal()))
	}
	return contractx.ToolResult{Tool: ToolRemoveFromCart, Result: message}
}

func executeViewCart(_ context.Context, _ Deps, sess *statex.Session, _ map[string]any) contractx.ToolResult {
	if !sess.Cart.HasItems() {
		return contractx.ToolResult{Tool: ToolViewCart, Result: cartEmptyMsg}
	}

	lines := []string{"Itens no carrinho:"}
	for _, item := range sess.Cart.Items() {
		lines = append(lines, fmt.Sprintf("%d× %s — %s cada (subtotal %s)",
			item.Quantity, item.Flavor, formatCurrency(item.UnitPrice), formatCurrency(item.Subtotal())))
	}
	lines = append(lines, fmt.Sprintf("Total: %s", formatCurrency(sess.Cart.Total())))
	return contractx.ToolResult{Tool: ToolViewCart, Result: strings.Join(lines, "\n")}
}

func executeClearCart(_ context.Context, _ Deps, sess *statex.Session, _ map[string]any) contractx.ToolResult {
	sess.Cart.Clear()
	sess.Profile.MarkOrderUnconfirmed(false)
	return contractx.ToolResult{Tool: ToolClearCart, Result: cartClearedMsg}
}

// lookupFlavor loads the menu and fuzzy-matches the requested flavor
// against it. The unit price is captured here, at add time.
func lookupFlavor(ctx context.Context, graph contractx.QueryRunner, flavor string) (contractx.Flavor, bool) {
	target := normalizeText(flavor)
	if target == "" || graph == nil {
		return contractx.Flavor{}, false
	}

	rows, err := graph.Query(ctx, menuLookupQuery)
	if err != nil {
		log.Warn().Err(err).Str("flavor", flavor).Msg("tool: menu lookup query failed")
		return contractx.Flavor{}, false
	}

	var best contractx.Flavor
	bestScore := 0.0
	for _, row := range rows {
		name := valueToString(row["flavor"])
		normalized := normalizeText(name)
		if normalized == "" {
			continue
		}

		price, err := valueToDecimal(row["price"])
		if err != nil {
			log.Warn().Str("flavor", name).Interface("price", row["price"]).Msg("tool: invalid menu price")
			continue
		}

		score := matchSimilarity(target, normalized)
		if score == 1.0 {
			return contractx.Flavor{Name: name, Price: price}, true
		}
		if score > bestScore {
			bestScore = score
			best = contractx.Flavor{Name: name, Price: price}
		}
	}

	if bestScore >= matchThreshold {
		return best, true
	}
	return contractx.Flavor{}, false
}

func valueToString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

func valueToDecimal(value any) (decimal.Decimal, error) {
	switch v := value.(type) {
	case string:
		return decimal.NewFromString(strings.TrimSpace(v))
	case []byte:
		return decimal.NewFromString(strings.TrimSpace(string(v)))
	case float64:
		return decimal.NewFromFloat(v), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	default:
		return decimal.Decimal{}, fmt.Errorf("unsupported price type %T", value)
	}
}
