// Package tool implements the attendant's tool set. Every tool runs
// against the calling session's cart and profile; nothing here touches
// state owned by another session.
package tool

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/graphmind/pastelaria/agent/contract"
	statex "github.com/graphmind/pastelaria/agent/state"
)

const (
	ToolMenu            = "menu"
	ToolAddToCart       = "add_to_cart"
	ToolRemoveFromCart  = "remove_from_cart"
	ToolViewCart        = "view_cart"
	ToolClearCart       = "clear_cart"
	ToolSetCustomerInfo = "set_customer_info"
	ToolConfirmOrder    = "confirm_order"
)

// Deps carries the external collaborators the tool handlers need.
// Archive may be nil when no order store is configured.
type Deps struct {
	Graph   contractx.GraphStore
	Menu    contractx.MenuQA
	Archive contractx.OrderArchiver
	Now     func() time.Time
}

// Executor runs one tool call against a session and returns the result
// that goes back to the model. Failed preconditions come back in the
// result's Error field, never as a Go error.
type Executor func(ctx context.Context, sess *statex.Session, tool string, args map[string]any) contractx.ToolResult

type handler func(ctx context.Context, deps Deps, sess *statex.Session, args map[string]any) contractx.ToolResult

// NewExecutor builds the name-to-handler dispatch for the full tool set.
func NewExecutor(deps Deps) Executor {
	if deps.Now == nil {
		deps.Now = time.Now
	}

	handlers := map[string]handler{
		ToolMenu:            executeMenu,
		ToolAddToCart:       executeAddToCart,
		ToolRemoveFromCart:  executeRemoveFromCart,
		ToolViewCart:        executeViewCart,
		ToolClearCart:       executeClearCart,
		ToolSetCustomerInfo: executeSetCustomerInfo,
		ToolConfirmOrder:    executeConfirmOrder,
	}

	return func(ctx context.Context, sess *statex.Session, tool string, args map[string]any) contractx.ToolResult {
		h, ok := handlers[tool]
		if !ok {
			return contractx.ToolResult{
				Tool:  tool,
				Error: fmt.Sprintf("ferramenta desconhecida: %s", tool),
			}
		}
		return h(ctx, deps, sess, args)
	}
}

// Infos describes the tool set for model binding.
func Infos() []*schema.ToolInfo {
	return []*schema.ToolInfo{
		{
			Name: ToolMenu,
			Desc: "Answer questions about flavors, ingredients, and prices from the menu knowledge graph.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"question": {Type: schema.String, Desc: "Natural language question about the menu", Required: true},
			}),
		},
		{
			Name: ToolAddToCart,
			Desc: "Add a pastel to the cart after the customer confirms flavor and quantity.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"flavor":   {Type: schema.String, Desc: "Flavor as the customer said it", Required: true},
				"quantity": {Type: schema.Integer, Desc: "How many units; defaults to 1"},
			}),
		},
		{
			Name: ToolRemoveFromCart,
			Desc: "Remove a pastel from the cart or decrease its quantity.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"flavor":   {Type: schema.String, Desc: "Flavor to remove", Required: true},
				"quantity": {Type: schema.Integer, Desc: "Units to remove; omit to remove the whole line"},
			}),
		},
		{
			Name:        ToolViewCart,
			Desc:        "Show the current cart items and total.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
		},
		{
			Name:        ToolClearCart,
			Desc:        "Empty the cart so the customer can start over.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
		},
		{
			Name: ToolSetCustomerInfo,
			Desc: "Record a customer detail. Address is only accepted once the cart has items.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"field": {Type: schema.String, Desc: "One of: name, address, payment", Required: true},
				"value": {Type: schema.String, Desc: "The value the customer provided", Required: true},
			}),
		},
		{
			Name:        ToolConfirmOrder,
			Desc:        "Confirm the order once the customer explicitly approves it and all details are collected.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
		},
	}
}

func stringArg(args map[string]any, key string) string {
	if args == nil {
		return ""
	}
	if v, ok := args[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// intArg coerces a JSON-decoded argument into an int. Models hand
// quantities back as numbers or digit strings interchangeably.
func intArg(args map[string]any, key string) (int, bool) {
	if args == nil {
		return 0, false
	}
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
