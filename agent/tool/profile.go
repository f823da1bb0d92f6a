package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/graphmind/pastelaria/agent/contract"
	statex "github.com/graphmind/pastelaria/agent/state"
)

const (
	addressNeedsCartMsg = "Adicione itens ao carrinho antes de informar o endereço de entrega."
	orderConfirmedMsg   = "Pedido confirmado! Muito obrigado por escolher o Pastel do Mau!"
)

func executeSetCustomerInfo(_ context.Context, _ Deps, sess *statex.Session, args map[string]any) contractx.ToolResult {
	field := strings.ToLower(stringArg(args, "field"))
	value := stringArg(args, "value")
	if value == "" {
		return contractx.ToolResult{Tool: ToolSetCustomerInfo, Error: "Preciso do valor para registrar."}
	}

	var message string
	switch field {
	case "name":
		sess.Profile.SetName(value)
		message = fmt.Sprintf("Nome registrado: %s.", sess.Profile.Name)
	case "address":
		// Address collection is gated on the cart so the model does
		// not walk the customer through checkout before they order.
		if !sess.Cart.HasItems() {
			return contractx.ToolResult{Tool: ToolSetCustomerInfo, Error: addressNeedsCartMsg}
		}
		sess.Profile.SetAddress(value)
		message = fmt.Sprintf("Endereço de entrega registrado: %s.", sess.Profile.DeliveryAddress)
	case "payment":
		sess.Profile.SetPayment(value)
		message = fmt.Sprintf("Forma de pagamento registrada: %s.", sess.Profile.PaymentMethod)
	default:
		return contractx.ToolResult{
			Tool:  ToolSetCustomerInfo,
			Error: fmt.Sprintf("Campo desconhecido: %s. Use name, address ou payment.", field),
		}
	}

	sess.Profile.MarkOrderUnconfirmed(sess.Cart.HasItems())
	return contractx.ToolResult{Tool: ToolSetCustomerInfo, Result: message}
}

func executeConfirmOrder(ctx context.Context, deps Deps, sess *statex.Session, _ map[string]any) contractx.ToolResult {
	if !sess.Cart.HasItems() {
		return contractx.ToolResult{Tool: ToolConfirmOrder, Error: cartEmptyMsg}
	}

	var missing []string
	if sess.Profile.Name == "" {
		missing = append(missing, "nome")
	}
	if sess.Profile.DeliveryAddress == "" {
		missing = append(missing, "endereço de entrega")
	}
	if sess.Profile.PaymentMethod == "" {
		missing = append(missing, "forma de pagamento")
	}
	if len(missing) > 0 {
		return contractx.ToolResult{
			Tool:  ToolConfirmOrder,
			Error: fmt.Sprintf("Antes de confirmar preciso de: %s.", strings.Join(missing, ", ")),
		}
	}

	if !sess.Profile.ConfirmOrder(sess.Cart.HasItems()) {
		return contractx.ToolResult{Tool: ToolConfirmOrder, Error: "Ainda não consegui confirmar o pedido."}
	}

	if deps.Archive != nil {
		snapshot := sess.Snapshot()
		order := contractx.Order{
			SessionID:       sess.ID,
			CustomerName:    sess.Profile.Name,
			DeliveryAddress: sess.Profile.DeliveryAddress,
			PaymentMethod:   sess.Profile.PaymentMethod,
			Items:           snapshot.Items,
			Total:           snapshot.Total,
			ConfirmedAt:     deps.Now().UTC(),
		}
		// Archiving is bookkeeping; a store outage must not undo the
		// confirmation the customer just heard.
		if err := deps.Archive.Archive(ctx, order); err != nil {
			log.Warn().Err(err).Str("session_id", sess.ID).Msg("tool: order archive failed")
		}
	}

	return contractx.ToolResult{Tool: ToolConfirmOrder, Result: orderConfirmedMsg}
}
