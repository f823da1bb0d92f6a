package attendant

import (
	"fmt"
	"strings"

	contractx "github.com/graphmind/pastelaria/agent/contract"
	statex "github.com/graphmind/pastelaria/agent/state"
)

func validateRequest(in GraphInput) (*turnState, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: message text is empty", contractx.ErrValidation)
	}
	return &turnState{
		sessionID: strings.TrimSpace(in.SessionID),
		text:      text,
	}, nil
}

func (a *Attendant) loadSession(st *turnState) (*turnState, error) {
	st.sess = a.registry.GetOrCreate(st.sessionID)
	st.sessionID = st.sess.ID
	st.sess.AppendUser(st.text)
	return st, nil
}

// derivePolicyHint turns the session's collection stage and cart into a
// per-turn system supplement, so the model asks for the name first and
// only moves to address and payment once the cart has items.
func derivePolicyHint(st *turnState) (*turnState, error) {
	st.policy = policyHint(st.sess)
	return st, nil
}

func policyHint(sess *statex.Session) string {
	profile := sess.Profile

	var hints []string
	switch {
	case profile.Name == "":
		hints = append(hints, "O cliente ainda não disse o nome; pergunte com simpatia antes de fechar qualquer pedido.")
	case profile.Stage == statex.StageComplete && profile.OrderConfirmed:
		hints = append(hints, "O pedido já foi confirmado; agradeça e encerre com simpatia, sem reabrir a coleta de dados.")
	}

	if !sess.Cart.HasItems() {
		hints = append(hints, "O carrinho está vazio; não peça endereço nem forma de pagamento ainda.")
		return strings.Join(hints, " ")
	}

	var missing []string
	if profile.DeliveryAddress == "" {
		missing = append(missing, "endereço de entrega")
	}
	if profile.PaymentMethod == "" {
		missing = append(missing, "forma de pagamento")
	}
	switch {
	case len(missing) > 0:
		hints = append(hints, fmt.Sprintf("Quando o cliente terminar de montar o pedido, colete: %s.", strings.Join(missing, ", ")))
	case !profile.OrderConfirmed:
		hints = append(hints, "Todos os dados foram coletados; recapitule o pedido e peça a confirmação do cliente.")
	}
	return strings.Join(hints, " ")
}

func finalizeReply(st *turnState) (GraphOutput, error) {
	reply := strings.TrimSpace(st.replyText)
	if reply == "" {
		reply = apologyReply
	}
	st.sess.AppendAssistant(reply)

	return contractx.Reply{
		Text:     reply,
		Snapshot: st.sess.Snapshot(),
	}, nil
}
