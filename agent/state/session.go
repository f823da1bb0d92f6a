package state

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/shopspring/decimal"

	contractx "github.com/graphmind/pastelaria/agent/contract"
)

// InfoStage tracks how far the attendant has come in collecting the
// customer data needed to close an order. Address and payment are only
// reachable once the cart has items.
type InfoStage string

const (
	StageNeedName             InfoStage = "need_name"
	StageAwaitingName         InfoStage = "awaiting_name"
	StageIdle                 InfoStage = "idle"
	StageAwaitingAddress      InfoStage = "awaiting_address"
	StageAwaitingPayment      InfoStage = "awaiting_payment"
	StageAwaitingConfirmation InfoStage = "awaiting_confirmation"
	StageComplete             InfoStage = "complete"
)

var (
	ErrInvalidSession  = errors.New("session id is empty")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrEmptyFlavor     = errors.New("flavor is empty")
)

// CartItem is one deduplicated cart line. UnitPrice is captured from the
// menu at add time and never re-queried.
type CartItem struct {
	Flavor    string          `json:"flavor"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

func (i CartItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is an ordered sequence of deduplicated items. The total is always
// derived from the items so it cannot drift.
type Cart struct {
	items []CartItem
}

// Add merges the flavor into the cart: an existing line (case-insensitive
// flavor match) has its quantity incremented, otherwise a new line is
// appended. It returns the resulting line.
func (c *Cart) Add(flavor string, unitPrice decimal.Decimal, qty int) (CartItem, error) {
	if strings.TrimSpace(flavor) == "" {
		return CartItem{}, ErrEmptyFlavor
	}
	if qty <= 0 {
		return CartItem{}, fmt.Errorf("%w: %d", ErrInvalidQuantity, qty)
	}
	for idx := range c.items {
		if strings.EqualFold(c.items[idx].Flavor, flavor) {
			c.items[idx].Quantity += qty
			return c.items[idx], nil
		}
	}
	item := CartItem{Flavor: flavor, UnitPrice: unitPrice, Quantity: qty}
	c.items = append(c.items, item)
	return item, nil
}

// Remove decreases the quantity of the named line, dropping the line when
// qty is zero (remove all) or meets the current quantity. It reports the
// remaining line and whether anything was removed.
func (c *Cart) Remove(flavor string, qty int) (CartItem, bool) {
	for idx := range c.items {
		if !strings.EqualFold(c.items[idx].Flavor, flavor) {
			continue
		}
		if qty <= 0 || qty >= c.items[idx].Quantity {
			removed := c.items[idx]
			removed.Quantity = 0
			c.items = append(c.items[:idx], c.items[idx+1:]...)
			return removed, true
		}
		c.items[idx].Quantity -= qty
		return c.items[idx], true
	}
	return CartItem{}, false
}

// Find returns the stored line whose flavor satisfies the predicate.
func (c *Cart) Find(match func(flavor string) bool) (CartItem, bool) {
	for _, item := range c.items {
		if match(item.Flavor) {
			return item, true
		}
	}
	return CartItem{}, false
}

func (c *Cart) Clear() {
	c.items = nil
}

func (c *Cart) HasItems() bool {
	return len(c.items) > 0
}

func (c *Cart) Len() int {
	return len(c.items)
}

// Items returns a copy of the cart lines in insertion order.
func (c *Cart) Items() []CartItem {
	out := make([]CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// Total is the derived sum of quantity × unit price over all lines.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// CustomerProfile holds the customer data collected during the
// conversation. All fields start unset.
type CustomerProfile struct {
	Name            string    `json:"name,omitempty"`
	DeliveryAddress string    `json:"delivery_address,omitempty"`
	PaymentMethod   string    `json:"payment_method,omitempty"`
	Stage           InfoStage `json:"stage"`
	OrderConfirmed  bool      `json:"order_confirmed"`
}

func newProfile() CustomerProfile {
	return CustomerProfile{Stage: StageNeedName}
}

func (p *CustomerProfile) SetName(name string) {
	p.Name = strings.TrimSpace(name)
	if p.Stage == StageNeedName || p.Stage == StageAwaitingName {
		p.Stage = StageIdle
	}
}

func (p *CustomerProfile) SetAddress(address string) {
	p.DeliveryAddress = strings.TrimSpace(address)
	if p.Stage == StageAwaitingAddress {
		p.Stage = StageIdle
	}
}

func (p *CustomerProfile) SetPayment(method string) {
	p.PaymentMethod = strings.TrimSpace(method)
	if p.Stage == StageAwaitingPayment {
		p.Stage = StageIdle
	}
}

// HasAllFields reports whether name, address, and payment are recorded.
func (p *CustomerProfile) HasAllFields() bool {
	return p.Name != "" && p.DeliveryAddress != "" && p.PaymentMethod != ""
}

// MarkOrderUnconfirmed clears the confirmation flag after any order
// change and recomputes the stage.
func (p *CustomerProfile) MarkOrderUnconfirmed(cartHasItems bool) {
	p.OrderConfirmed = false
	switch {
	case p.HasAllFields() && cartHasItems:
		p.Stage = StageAwaitingConfirmation
	case p.Stage == StageComplete:
		p.Stage = StageIdle
	}
}

// ConfirmOrder marks the order confirmed once every field is present and
// the cart has items.
func (p *CustomerProfile) ConfirmOrder(cartHasItems bool) bool {
	if !p.HasAllFields() || !cartHasItems {
		return false
	}
	p.OrderConfirmed = true
	p.Stage = StageComplete
	return true
}

// Session is the unit of conversational isolation: one per browser
// session, in-memory only, exclusively owned by the Registry.
type Session struct {
	ID        string
	CreatedAt time.Time

	History []*schema.Message
	Cart    Cart
	Profile CustomerProfile
}

func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		CreatedAt: now.UTC(),
		Profile:   newProfile(),
	}
}

func (s *Session) AppendUser(text string) {
	s.History = append(s.History, schema.UserMessage(text))
}

func (s *Session) AppendAssistant(text string) {
	s.History = append(s.History, schema.AssistantMessage(text, nil))
}

func (s *Session) Append(msg *schema.Message) {
	if msg != nil {
		s.History = append(s.History, msg)
	}
}

// OrderReady reports whether the order can be dispatched: full profile,
// confirmed, and a non-empty cart.
func (s *Session) OrderReady() bool {
	return s.Profile.HasAllFields() && s.Profile.OrderConfirmed && s.Cart.HasItems()
}

// Snapshot builds the read-only view handed to the UI boundary.
func (s *Session) Snapshot() contractx.Snapshot {
	items := make([]contractx.CartItemView, 0, s.Cart.Len())
	for _, item := range s.Cart.Items() {
		items = append(items, contractx.CartItemView{
			Flavor:    item.Flavor,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal(),
		})
	}
	return contractx.Snapshot{
		SessionID: s.ID,
		Items:     items,
		Total:     s.Cart.Total(),
		Profile: contractx.ProfileView{
			Name:           s.Profile.Name,
			Address:        s.Profile.DeliveryAddress,
			Payment:        s.Profile.PaymentMethod,
			Stage:          string(s.Profile.Stage),
			OrderConfirmed: s.Profile.OrderConfirmed,
		},
		OrderReady: s.OrderReady(),
	}
}
