package contract

import (
	"time"

	"github.com/shopspring/decimal"
)

// Row is a single record returned by the graph store, keyed by the
// column alias from the Cypher RETURN clause.
type Row = map[string]any

// Flavor is one menu entry as read from the graph store.
type Flavor struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// ToolRequest is one tool invocation asked for by the model.
type ToolRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

// ToolResult is what a tool hands back to the model. Error carries a
// customer-relatable description of a failed precondition or lookup;
// it is conversational material, not a Go error.
type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// CartItemView is the read-only projection of a cart line for the UI
// boundary and the order archive.
type CartItemView struct {
	Flavor    string          `json:"flavor"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// ProfileView is the read-only projection of the customer profile.
type ProfileView struct {
	Name           string `json:"name,omitempty"`
	Address        string `json:"address,omitempty"`
	Payment        string `json:"payment,omitempty"`
	Stage          string `json:"stage"`
	OrderConfirmed bool   `json:"order_confirmed"`
}

// Snapshot is the per-turn read-only view handed to the UI boundary.
type Snapshot struct {
	SessionID  string          `json:"session_id"`
	Items      []CartItemView  `json:"items"`
	Total      decimal.Decimal `json:"total"`
	Profile    ProfileView     `json:"profile"`
	OrderReady bool            `json:"order_ready"`
}

// Reply is the outcome of one turn.
type Reply struct {
	Text     string   `json:"text"`
	Snapshot Snapshot `json:"snapshot"`
}

// Order is a confirmed order as handed to the archive.
type Order struct {
	SessionID       string          `json:"session_id"`
	CustomerName    string          `json:"customer_name"`
	DeliveryAddress string          `json:"delivery_address"`
	PaymentMethod   string          `json:"payment_method"`
	Items           []CartItemView  `json:"items"`
	Total           decimal.Decimal `json:"total"`
	ConfirmedAt     time.Time       `json:"confirmed_at"`
}
