package ledger

import "time"

type TxType string

const (
	TxAdd      TxType = "ADD"
	TxIncrease TxType = "INCREASE"
	TxDecrease TxType = "DECREASE"
)

// Reasons recorded on automatically generated transactions.
const (
	ReasonInitialStock = "Initial stock"
	ReasonAdjustment   = "Manual adjustment"
	ReasonStockUsage   = "Stock usage"
)

type Item struct {
	ID         int64
	Name       string
	Quantity   int64
	MinLevel   int64
	Unit       string
	CategoryID int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// LowStock reports whether the item is at or below its minimum level.
// Always computed on read, never stored.
func (i Item) LowStock() bool { return i.Quantity <= i.MinLevel }

// Transaction is one immutable row of the audit trail. Quantity is the
// magnitude of the change; Type carries the sign.
type Transaction struct {
	ID        int64
	ItemID    int64
	Type      TxType
	Quantity  int64
	Reason    string
	ActorID   int64
	CreatedAt time.Time

	// Display-only joins, filled by listing queries. ItemName is empty when
	// the item has since been deleted; the row itself is never removed.
	ItemName  string
	ActorName string
}

// Delta is the signed quantity change this transaction represents.
func (t Transaction) Delta() int64 {
	if t.Type == TxDecrease {
		return -t.Quantity
	}
	return t.Quantity
}
