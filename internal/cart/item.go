package cart

import "github.com/shopspring/decimal"

// Item is one cart line. Line identity is the (ProductID, Option) pair: the
// same product under two option labels is two distinct lines.
type Item struct {
	ProductID string          `json:"product_id"`
	Option    string          `json:"option"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

type lineKey struct {
	productID string
	option    string
}

func (i Item) key() lineKey {
	return lineKey{productID: i.ProductID, option: i.Option}
}

// Subtotal returns unit price times quantity for the line.
func (i Item) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// NoticeLevel distinguishes the sign-in call-to-action from failures.
type NoticeLevel string

const (
	NoticeInfo  NoticeLevel = "info"
	NoticeError NoticeLevel = "error"
)

// Notice is a transient, dismissible user-facing message emitted by a cart
// operation. Operations never fail with an error; notices are the only
// failure channel.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// View is the snapshot an operation hands back to the UI layer.
type View struct {
	Items   []Item   `json:"items"`
	Loading bool     `json:"loading"`
	Busy    bool     `json:"busy"`
	Notices []Notice `json:"notices,omitempty"`
}

// Total sums the line subtotals.
func (v View) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range v.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}
