// Package orders defines the order data model shared by the mock upstream
// and the fetch pipeline, together with the flat tabular schema the pipeline
// emits.
package orders

// Status is the lifecycle state of an order.
type Status string

const (
	StatusCreated   Status = "created"
	StatusConfirmed Status = "confirmed"
	StatusInvoiced  Status = "invoiced"
	StatusPaid      Status = "paid"
)

// Statuses lists every valid order status.
var Statuses = []Status{StatusCreated, StatusConfirmed, StatusInvoiced, StatusPaid}

// Currency is the ISO currency code an order is billed in.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
)

// Currencies lists every valid order currency.
var Currencies = []Currency{CurrencyUSD, CurrencyEUR, CurrencyGBP}

// Contact is the billing contact attached to an order.
type Contact struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Country string `json:"country"`
}

// LineItem is a single billed position on an order.
type LineItem struct {
	SKU        string  `json:"sku"`
	Name       string  `json:"name"`
	Qty        int     `json:"qty"`
	UnitPrice  float64 `json:"unit_price"`
	Amount     float64 `json:"amount"`
	UsageMonth string  `json:"usage_month"`
}

// Order is the full upstream order document returned by GET /item/{id}.
// Monetary amounts are rounded to two decimals upstream; total equals
// subtotal plus tax as produced there, the client only transports it.
type Order struct {
	OrderID   int        `json:"order_id"`
	AccountID int        `json:"account_id"`
	Company   string     `json:"company"`
	Contact   Contact    `json:"contact"`
	Status    Status     `json:"status"`
	Currency  Currency   `json:"currency"`
	Lines     []LineItem `json:"lines"`
	Subtotal  float64    `json:"subtotal"`
	Tax       float64    `json:"tax"`
	Total     float64    `json:"total"`
	CreatedAt string     `json:"created_at"`
	Source    string     `json:"source"`
}

// Fields is the fixed column schema of the tabular output, in order.
var Fields = []string{
	"order_id",
	"account_id",
	"company",
	"status",
	"currency",
	"subtotal",
	"tax",
	"total",
	"created_at",
}
