package domain

import "github.com/shopspring/decimal"

// RazorpayOrder is the gateway's order entity as returned by POST /v1/orders.
type RazorpayOrder struct {
	ID         string            `json:"id"`
	Entity     string            `json:"entity"`
	Amount     int64             `json:"amount"`
	AmountPaid int64             `json:"amount_paid"`
	AmountDue  int64             `json:"amount_due"`
	Currency   string            `json:"currency"`
	Receipt    string            `json:"receipt"`
	Status     string            `json:"status"`
	Attempts   int               `json:"attempts"`
	Notes      map[string]string `json:"notes"`
	CreatedAt  int64             `json:"created_at"`
}

type RazorpayOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type RazorpayErrorResponse struct {
	Error RazorpayErrorDetail `json:"error"`
}

type RazorpayErrorDetail struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Source      string `json:"source"`
	Step        string `json:"step"`
	Reason      string `json:"reason"`
	Field       string `json:"field"`
}

// CheckoutSession is what the client needs to open the gateway's payment UI.
type CheckoutSession struct {
	OrderID         uint64          `json:"orderId"`
	RazorpayOrderID string          `json:"razorpayOrderId"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	AmountSubunits  int64           `json:"amount"`
	Currency        string          `json:"currency"`
	KeyID           string          `json:"keyId"`
}
