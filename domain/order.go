package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// MaxLineQuantity caps the quantity of one pack size in a cart or an order.
const MaxLineQuantity = 1000

// MaxAmount is the largest value a numeric(12,2) money column holds.
var MaxAmount = decimal.RequireFromString("9999999999.99")

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusProcessed  OrderStatus = "processed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusProcessed, OrderStatusCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
	PaymentStatusFailed PaymentStatus = "failed"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPaid, PaymentStatusFailed:
		return true
	}
	return false
}

// Order keeps a copy of the buyer's contact details and of every line's
// name and price as they were at checkout. Later product edits do not touch it.
type Order struct {
	ID                uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID            uint            `gorm:"column:user_id;index;not null" json:"userId"`
	Username          string          `gorm:"column:username;not null" json:"username"`
	PhoneNumber       string          `gorm:"column:phone_number;not null" json:"phoneNumber"`
	Address           string          `gorm:"column:address;type:text;not null" json:"address"`
	Items             []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
	TotalAmount       decimal.Decimal `gorm:"column:total_amount;type:numeric(12,2);not null" json:"totalAmount"`
	Currency          string          `gorm:"column:currency;type:varchar(3);default:INR" json:"currency"`
	Status            OrderStatus     `gorm:"column:status;type:varchar(20);default:pending;index" json:"status"`
	PaymentStatus     PaymentStatus   `gorm:"column:payment_status;type:varchar(20);default:unpaid;index" json:"paymentStatus"`
	RazorpayOrderID   string          `gorm:"column:razorpay_order_id;uniqueIndex" json:"razorpayOrderId"`
	RazorpayPaymentID string          `gorm:"column:razorpay_payment_id" json:"razorpayPaymentId,omitempty"`
	RazorpaySignature string          `gorm:"column:razorpay_signature" json:"razorpaySignature,omitempty"`
	FailureReason     string          `gorm:"column:failure_reason;type:text" json:"failureReason,omitempty"`
	CreatedAt         time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

func (Order) TableName() string {
	return "orders"
}

type OrderItem struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement" json:"-"`
	OrderID   uint64          `gorm:"column:order_id;index;not null" json:"-"`
	ProductID uint64          `gorm:"column:product_id;not null" json:"productId"`
	Name      string          `gorm:"column:name;not null" json:"name"`
	PackSize  string          `gorm:"column:pack_size;not null" json:"packSize"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	Quantity  int             `gorm:"column:quantity;not null" json:"quantity"`
	LineTotal decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null" json:"lineTotal"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// OrderFilter narrows order listings. Zero values match everything.
type OrderFilter struct {
	Status        OrderStatus
	PaymentStatus PaymentStatus
	Search        string
	From          *time.Time
	To            *time.Time
}
