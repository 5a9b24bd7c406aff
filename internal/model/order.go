package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the central aggregate. CustomerID and UserID (the assigned
// fulfiller) are nullable. Status always starts at StatusPending.
type Order struct {
	OrderID       int64  `gorm:"primaryKey;autoIncrement"`
	MerchantID    int64  `gorm:"index;not null"`
	CustomerID    *int64 `gorm:"index"`
	UserID        *int64 `gorm:"index"` // assigned fulfiller
	OrderSource   string `gorm:"not null;default:'Manual'"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Status        string          `gorm:"not null;default:'pending'"`
	PaymentStatus string          `gorm:"not null;default:'pending'"`
	PaymentMethod string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Customer *Customer   `gorm:"foreignKey:CustomerID"`
	Items    []OrderItem `gorm:"foreignKey:OrderID"`
}

func (Order) TableName() string { return "oms.orders" }

// OrderItem snapshots quantity and price at order time: later product or
// inventory price changes never alter the stored line.
type OrderItem struct {
	OrderItemID  int64  `gorm:"primaryKey;autoIncrement"`
	OrderID      int64  `gorm:"index;not null"`
	ProductID    int64  `gorm:"index;not null"`
	SKU          string
	Quantity     int             `gorm:"not null"`
	PricePerUnit decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	TotalPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt    time.Time
}

func (OrderItem) TableName() string { return "oms.order_items" }

// OrderStatusHistory is the append-only audit trail: one row per status
// transition, written in the same transaction as the status change. Rows are
// never updated or deleted.
type OrderStatusHistory struct {
	HistoryID int64  `gorm:"primaryKey;autoIncrement"`
	OrderID   int64  `gorm:"index;not null"`
	OldStatus string `gorm:"not null"`
	NewStatus string `gorm:"not null"`
	ChangedBy int64  `gorm:"not null"`
	CreatedAt time.Time
}

func (OrderStatusHistory) TableName() string { return "oms.order_status_history" }

// Payment is the single payment row per order, upserted in place on every
// payment status change. No payment history is retained.
type Payment struct {
	PaymentID     int64  `gorm:"primaryKey;autoIncrement"`
	OrderID       int64  `gorm:"uniqueIndex;not null"`
	Status        string `gorm:"not null;default:'pending'"`
	PaymentMethod string `gorm:"not null;default:'cash'"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PaymentDate   time.Time
}

func (Payment) TableName() string { return "oms.order_payments" }
