package dto

import (
	"github.com/shopspring/decimal"
)

// CreateOrderRequest is a single-line manual order. The product is resolved
// by name within the caller's catalog; the inventory cost price is used when
// set, UnitPrice is the fallback, and whichever wins is snapshotted into the
// order item and never re-read.
type CreateOrderRequest struct {
	CustomerName    string          `json:"customerName" binding:"required,min=1,max=120"`
	CustomerPhone   string          `json:"customerPhone" binding:"required,min=5,max=20"`
	CustomerEmail   string          `json:"customerEmail" binding:"omitempty,email"`
	CustomerAddress string          `json:"customerAddress" binding:"omitempty,max=500"`
	ProductName     string          `json:"productName" binding:"required,min=1,max=200"`
	Quantity        int             `json:"quantity" binding:"required,gt=0"`
	UnitPrice       decimal.Decimal `json:"unitPrice" binding:"required"`
	OrderSource     string          `json:"orderSource" binding:"omitempty,oneof=Manual CSV Website WhatsApp POS"`
	PaymentMethod   string          `json:"paymentMethod" binding:"omitempty,max=30"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AssignOrderRequest hands an order to a fulfiller. DeliveryNotes are
// accepted for forward compatibility but not persisted.
type AssignOrderRequest struct {
	OrderID       int64  `json:"orderId" binding:"required,gt=0"`
	UserID        int64  `json:"userId" binding:"required,gt=0"`
	DeliveryNotes string `json:"deliveryNotes" binding:"omitempty,max=500"`
}

// UpdatePaymentRequest upserts the order's payment row and overwrites the
// order's payment fields, including total_amount when Amount is given.
type UpdatePaymentRequest struct {
	Status        string           `json:"status" binding:"required,oneof=pending paid failed refunded"`
	PaymentMethod string           `json:"paymentMethod" binding:"omitempty,max=30"`
	Amount        *decimal.Decimal `json:"amount" binding:"omitempty"`
}

type OrderItemResponse struct {
	OrderItemID  int64           `json:"orderItemId"`
	ProductID    int64           `json:"productId"`
	SKU          string          `json:"sku,omitempty"`
	Quantity     int             `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"pricePerUnit"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
}

type OrderResponse struct {
	OrderID       int64               `json:"orderId"`
	CustomerID    *int64              `json:"customerId,omitempty"`
	CustomerName  string              `json:"customerName,omitempty"`
	CustomerPhone string              `json:"customerPhone,omitempty"`
	AssignedTo    *int64              `json:"assignedTo,omitempty"`
	OrderSource   string              `json:"orderSource"`
	TotalAmount   decimal.Decimal     `json:"totalAmount"`
	Status        string              `json:"status"`
	PaymentStatus string              `json:"paymentStatus"`
	PaymentMethod string              `json:"paymentMethod,omitempty"`
	CreatedAt     string              `json:"createdAt"`
	Items         []OrderItemResponse `json:"items,omitempty"`
}

type OrderHistoryEntry struct {
	OldStatus string `json:"oldStatus"`
	NewStatus string `json:"newStatus"`
	ChangedBy int64  `json:"changedBy"`
	ChangedAt string `json:"changedAt"`
}

// ImportReport summarizes a CSV import: valid rows are committed even when
// other rows fail.
type ImportReport struct {
	Imported int      `json:"imported"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}
