package dto

import "github.com/shopspring/decimal"

type PeriodSales struct {
	Period  string          `json:"period"`
	Orders  int64           `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

type ChannelSales struct {
	Channel string          `json:"channel"`
	Orders  int64           `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

type DashboardResponse struct {
	TodayOrders      int64            `json:"todayOrders"`
	TodayRevenue     decimal.Decimal  `json:"todayRevenue"`
	PendingOrders    int64            `json:"pendingOrders"`
	LowStockItems    int64            `json:"lowStockItems"`
	StatusCounts     map[string]int64 `json:"statusCounts"`
	MonthlyRevenue   []PeriodSales    `json:"monthlyRevenue"`
	ChannelBreakdown []ChannelSales   `json:"channelBreakdown"`
}

type InvoiceResponse struct {
	InvoiceID     int64           `json:"invoiceId"`
	OrderID       int64           `json:"orderId"`
	CustomerName  string          `json:"customerName"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Status        string          `json:"status"`
	DueDate       string          `json:"dueDate"`
	CreatedAt     string          `json:"createdAt"`
	OrderStatus   string          `json:"orderStatus"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
	PaymentDate   string          `json:"paymentDate,omitempty"`
}

type CreateInvoiceRequest struct {
	OrderID int64  `json:"orderId" binding:"required,gt=0"`
	DueDate string `json:"dueDate" binding:"required"`
	Status  string `json:"status" binding:"omitempty,oneof=pending paid failed refunded"`
}
