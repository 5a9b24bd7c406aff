package dto

import (
	"github.com/shopspring/decimal"
)

// AddProductRequest creates a product plus its inventory record. SKU is
// generated when omitted.
type AddProductRequest struct {
	ProductName       string          `json:"productName" binding:"required,min=1,max=200"`
	SKU               string          `json:"sku" binding:"omitempty,max=60"`
	Description       string          `json:"description" binding:"omitempty,max=1000"`
	Category          string          `json:"category" binding:"omitempty,max=100"`
	QuantityAvailable int             `json:"quantityAvailable" binding:"gte=0"`
	ReorderLevel      int             `json:"reorderLevel" binding:"gte=0"`
	CostPrice         decimal.Decimal `json:"costPrice" binding:"omitempty"`
}

// BulkUpdateItem sets an absolute quantity for one product, keyed by SKU.
type BulkUpdateItem struct {
	SKU      string `json:"sku" binding:"required,max=60"`
	Quantity int    `json:"stockQuantity" binding:"gte=0"`
}

type BulkUpdateRequest struct {
	Updates []BulkUpdateItem `json:"updates" binding:"required,min=1,dive"`
}

type UpdateCostPriceRequest struct {
	CostPrice decimal.Decimal `json:"costPrice" binding:"required"`
}

type ProductResponse struct {
	ProductID         int64           `json:"productId"`
	ProductName       string          `json:"productName"`
	SKU               string          `json:"sku"`
	Description       string          `json:"description,omitempty"`
	Category          string          `json:"category,omitempty"`
	QuantityAvailable int             `json:"quantityAvailable"`
	ReorderLevel      int             `json:"reorderLevel"`
	CostPrice         decimal.Decimal `json:"costPrice"`
	LowStock          bool            `json:"lowStock"`
}
