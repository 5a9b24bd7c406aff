package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a merchant-scoped catalog entry. SKU is unique per merchant,
// system-generated unless supplied. Identity (ProductID) is immutable;
// name, category and SKU are mutable.
type Product struct {
	ProductID   int64  `gorm:"primaryKey;autoIncrement"`
	MerchantID  int64  `gorm:"uniqueIndex:idx_merchant_sku;index;not null"`
	ProductName string `gorm:"index;not null"`
	SKU         string `gorm:"uniqueIndex:idx_merchant_sku;not null"`
	Description string
	Category    string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Inventory *InventoryRecord `gorm:"foreignKey:ProductID"`
}

func (Product) TableName() string { return "oms.products" }

// InventoryRecord is 1:1 with Product. Low stock is always derived at query
// time as quantity_available <= reorder_level, never stored.
type InventoryRecord struct {
	InventoryID       int64  `gorm:"primaryKey;autoIncrement"`
	MerchantID        int64  `gorm:"index;not null"`
	ProductID         int64  `gorm:"uniqueIndex;not null"`
	SKU               string `gorm:"index"`
	QuantityAvailable int    `gorm:"not null;default:0"`
	ReorderLevel      int    `gorm:"not null;default:0"`
	CostPrice         decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (InventoryRecord) TableName() string { return "oms.inventory" }

// LowStock reports the derived low-stock condition.
func (i *InventoryRecord) LowStock() bool {
	return i.QuantityAvailable <= i.ReorderLevel
}
