package model

import "time"

// Customer is deduplicated per merchant by phone number: the first order
// referencing a new phone creates the row, later orders reuse it.
type Customer struct {
	CustomerID int64  `gorm:"primaryKey;autoIncrement"`
	MerchantID int64  `gorm:"uniqueIndex:idx_merchant_phone;not null"`
	Name       string `gorm:"not null"`
	Phone      string `gorm:"uniqueIndex:idx_merchant_phone;not null"`
	Email      string
	Address    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Customer) TableName() string { return "oms.customers" }
