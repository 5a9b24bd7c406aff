package model

import "time"

// Merchant is the tenant boundary. Every business entity except audit actor
// references belongs to exactly one merchant.
type Merchant struct {
	MerchantID        int64  `gorm:"primaryKey;autoIncrement"`
	MerchantName      string `gorm:"not null"`
	ContactPersonName string
	Email             string `gorm:"uniqueIndex;not null"`
	PhoneNumber       string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (Merchant) TableName() string { return "oms.merchants" }
