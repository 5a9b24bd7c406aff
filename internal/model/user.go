package model

import "time"

// User is an actor belonging to exactly one merchant. The first user of a
// new merchant is always created with RoleAdmin.
type User struct {
	UserID       int64  `gorm:"primaryKey;autoIncrement"`
	MerchantID   int64  `gorm:"index;not null"`
	Username     string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PhoneNumber  string
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"not null;default:'employee'"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Merchant *Merchant `gorm:"foreignKey:MerchantID"`
}

func (User) TableName() string { return "oms.users" }
