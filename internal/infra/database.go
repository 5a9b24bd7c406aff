package infra

import (
	"fmt"
	"strings"

	"github.com/HD3-run/Rcommitra/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, creates the oms
// schema if missing and runs AutoMigrate for all tables. statementTimeoutMS
// caps every statement server-side; a statement that exceeds it errors and
// the surrounding transaction rolls back and releases its connection.
func NewDatabase(dsn string, statementTimeoutMS int) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(withStatementTimeout(dsn, statementTimeoutMS)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := db.Exec(`CREATE SCHEMA IF NOT EXISTS oms`).Error; err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// withStatementTimeout appends statement_timeout to the DSN so every pooled
// connection carries it as a server run-time parameter.
func withStatementTimeout(dsn string, ms int) string {
	if ms <= 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%sstatement_timeout=%d", dsn, sep, ms)
}

// RunMigrations applies the schema. Tables carry explicit TableName methods
// qualifying them under the oms schema.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Merchant{},
		&model.User{},
		&model.Product{},
		&model.InventoryRecord{},
		&model.Customer{},
		&model.Order{},
		&model.OrderItem{},
		&model.OrderStatusHistory{},
		&model.Payment{},
	)
}
