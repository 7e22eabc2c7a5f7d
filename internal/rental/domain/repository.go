package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, contract *RentalContract) error

	// FindByID loads a contract with its invoice and payment rows.
	// forUpdate locks the contract row for the enclosing transaction on
	// backends that support it.
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID, forUpdate bool) (*RentalContract, error)
	FindByIdempotencyKey(ctx context.Context, db *gorm.DB, key string) (*RentalContract, error)
	FindAll(ctx context.Context, db *gorm.DB) ([]RentalContract, error)

	// AppendInvoices inserts the given invoice rows and advances the
	// contract's schedule pointer in one statement batch.
	AppendInvoices(ctx context.Context, db *gorm.DB, contractID snowflake.ID, invoices []Invoice, nextRenewal time.Time, updatedAt time.Time) error

	// RecordPayment inserts the payment row and adds its amount to the
	// contract's running total atomically.
	RecordPayment(ctx context.Context, db *gorm.DB, payment *Payment, updatedAt time.Time) error

	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
	CountByStatus(ctx context.Context, db *gorm.DB, status ContractStatus) (int64, error)
}
