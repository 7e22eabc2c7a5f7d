package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, machine *Machine) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Machine, error)
	FindAll(ctx context.Context, db *gorm.DB) ([]Machine, error)
	Update(ctx context.Context, db *gorm.DB, machine *Machine) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)

	// ReserveStock decrements stock by one iff a unit is available.
	// Reports whether a unit was taken; false means out of stock.
	ReserveStock(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
	// ReleaseStock returns one unit. Reports whether the machine row exists.
	ReleaseStock(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
}
