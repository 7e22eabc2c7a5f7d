package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/plantdesklabs/plantdesk/internal/machine/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, machine *domain.Machine) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO machines (id, name, category, description, sale_price, monthly_rental_rate, stock, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		machine.ID,
		machine.Name,
		machine.Category,
		machine.Description,
		machine.SalePrice,
		machine.MonthlyRentalRate,
		machine.Stock,
		machine.Metadata,
		machine.CreatedAt,
		machine.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Machine, error) {
	var m domain.Machine
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, category, description, sale_price, monthly_rental_rate, stock, metadata, created_at, updated_at
		 FROM machines WHERE id = ?`,
		id,
	).Scan(&m).Error
	if err != nil {
		return nil, err
	}
	if m.ID == 0 {
		return nil, nil
	}
	return &m, nil
}

func (r *repo) FindAll(ctx context.Context, db *gorm.DB) ([]domain.Machine, error) {
	var items []domain.Machine
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, category, description, sale_price, monthly_rental_rate, stock, metadata, created_at, updated_at
		 FROM machines ORDER BY created_at ASC`,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, machine *domain.Machine) error {
	if machine == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE machines
		 SET name = ?, category = ?, description = ?, sale_price = ?, monthly_rental_rate = ?, stock = ?, metadata = ?, updated_at = ?
		 WHERE id = ?`,
		machine.Name,
		machine.Category,
		machine.Description,
		machine.SalePrice,
		machine.MonthlyRentalRate,
		machine.Stock,
		machine.Metadata,
		machine.UpdatedAt,
		machine.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	res := db.WithContext(ctx).Exec(`DELETE FROM machines WHERE id = ?`, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ReserveStock is a conditional decrement: concurrent reservations cannot
// take the counter below zero because the WHERE clause and the update are
// one statement.
func (r *repo) ReserveStock(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE machines SET stock = stock - 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND stock > 0`,
		id,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) ReleaseStock(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE machines SET stock = stock + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		id,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
