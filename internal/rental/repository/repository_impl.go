package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/plantdesklabs/plantdesk/internal/rental/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const contractColumns = `id, customer_name, machine_id, start_date, next_renewal_date, monthly_rate, status,
	 COALESCE(total_paid, 0) AS total_paid, idempotency_key, created_at, updated_at`

func (r *repo) Create(ctx context.Context, db *gorm.DB, contract *domain.RentalContract) error {
	err := db.WithContext(ctx).Exec(
		`INSERT INTO rental_contracts (id, customer_name, machine_id, start_date, next_renewal_date, monthly_rate, status, total_paid, idempotency_key, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		contract.ID,
		contract.CustomerName,
		contract.MachineID,
		contract.StartDate,
		contract.NextRenewalDate,
		contract.MonthlyRate,
		contract.Status,
		contract.TotalPaid,
		contract.IdempotencyKey,
		contract.CreatedAt,
		contract.UpdatedAt,
	).Error
	if err != nil {
		return err
	}

	for i := range contract.Invoices {
		if err := r.insertInvoice(ctx, db, &contract.Invoices[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID, forUpdate bool) (*domain.RentalContract, error) {
	query := `SELECT ` + contractColumns + ` FROM rental_contracts WHERE id = ?`
	// Sqlite serializes writers on its own and rejects FOR UPDATE.
	if forUpdate && db.Dialector.Name() == "postgres" {
		query += ` FOR UPDATE`
	}

	var c domain.RentalContract
	err := db.WithContext(ctx).Raw(query, id).Scan(&c).Error
	if err != nil {
		return nil, err
	}
	if c.ID == 0 {
		return nil, nil
	}
	if err := r.loadChildren(ctx, db, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repo) FindByIdempotencyKey(ctx context.Context, db *gorm.DB, key string) (*domain.RentalContract, error) {
	var c domain.RentalContract
	err := db.WithContext(ctx).Raw(
		`SELECT `+contractColumns+` FROM rental_contracts WHERE idempotency_key = ? LIMIT 1`,
		key,
	).Scan(&c).Error
	if err != nil {
		return nil, err
	}
	if c.ID == 0 {
		return nil, nil
	}
	if err := r.loadChildren(ctx, db, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repo) FindAll(ctx context.Context, db *gorm.DB) ([]domain.RentalContract, error) {
	var contracts []domain.RentalContract
	err := db.WithContext(ctx).Raw(
		`SELECT ` + contractColumns + ` FROM rental_contracts ORDER BY created_at ASC`,
	).Scan(&contracts).Error
	if err != nil {
		return nil, err
	}
	for i := range contracts {
		if err := r.loadChildren(ctx, db, &contracts[i]); err != nil {
			return nil, err
		}
	}
	return contracts, nil
}

func (r *repo) AppendInvoices(ctx context.Context, db *gorm.DB, contractID snowflake.ID, invoices []domain.Invoice, nextRenewal time.Time, updatedAt time.Time) error {
	for i := range invoices {
		if err := r.insertInvoice(ctx, db, &invoices[i]); err != nil {
			return err
		}
	}
	return db.WithContext(ctx).Exec(
		`UPDATE rental_contracts SET next_renewal_date = ?, updated_at = ? WHERE id = ?`,
		nextRenewal,
		updatedAt,
		contractID,
	).Error
}

// RecordPayment keeps total_paid an in-database accumulation so concurrent
// payments cannot lose an increment to a stale read.
func (r *repo) RecordPayment(ctx context.Context, db *gorm.DB, payment *domain.Payment, updatedAt time.Time) error {
	err := db.WithContext(ctx).Exec(
		`INSERT INTO rental_payments (id, contract_id, payment_date, amount, method, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		payment.ID,
		payment.ContractID,
		payment.PaymentDate,
		payment.Amount,
		payment.Method,
		payment.CreatedAt,
	).Error
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Exec(
		`UPDATE rental_contracts
		 SET total_paid = COALESCE(total_paid, 0) + ?, updated_at = ?
		 WHERE id = ?`,
		payment.Amount,
		updatedAt,
		payment.ContractID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	if err := db.WithContext(ctx).Exec(`DELETE FROM rental_invoices WHERE contract_id = ?`, id).Error; err != nil {
		return false, err
	}
	if err := db.WithContext(ctx).Exec(`DELETE FROM rental_payments WHERE contract_id = ?`, id).Error; err != nil {
		return false, err
	}
	res := db.WithContext(ctx).Exec(`DELETE FROM rental_contracts WHERE id = ?`, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) CountByStatus(ctx context.Context, db *gorm.DB, status domain.ContractStatus) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM rental_contracts WHERE status = ?`,
		status,
	).Scan(&n).Error
	return n, err
}

func (r *repo) insertInvoice(ctx context.Context, db *gorm.DB, inv *domain.Invoice) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO rental_invoices (id, contract_id, invoice_date, amount, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		inv.ID,
		inv.ContractID,
		inv.InvoiceDate,
		inv.Amount,
		inv.Status,
		inv.CreatedAt,
	).Error
}

func (r *repo) loadChildren(ctx context.Context, db *gorm.DB, c *domain.RentalContract) error {
	var invoices []domain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT id, contract_id, invoice_date, amount, status, created_at
		 FROM rental_invoices WHERE contract_id = ? ORDER BY invoice_date ASC, id ASC`,
		c.ID,
	).Scan(&invoices).Error
	if err != nil {
		return err
	}

	var payments []domain.Payment
	err = db.WithContext(ctx).Raw(
		`SELECT id, contract_id, payment_date, amount, method, created_at
		 FROM rental_payments WHERE contract_id = ? ORDER BY payment_date ASC, id ASC`,
		c.ID,
	).Scan(&payments).Error
	if err != nil {
		return err
	}

	c.Invoices = invoices
	c.Payments = payments
	return nil
}
