package domain

import (
	"context"
	"errors"
	"time"
)

// Service is the rental lifecycle controller. It is the only place internal
// failures are allowed to surface from, so callers can map them to transport
// codes deterministically.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*RentalContract, error)

	// List returns every contract post catch-up. Reading is a write: any
	// Active contract whose boundary has passed gets its invoices appended
	// and persisted before the set is returned.
	List(ctx context.Context) ([]RentalContract, error)

	Renew(ctx context.Context, id string) (*RentalContract, error)
	RecordPayment(ctx context.Context, id string, req PaymentRequest) (*RentalContract, error)
	Delete(ctx context.Context, id string) error

	// CatchUpAll runs the same sweep List performs, for the scheduler.
	// Reports how many contracts were advanced.
	CatchUpAll(ctx context.Context) (int, error)
}

type CreateRequest struct {
	CustomerName string `json:"customerName"`
	MachineID    string `json:"machineId"`
	StartDate    string `json:"startDate"`
	// MonthlyRate overrides the machine's rate when set; zero means
	// "copy the machine's monthly rental rate".
	MonthlyRate    int64  `json:"monthlyRate"`
	IdempotencyKey string `json:"-"`
}

type PaymentRequest struct {
	Amount      int64      `json:"amount"`
	Method      string     `json:"method,omitempty"`
	PaymentDate *time.Time `json:"paymentDate,omitempty"`
}

var (
	ErrRentalNotFound  = errors.New("rental_not_found")
	ErrInvalidCustomer = errors.New("invalid_customer_name")
	ErrInvalidDate     = errors.New("invalid_start_date")
	ErrInvalidRate     = errors.New("invalid_monthly_rate")
	ErrInvalidID       = errors.New("invalid_id")
)
