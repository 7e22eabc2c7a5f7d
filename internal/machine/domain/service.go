package domain

import (
	"context"
	"errors"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Machine, error)
	List(ctx context.Context) ([]Machine, error)
	Get(ctx context.Context, id string) (*Machine, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Machine, error)
	Delete(ctx context.Context, id string) error
}

type CreateRequest struct {
	Name              string         `json:"name"`
	Category          string         `json:"category"`
	Description       string         `json:"description"`
	SalePrice         int64          `json:"salePrice"`
	MonthlyRentalRate int64          `json:"monthlyRentalRate"`
	Stock             int64          `json:"stock"`
	Metadata          map[string]any `json:"metadata,omitempty"`
}

type UpdateRequest struct {
	Name              *string        `json:"name,omitempty"`
	Category          *string        `json:"category,omitempty"`
	Description       *string        `json:"description,omitempty"`
	SalePrice         *int64         `json:"salePrice,omitempty"`
	MonthlyRentalRate *int64         `json:"monthlyRentalRate,omitempty"`
	Stock             *int64         `json:"stock,omitempty"`
	Metadata          map[string]any `json:"metadata,omitempty"`
}

var (
	ErrMachineNotFound = errors.New("machine_not_found")
	ErrOutOfStock      = errors.New("machine_out_of_stock")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidStock    = errors.New("invalid_stock")
	ErrInvalidID       = errors.New("invalid_id")
)
