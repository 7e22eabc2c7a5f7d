package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type ContractStatus string

const (
	ContractStatusActive    ContractStatus = "Active"
	ContractStatusCompleted ContractStatus = "Completed"
)

type InvoiceStatus string

const (
	InvoiceStatusUnpaid InvoiceStatus = "Unpaid"
	InvoiceStatusPaid   InvoiceStatus = "Paid"
)

const DefaultPaymentMethod = "Cash"

// RentalContract binds one customer to one machine for a recurring monthly
// fee, open-ended until deleted. NextRenewalDate is the first unbilled cycle
// boundary; it only ever moves forward, one calendar month at a time.
type RentalContract struct {
	ID              snowflake.ID   `gorm:"column:id;primaryKey" json:"id"`
	CustomerName    string         `gorm:"column:customer_name" json:"customerName"`
	MachineID       snowflake.ID   `gorm:"column:machine_id" json:"machineId"`
	StartDate       time.Time      `gorm:"column:start_date" json:"startDate"`
	NextRenewalDate time.Time      `gorm:"column:next_renewal_date" json:"nextRenewalDate"`
	MonthlyRate     int64          `gorm:"column:monthly_rate" json:"monthlyRate"`
	Status          ContractStatus `gorm:"column:status" json:"status"`
	TotalPaid       int64          `gorm:"column:total_paid" json:"totalPaid"`
	IdempotencyKey  string         `gorm:"column:idempotency_key;uniqueIndex:idx_rental_contracts_idempotency_key,where:idempotency_key <> ''" json:"-"`
	CreatedAt       time.Time      `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt       time.Time      `gorm:"column:updated_at" json:"updatedAt"`

	Invoices []Invoice `gorm:"-" json:"invoices"`
	Payments []Payment `gorm:"-" json:"payments"`

	// Machine is populated on reads for the presentation layer.
	Machine *MachineRef `gorm:"-" json:"machine,omitempty"`
}

func (RentalContract) TableName() string {
	return "rental_contracts"
}

// Invoice is one billed cycle. Status is written Unpaid and never
// transitioned; reconciliation runs on the contract's aggregate TotalPaid.
type Invoice struct {
	ID          snowflake.ID  `gorm:"column:id;primaryKey" json:"id"`
	ContractID  snowflake.ID  `gorm:"column:contract_id" json:"-"`
	InvoiceDate time.Time     `gorm:"column:invoice_date" json:"invoiceDate"`
	Amount      int64         `gorm:"column:amount" json:"amount"`
	Status      InvoiceStatus `gorm:"column:status" json:"status"`
	CreatedAt   time.Time     `gorm:"column:created_at" json:"createdAt"`
}

func (Invoice) TableName() string {
	return "rental_invoices"
}

type Payment struct {
	ID          snowflake.ID `gorm:"column:id;primaryKey" json:"id"`
	ContractID  snowflake.ID `gorm:"column:contract_id" json:"-"`
	PaymentDate time.Time    `gorm:"column:payment_date" json:"paymentDate"`
	Amount      int64        `gorm:"column:amount" json:"amount"`
	Method      string       `gorm:"column:method" json:"method"`
	CreatedAt   time.Time    `gorm:"column:created_at" json:"createdAt"`
}

func (Payment) TableName() string {
	return "rental_payments"
}

type MachineRef struct {
	ID       snowflake.ID `json:"id"`
	Name     string       `json:"name"`
	Category string       `json:"category"`
}

// TotalBilled is the sum of all invoice amounts.
func (c *RentalContract) TotalBilled() int64 {
	var sum int64
	for _, inv := range c.Invoices {
		sum += inv.Amount
	}
	return sum
}

// Balance is total billed minus total paid. Negative means overpaid; the
// engine represents that rather than rejecting it.
func (c *RentalContract) Balance() int64 {
	return c.TotalBilled() - c.TotalPaid
}
