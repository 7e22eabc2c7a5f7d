package service

import (
	"time"

	"github.com/bwmarrin/snowflake"
	rentaldomain "github.com/plantdesklabs/plantdesk/internal/rental/domain"
	"go.uber.org/fx"
)

// Service generates the invoices owed by a contract as of a given instant.
// It is pure schedule arithmetic: it mutates the contract in memory and
// returns the rows to persist, but never touches storage itself.
type Service struct {
	genID *snowflake.Node
}

type ServiceParam struct {
	fx.In

	GenID *snowflake.Node
}

func NewService(p ServiceParam) *Service {
	return &Service{genID: p.GenID}
}

// CatchUp appends one invoice per cycle that has fully elapsed since the
// last billing. A boundary is billed only once now is strictly past the
// boundary that follows it, so NextRenewalDate lands on the cycle currently
// in progress, never on one already behind. On return the invariant
// now <= NextBoundary(NextRenewalDate) holds. The returned slice is empty
// when the contract is already caught up or not Active.
func (s *Service) CatchUp(c *rentaldomain.RentalContract, now time.Time) []rentaldomain.Invoice {
	if c.Status != rentaldomain.ContractStatusActive {
		return nil
	}

	var appended []rentaldomain.Invoice
	for now.After(NextBoundary(c.NextRenewalDate)) {
		appended = append(appended, s.step(c, now))
	}
	return appended
}

// Step bills exactly one cycle at the current boundary, whether or not the
// boundary has elapsed. Manual renewals use it after an ordinary catch-up
// finds nothing to bill.
func (s *Service) Step(c *rentaldomain.RentalContract, now time.Time) rentaldomain.Invoice {
	return s.step(c, now)
}

func (s *Service) step(c *rentaldomain.RentalContract, now time.Time) rentaldomain.Invoice {
	inv := rentaldomain.Invoice{
		ID:          s.genID.Generate(),
		ContractID:  c.ID,
		InvoiceDate: c.NextRenewalDate,
		Amount:      c.MonthlyRate,
		Status:      rentaldomain.InvoiceStatusUnpaid,
		CreatedAt:   now,
	}
	c.Invoices = append(c.Invoices, inv)
	c.NextRenewalDate = NextBoundary(c.NextRenewalDate)
	return inv
}

// NextBoundary advances a cycle boundary by one calendar month, clamping to
// the last day when the target month is shorter (Jan 31 -> Feb 28/29).
// Subsequent advances keep the clamped day: Jan 31 -> Feb 28 -> Mar 28.
func NextBoundary(t time.Time) time.Time {
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	month++
	if month > time.December {
		month = time.January
		year++
	}
	if last := daysIn(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, hour, min, sec, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	// Day zero of the following month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
