package service

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	rentaldomain "github.com/plantdesklabs/plantdesk/internal/rental/domain"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return NewService(ServiceParam{GenID: node})
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func activeContract(start time.Time, rate int64) *rentaldomain.RentalContract {
	return &rentaldomain.RentalContract{
		ID:              1,
		StartDate:       start,
		NextRenewalDate: start,
		MonthlyRate:     rate,
		Status:          rentaldomain.ContractStatusActive,
	}
}

func TestCatchUpAppendsOneInvoicePerElapsedMonth(t *testing.T) {
	svc := newTestService(t)
	c := activeContract(date(2024, time.January, 15), 1000)

	appended := svc.CatchUp(c, date(2024, time.April, 20))

	require.Len(t, appended, 3)
	require.Equal(t, date(2024, time.January, 15), appended[0].InvoiceDate)
	require.Equal(t, date(2024, time.February, 15), appended[1].InvoiceDate)
	require.Equal(t, date(2024, time.March, 15), appended[2].InvoiceDate)
	for _, inv := range appended {
		require.Equal(t, int64(1000), inv.Amount)
		require.Equal(t, rentaldomain.InvoiceStatusUnpaid, inv.Status)
	}
	require.Equal(t, date(2024, time.April, 15), c.NextRenewalDate)
}

func TestCatchUpIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	c := activeContract(date(2024, time.January, 15), 1000)
	now := date(2024, time.April, 20)

	first := svc.CatchUp(c, now)
	require.Len(t, first, 3)
	boundary := c.NextRenewalDate

	second := svc.CatchUp(c, now)
	require.Empty(t, second)
	require.Equal(t, boundary, c.NextRenewalDate)
}

func TestCatchUpNeverLagsMoreThanOneCycle(t *testing.T) {
	svc := newTestService(t)
	start := date(2023, time.November, 30)

	for _, now := range []time.Time{
		date(2023, time.December, 1),
		date(2024, time.February, 29),
		date(2024, time.July, 4),
		date(2026, time.January, 31),
	} {
		c := activeContract(start, 500)
		svc.CatchUp(c, now)

		// The boundary marks the cycle in progress: it may trail now, but
		// never by a full cycle.
		require.False(t, now.After(NextBoundary(c.NextRenewalDate)),
			"next renewal %s lags a full cycle behind now %s", c.NextRenewalDate, now)
		require.Empty(t, svc.CatchUp(c, now))
	}
}

func TestCatchUpExactBoundaryDoesNotBill(t *testing.T) {
	svc := newTestService(t)
	c := activeContract(date(2024, time.March, 1), 700)

	// now == boundary: the cycle has not elapsed yet.
	appended := svc.CatchUp(c, date(2024, time.March, 1))
	require.Empty(t, appended)
}

func TestCatchUpSkipsNonActiveContracts(t *testing.T) {
	svc := newTestService(t)
	c := activeContract(date(2024, time.January, 1), 1000)
	c.Status = rentaldomain.ContractStatusCompleted

	appended := svc.CatchUp(c, date(2025, time.January, 1))
	require.Empty(t, appended)
	require.Equal(t, date(2024, time.January, 1), c.NextRenewalDate)
}

func TestStepBillsBeforeTheBoundaryElapses(t *testing.T) {
	svc := newTestService(t)
	c := activeContract(date(2024, time.June, 10), 900)

	inv := svc.Step(c, date(2024, time.June, 11))
	require.Equal(t, date(2024, time.June, 10), inv.InvoiceDate)
	require.Equal(t, int64(900), inv.Amount)
	require.Equal(t, date(2024, time.July, 10), c.NextRenewalDate)
}

func TestNextBoundaryClampsToShortMonths(t *testing.T) {
	// Leap year: Jan 31 -> Feb 29, then the clamped day sticks.
	b := NextBoundary(date(2024, time.January, 31))
	require.Equal(t, date(2024, time.February, 29), b)
	require.Equal(t, date(2024, time.March, 29), NextBoundary(b))

	// Non-leap year.
	require.Equal(t, date(2023, time.February, 28), NextBoundary(date(2023, time.January, 31)))

	// 31-day to 30-day month.
	require.Equal(t, date(2024, time.April, 30), NextBoundary(date(2024, time.March, 31)))

	// Year rollover.
	require.Equal(t, date(2025, time.January, 31), NextBoundary(date(2024, time.December, 31)))
}

func TestNextBoundaryPreservesTimeOfDay(t *testing.T) {
	in := time.Date(2024, time.May, 14, 9, 30, 15, 0, time.UTC)
	out := NextBoundary(in)
	require.Equal(t, time.Date(2024, time.June, 14, 9, 30, 15, 0, time.UTC), out)
}
