package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/plantdesklabs/plantdesk/internal/clock"
	rentaldomain "github.com/plantdesklabs/plantdesk/internal/rental/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service is the payment ledger: it appends payment rows to a contract and
// keeps the running total consistent. Amounts are taken as given, with no
// sign or overpayment checks; negative adjustments are legitimate entries.
type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  rentaldomain.Repository
}

type ServiceParam struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  rentaldomain.Repository
}

func NewService(p ServiceParam) *Service {
	return &Service{
		log:   p.Log.Named("ledger.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

// Record appends a payment to the contract inside the caller's transaction.
// The row insert and the total_paid increment are one repository call so a
// concurrent payment cannot lose the update. The in-memory contract is
// mutated to match.
func (s *Service) Record(ctx context.Context, tx *gorm.DB, c *rentaldomain.RentalContract, req rentaldomain.PaymentRequest) (*rentaldomain.Payment, error) {
	now := s.clock.Now(ctx)

	method := strings.TrimSpace(req.Method)
	if method == "" {
		method = rentaldomain.DefaultPaymentMethod
	}
	paymentDate := now
	if req.PaymentDate != nil && !req.PaymentDate.IsZero() {
		paymentDate = *req.PaymentDate
	}

	payment := &rentaldomain.Payment{
		ID:          s.genID.Generate(),
		ContractID:  c.ID,
		PaymentDate: paymentDate,
		Amount:      req.Amount,
		Method:      method,
		CreatedAt:   now,
	}

	if err := s.repo.RecordPayment(ctx, tx, payment, now); err != nil {
		return nil, err
	}

	c.Payments = append(c.Payments, *payment)
	c.TotalPaid += payment.Amount
	c.UpdatedAt = now

	s.log.Info("payment recorded",
		zap.Int64("contract_id", int64(c.ID)),
		zap.Int64("amount", payment.Amount),
		zap.String("method", method),
	)
	return payment, nil
}

// Balance derives the amount still owed: total billed minus total paid.
func (s *Service) Balance(c *rentaldomain.RentalContract) int64 {
	return c.Balance()
}
