package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	billingcycle "github.com/plantdesklabs/plantdesk/internal/billingcycle/service"
	"github.com/plantdesklabs/plantdesk/internal/clock"
	ledger "github.com/plantdesklabs/plantdesk/internal/ledger/service"
	machinedomain "github.com/plantdesklabs/plantdesk/internal/machine/domain"
	"github.com/plantdesklabs/plantdesk/internal/observability"
	"github.com/plantdesklabs/plantdesk/internal/rental/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service is the rental lifecycle controller: it orchestrates the contract
// store, the billing cycle engine, the payment ledger and the machine
// inventory. Every mutation runs inside one transaction so the stock
// counter and the contract can never drift apart.
type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	machine machinedomain.Repository
	cycle   *billingcycle.Service
	ledger  *ledger.Service
	metrics *observability.Metrics
}

type ServiceParam struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Machine machinedomain.Repository
	Cycle   *billingcycle.Service
	Ledger  *ledger.Service
	Metrics *observability.Metrics `optional:"true"`
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("rental.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		machine: p.Machine,
		cycle:   p.Cycle,
		ledger:  p.Ledger,
		metrics: p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.RentalContract, error) {
	customer := strings.TrimSpace(req.CustomerName)
	if customer == "" {
		return nil, domain.ErrInvalidCustomer
	}
	machineID, err := parseID(req.MachineID)
	if err != nil {
		return nil, machinedomain.ErrMachineNotFound
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return nil, domain.ErrInvalidDate
	}
	if req.MonthlyRate < 0 {
		return nil, domain.ErrInvalidRate
	}

	key := strings.TrimSpace(req.IdempotencyKey)
	if key != "" {
		existing, err := s.repo.FindByIdempotencyKey(ctx, s.db, key)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return s.withMachineRef(ctx, existing)
		}
	}

	now := s.clock.Now(ctx)
	var contract *domain.RentalContract

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := s.machine.FindByID(ctx, tx, machineID)
		if err != nil {
			return err
		}
		if m == nil {
			return machinedomain.ErrMachineNotFound
		}

		rate := req.MonthlyRate
		if rate == 0 {
			rate = m.MonthlyRentalRate
		}

		// Conditional decrement and contract insert commit or roll back
		// together; a failed insert puts the unit back.
		reserved, err := s.machine.ReserveStock(ctx, tx, machineID)
		if err != nil {
			return err
		}
		if !reserved {
			return machinedomain.ErrOutOfStock
		}

		c := &domain.RentalContract{
			ID:              s.genID.Generate(),
			CustomerName:    customer,
			MachineID:       machineID,
			StartDate:       start,
			NextRenewalDate: billingcycle.NextBoundary(start),
			MonthlyRate:     rate,
			Status:          domain.ContractStatusActive,
			TotalPaid:       0,
			IdempotencyKey:  key,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		c.Invoices = []domain.Invoice{{
			ID:          s.genID.Generate(),
			ContractID:  c.ID,
			InvoiceDate: start,
			Amount:      rate,
			Status:      domain.InvoiceStatusUnpaid,
			CreatedAt:   now,
		}}

		if err := s.repo.Create(ctx, tx, c); err != nil {
			return err
		}

		c.Machine = &domain.MachineRef{ID: m.ID, Name: m.Name, Category: m.Category}
		contract = c
		return nil
	})
	if err != nil {
		// A concurrent create with the same key may have won between the
		// lookup above and the insert: the unique index rejects the second
		// row and the reservation rolls back. Hand back the winner.
		if key != "" {
			winner, ferr := s.repo.FindByIdempotencyKey(ctx, s.db, key)
			if ferr == nil && winner != nil {
				return s.withMachineRef(ctx, winner)
			}
		}
		if err == machinedomain.ErrOutOfStock && s.metrics != nil {
			s.metrics.OutOfStock.Inc()
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.InvoicesGenerated.WithLabelValues("seed").Inc()
	}
	s.log.Info("rental contract created",
		zap.Int64("contract_id", int64(contract.ID)),
		zap.Int64("machine_id", int64(machineID)),
		zap.Int64("monthly_rate", contract.MonthlyRate),
	)
	return contract, nil
}

// List catches up every Active contract before returning the set; reading
// the rentals is deliberately a write operation.
func (s *Service) List(ctx context.Context) ([]domain.RentalContract, error) {
	if _, err := s.sweep(ctx, "catchup"); err != nil {
		return nil, err
	}

	contracts, err := s.repo.FindAll(ctx, s.db)
	if err != nil {
		return nil, err
	}

	refs := map[snowflake.ID]*domain.MachineRef{}
	for i := range contracts {
		ref, err := s.machineRef(ctx, contracts[i].MachineID, refs)
		if err != nil {
			return nil, err
		}
		contracts[i].Machine = ref
	}
	return contracts, nil
}

// Renew bills one cycle by hand. A catch-up runs first; the forced step only
// happens when the automatic path had nothing left to bill, so the two
// mechanisms cannot both invoice the same boundary.
func (s *Service) Renew(ctx context.Context, id string) (*domain.RentalContract, error) {
	contractID, err := parseID(id)
	if err != nil {
		return nil, domain.ErrRentalNotFound
	}

	now := s.clock.Now(ctx)
	var contract *domain.RentalContract

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := s.repo.FindByID(ctx, tx, contractID, true)
		if err != nil {
			return err
		}
		if c == nil {
			return domain.ErrRentalNotFound
		}

		appended := s.cycle.CatchUp(c, now)
		trigger := "catchup"
		if len(appended) == 0 && c.Status == domain.ContractStatusActive {
			appended = append(appended, s.cycle.Step(c, now))
			trigger = "manual"
		}
		if len(appended) > 0 {
			if err := s.repo.AppendInvoices(ctx, tx, c.ID, appended, c.NextRenewalDate, now); err != nil {
				return err
			}
			if s.metrics != nil {
				s.metrics.InvoicesGenerated.WithLabelValues(trigger).Add(float64(len(appended)))
			}
		}
		contract = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.withMachineRef(ctx, contract)
}

func (s *Service) RecordPayment(ctx context.Context, id string, req domain.PaymentRequest) (*domain.RentalContract, error) {
	contractID, err := parseID(id)
	if err != nil {
		return nil, domain.ErrRentalNotFound
	}

	var contract *domain.RentalContract
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := s.repo.FindByID(ctx, tx, contractID, true)
		if err != nil {
			return err
		}
		if c == nil {
			return domain.ErrRentalNotFound
		}
		if _, err := s.ledger.Record(ctx, tx, c, req); err != nil {
			return err
		}
		contract = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.PaymentsRecorded.Inc()
	}
	return s.withMachineRef(ctx, contract)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	contractID, err := parseID(id)
	if err != nil {
		return domain.ErrRentalNotFound
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := s.repo.FindByID(ctx, tx, contractID, true)
		if err != nil {
			return err
		}
		if c == nil {
			return domain.ErrRentalNotFound
		}

		if c.MachineID != 0 {
			released, err := s.machine.ReleaseStock(ctx, tx, c.MachineID)
			if err != nil {
				return err
			}
			if !released {
				// The machine is gone; drop the unit rather than fail the delete.
				s.log.Warn("machine missing on contract delete, stock not released",
					zap.Int64("contract_id", int64(c.ID)),
					zap.Int64("machine_id", int64(c.MachineID)),
				)
			}
		}

		if _, err := s.repo.Delete(ctx, tx, c.ID); err != nil {
			return err
		}
		s.log.Info("rental contract deleted", zap.Int64("contract_id", int64(c.ID)))
		return nil
	})
}

func (s *Service) CatchUpAll(ctx context.Context) (int, error) {
	advanced, err := s.sweep(ctx, "catchup")
	if err != nil {
		return 0, err
	}
	if s.metrics != nil {
		if active, err := s.repo.CountByStatus(ctx, s.db, domain.ContractStatusActive); err == nil {
			s.metrics.ActiveContracts.Set(float64(active))
		}
	}
	return advanced, nil
}

// sweep re-reads each candidate contract under a row lock before appending,
// so two concurrent sweeps (or a sweep racing a manual renew) cannot bill a
// boundary twice.
func (s *Service) sweep(ctx context.Context, trigger string) (int, error) {
	now := s.clock.Now(ctx)

	contracts, err := s.repo.FindAll(ctx, s.db)
	if err != nil {
		return 0, err
	}

	advanced := 0
	for i := range contracts {
		c := &contracts[i]
		if c.Status != domain.ContractStatusActive || !now.After(billingcycle.NextBoundary(c.NextRenewalDate)) {
			continue
		}

		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			fresh, err := s.repo.FindByID(ctx, tx, c.ID, true)
			if err != nil {
				return err
			}
			if fresh == nil {
				return nil
			}
			appended := s.cycle.CatchUp(fresh, now)
			if len(appended) == 0 {
				return nil
			}
			if err := s.repo.AppendInvoices(ctx, tx, fresh.ID, appended, fresh.NextRenewalDate, now); err != nil {
				return err
			}
			if s.metrics != nil {
				s.metrics.InvoicesGenerated.WithLabelValues(trigger).Add(float64(len(appended)))
			}
			advanced++
			return nil
		})
		if err != nil {
			return advanced, err
		}
	}
	return advanced, nil
}

func (s *Service) withMachineRef(ctx context.Context, c *domain.RentalContract) (*domain.RentalContract, error) {
	if c == nil {
		return nil, domain.ErrRentalNotFound
	}
	ref, err := s.machineRef(ctx, c.MachineID, nil)
	if err != nil {
		return nil, err
	}
	c.Machine = ref
	return c, nil
}

func (s *Service) machineRef(ctx context.Context, id snowflake.ID, cache map[snowflake.ID]*domain.MachineRef) (*domain.MachineRef, error) {
	if id == 0 {
		return nil, nil
	}
	if cache != nil {
		if ref, ok := cache[id]; ok {
			return ref, nil
		}
	}
	m, err := s.machine.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	var ref *domain.MachineRef
	if m != nil {
		ref = &domain.MachineRef{ID: m.ID, Name: m.Name, Category: m.Category}
	}
	if cache != nil {
		cache[id] = ref
	}
	return ref, nil
}

func parseID(raw string) (snowflake.ID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n <= 0 {
		return 0, domain.ErrInvalidID
	}
	return snowflake.ID(n), nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
