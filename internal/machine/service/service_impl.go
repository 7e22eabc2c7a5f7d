package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/plantdesklabs/plantdesk/internal/clock"
	"github.com/plantdesklabs/plantdesk/internal/machine/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("machine.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Machine, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, domain.ErrInvalidName
	}
	if req.Stock < 0 {
		return nil, domain.ErrInvalidStock
	}

	now := s.clock.Now(ctx)
	m := &domain.Machine{
		ID:                s.genID.Generate(),
		Name:              strings.TrimSpace(req.Name),
		Category:          strings.TrimSpace(req.Category),
		Description:       req.Description,
		SalePrice:         req.SalePrice,
		MonthlyRentalRate: req.MonthlyRentalRate,
		Stock:             req.Stock,
		Metadata:          datatypes.JSONMap(req.Metadata),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.Create(ctx, s.db, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Machine, error) {
	return s.repo.FindAll(ctx, s.db)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Machine, error) {
	machineID, err := parseID(id)
	if err != nil {
		return nil, domain.ErrMachineNotFound
	}
	m, err := s.repo.FindByID(ctx, s.db, machineID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrMachineNotFound
	}
	return m, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateRequest) (*domain.Machine, error) {
	machineID, err := parseID(id)
	if err != nil {
		return nil, domain.ErrMachineNotFound
	}

	var updated *domain.Machine
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := s.repo.FindByID(ctx, tx, machineID)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.ErrMachineNotFound
		}

		if req.Name != nil {
			if strings.TrimSpace(*req.Name) == "" {
				return domain.ErrInvalidName
			}
			m.Name = strings.TrimSpace(*req.Name)
		}
		if req.Category != nil {
			m.Category = strings.TrimSpace(*req.Category)
		}
		if req.Description != nil {
			m.Description = *req.Description
		}
		if req.SalePrice != nil {
			m.SalePrice = *req.SalePrice
		}
		if req.MonthlyRentalRate != nil {
			m.MonthlyRentalRate = *req.MonthlyRentalRate
		}
		if req.Stock != nil {
			if *req.Stock < 0 {
				return domain.ErrInvalidStock
			}
			m.Stock = *req.Stock
		}
		if req.Metadata != nil {
			m.Metadata = datatypes.JSONMap(req.Metadata)
		}
		m.UpdatedAt = s.clock.Now(ctx)

		if err := s.repo.Update(ctx, tx, m); err != nil {
			return err
		}
		updated = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	machineID, err := parseID(id)
	if err != nil {
		return domain.ErrMachineNotFound
	}
	ok, err := s.repo.Delete(ctx, s.db, machineID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrMachineNotFound
	}
	s.log.Info("machine deleted", zap.Int64("machine_id", int64(machineID)))
	return nil
}

func parseID(raw string) (snowflake.ID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n <= 0 {
		return 0, domain.ErrInvalidID
	}
	return snowflake.ID(n), nil
}
