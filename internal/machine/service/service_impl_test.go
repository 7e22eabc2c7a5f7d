package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/plantdesklabs/plantdesk/internal/clock"
	"github.com/plantdesklabs/plantdesk/internal/machine/domain"
	"github.com/plantdesklabs/plantdesk/internal/machine/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Machine{}))

	node, err := snowflake.NewNode(5)
	require.NoError(t, err)

	return NewService(ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.Fixed{T: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)},
		Repo:  repository.Provide(),
	})
}

func TestCreateValidatesInput(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRequest{Name: "  "})
	require.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreateRequest{Name: "Dozer", Stock: -1})
	require.ErrorIs(t, err, domain.ErrInvalidStock)
}

func TestCreateAndGet(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateRequest{
		Name:              "  Bulldozer D6 ",
		Category:          "Dozers",
		MonthlyRentalRate: 120000,
		Stock:             2,
		Metadata:          map[string]any{"weight_kg": 22000},
	})
	require.NoError(t, err)
	require.Equal(t, "Bulldozer D6", created.Name)

	got, err := svc.Get(ctx, created.ID.String())
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
	require.Equal(t, int64(2), got.Stock)
}

func TestGetUnknown(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Get(context.Background(), "42")
	require.ErrorIs(t, err, domain.ErrMachineNotFound)

	_, err = svc.Get(context.Background(), "not-a-number")
	require.ErrorIs(t, err, domain.ErrMachineNotFound)
}

func TestUpdateAppliesPartialChanges(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateRequest{
		Name:              "Crane",
		Category:          "Cranes",
		MonthlyRentalRate: 300000,
		Stock:             1,
	})
	require.NoError(t, err)

	rate := int64(280000)
	updated, err := svc.Update(ctx, created.ID.String(), domain.UpdateRequest{
		MonthlyRentalRate: &rate,
	})
	require.NoError(t, err)
	require.Equal(t, int64(280000), updated.MonthlyRentalRate)
	require.Equal(t, "Crane", updated.Name)

	bad := int64(-1)
	_, err = svc.Update(ctx, created.ID.String(), domain.UpdateRequest{Stock: &bad})
	require.ErrorIs(t, err, domain.ErrInvalidStock)
}

func TestDelete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateRequest{Name: "Loader", Stock: 1})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID.String()))
	require.ErrorIs(t, svc.Delete(ctx, created.ID.String()), domain.ErrMachineNotFound)
}
