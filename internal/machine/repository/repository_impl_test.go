package repository

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/plantdesklabs/plantdesk/internal/machine/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) (*gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Machine{}))

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)
	return db, node
}

func seedMachine(t *testing.T, db *gorm.DB, node *snowflake.Node, stock int64) *domain.Machine {
	t.Helper()
	now := time.Now().UTC()
	m := &domain.Machine{
		ID:                node.Generate(),
		Name:              "Skid Steer",
		Category:          "Loaders",
		MonthlyRentalRate: 65000,
		Stock:             stock,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	require.NoError(t, Provide().Create(context.Background(), db, m))
	return m
}

func TestReserveStockStopsAtZero(t *testing.T) {
	db, node := newTestDB(t)
	r := Provide()
	ctx := context.Background()

	m := seedMachine(t, db, node, 1)

	ok, err := r.ReserveStock(ctx, db, m.ID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = r.ReserveStock(ctx, db, m.ID)
	require.NoError(t, err)
	require.False(t, ok)

	got, err := r.FindByID(ctx, db, m.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), got.Stock)
}

func TestReserveStockUnknownMachine(t *testing.T) {
	db, node := newTestDB(t)
	r := Provide()

	ok, err := r.ReserveStock(context.Background(), db, node.Generate())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestReleaseStockIncrements(t *testing.T) {
	db, node := newTestDB(t)
	r := Provide()
	ctx := context.Background()

	m := seedMachine(t, db, node, 0)

	ok, err := r.ReleaseStock(ctx, db, m.ID)
	require.NoError(t, err)
	require.True(t, ok)

	got, err := r.FindByID(ctx, db, m.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), got.Stock)
}

func TestReleaseStockMissingMachine(t *testing.T) {
	db, node := newTestDB(t)
	r := Provide()

	ok, err := r.ReleaseStock(context.Background(), db, node.Generate())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFindByIDMissing(t *testing.T) {
	db, node := newTestDB(t)
	r := Provide()

	got, err := r.FindByID(context.Background(), db, node.Generate())
	require.NoError(t, err)
	require.Nil(t, got)
}
