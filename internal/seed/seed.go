package seed

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	machinedomain "github.com/plantdesklabs/plantdesk/internal/machine/domain"
	"gorm.io/gorm"
)

// EnsureDevMachines seeds a small machine inventory into an empty database
// so a fresh development install has something to rent out.
func EnsureDevMachines(db *gorm.DB, node *snowflake.Node) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&machinedomain.Machine{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		for _, m := range devMachines(tx, node) {
			if err := tx.Create(&m).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func devMachines(tx *gorm.DB, node *snowflake.Node) []machinedomain.Machine {
	now := tx.NowFunc()
	specs := []struct {
		name     string
		category string
		sale     int64
		rate     int64
		stock    int64
	}{
		{"Mini Excavator 1.8t", "Excavators", 2_450_000, 95_000, 3},
		{"Skid Steer Loader", "Loaders", 1_890_000, 78_000, 2},
		{"Mobile Crane 25t", "Cranes", 14_500_000, 420_000, 1},
		{"Diesel Generator 60kVA", "Power", 820_000, 35_000, 5},
	}

	machines := make([]machinedomain.Machine, 0, len(specs))
	for _, s := range specs {
		machines = append(machines, machinedomain.Machine{
			ID:                node.Generate(),
			Name:              s.name,
			Category:          s.category,
			SalePrice:         s.sale,
			MonthlyRentalRate: s.rate,
			Stock:             s.stock,
			CreatedAt:         now,
			UpdatedAt:         now,
		})
	}
	return machines
}
