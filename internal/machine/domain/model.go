package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Machine is one rentable/sellable unit type in the yard. Stock counts
// available units; the rental engine reserves and releases them one at a
// time and nothing else may recompute the counter from scratch.
type Machine struct {
	ID                snowflake.ID       `gorm:"column:id;primaryKey" json:"id"`
	Name              string             `gorm:"column:name" json:"name"`
	Category          string             `gorm:"column:category" json:"category"`
	Description       string             `gorm:"column:description" json:"description,omitempty"`
	SalePrice         int64              `gorm:"column:sale_price" json:"salePrice"`
	MonthlyRentalRate int64              `gorm:"column:monthly_rental_rate" json:"monthlyRentalRate"`
	Stock             int64              `gorm:"column:stock" json:"stock"`
	Metadata          datatypes.JSONMap  `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt         time.Time          `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt         time.Time          `gorm:"column:updated_at" json:"updatedAt"`
}

func (Machine) TableName() string {
	return "machines"
}
