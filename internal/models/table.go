package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Table mirrors the occupancy of a dining table. CurrentOrderID is a weak
// reference: the order owns the binding, the table only displays it.
type Table struct {
	ID             string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	BranchID       string      `json:"branch_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_tables_branch_number"`
	Number         int         `json:"number" gorm:"not null;uniqueIndex:idx_tables_branch_number"`
	Capacity       int         `json:"capacity" gorm:"not null;default:2"`
	Section        string      `json:"section" gorm:"type:varchar(20);default:'Indoor'"`
	Status         TableStatus `json:"status" gorm:"type:varchar(20);default:'available';index"`
	OccupiedSince  *time.Time  `json:"occupied_since"`
	CurrentOrderID *string     `json:"current_order_id" gorm:"type:varchar(36)"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

func (t *Table) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableOccupied  TableStatus = "occupied"
	TableReserved  TableStatus = "reserved"
)

func (s TableStatus) Valid() bool {
	return s == TableAvailable || s == TableOccupied || s == TableReserved
}

const (
	SectionIndoor  = "Indoor"
	SectionOutdoor = "Outdoor"
)
