package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WellStatus is the lifecycle state of a well:
// draft -> building -> completed <-> broken <-> under_maintenance.
type WellStatus string

const (
	StatusDraft            WellStatus = "draft"
	StatusBuilding         WellStatus = "building"
	StatusCompleted        WellStatus = "completed"
	StatusBroken           WellStatus = "broken"
	StatusUnderMaintenance WellStatus = "under_maintenance"
)

func (s WellStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusBuilding, StatusCompleted, StatusBroken, StatusUnderMaintenance:
		return true
	}
	return false
}

// NearCapacityRatio is the load/capacity ratio at which a well is
// flagged as near capacity.
const NearCapacityRatio = 0.8

// Well is a physical water source. CurrentLoad exceeding Capacity is not
// rejected by the schema; it only drives the near-capacity warning.
type Well struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Location    Point      `gorm:"not null" json:"location"`
	ServiceArea *Polygon   `json:"serviceArea,omitempty"`
	Status      WellStatus `gorm:"type:text;not null;default:'draft'" json:"status"`
	Capacity    int        `gorm:"not null" json:"capacity"`
	CurrentLoad int        `gorm:"not null;default:0" json:"currentLoad"`
	Weight      int        `gorm:"not null;default:0" json:"weight"`
	AreaID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"areaId"`
	Area        *Area      `gorm:"foreignKey:AreaID;constraint:OnDelete:RESTRICT" json:"-"`

	Project *WellProject     `gorm:"foreignKey:WellID;constraint:OnDelete:CASCADE" json:"project,omitempty"`
	Reports []BreakageReport `gorm:"foreignKey:WellID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (w *Well) BeforeCreate(tx *gorm.DB) (err error) {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return
}

// UsagePercentage returns load/capacity as a whole percentage. A zero
// capacity well reads as 0, not a division error.
func (w *Well) UsagePercentage() int {
	if w.Capacity <= 0 {
		return 0
	}
	return int(float64(w.CurrentLoad) / float64(w.Capacity) * 100)
}

// NearCapacity reports whether the well is at or above the warning ratio.
func (w *Well) NearCapacity() bool {
	if w.Capacity <= 0 {
		return false
	}
	return float64(w.CurrentLoad) >= float64(w.Capacity)*NearCapacityRatio
}

// StatusColor is the marker color the map view renders for this well.
func (w *Well) StatusColor() string {
	switch w.Status {
	case StatusBroken:
		return "#d9534f" // red
	case StatusUnderMaintenance:
		return "#f0ad4e" // orange
	case StatusCompleted:
		if w.NearCapacity() {
			return "#ffc107" // amber, nearly loaded but still serving
		}
		return "#5cb85c" // green
	case StatusBuilding:
		return "#5bc0de"
	default:
		return "#999999"
	}
}
