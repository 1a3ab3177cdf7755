package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ReportStatus tracks a breakage report from submission to fix.
type ReportStatus string

const (
	ReportReported   ReportStatus = "reported"
	ReportInProgress ReportStatus = "in_progress"
	ReportFixed      ReportStatus = "fixed"
)

func (s ReportStatus) Valid() bool {
	switch s {
	case ReportReported, ReportInProgress, ReportFixed:
		return true
	}
	return false
}

// IssueType categorizes what a visitor observed at the well. Each type
// maps to the well status the report should flip the well into.
type IssueType string

const (
	IssueNoWater       IssueType = "no-water"
	IssueLowPressure   IssueType = "low-pressure"
	IssueContamination IssueType = "contamination"
	IssueMechanical    IssueType = "mechanical"
	IssueElectrical    IssueType = "electrical"
	IssueLeak          IssueType = "leak"
	IssueOther         IssueType = "other"
)

// issueWellStatus maps an issue category to the well status it implies.
var issueWellStatus = map[IssueType]WellStatus{
	IssueNoWater:       StatusBroken,
	IssueContamination: StatusBroken,
	IssueElectrical:    StatusBroken,
	IssueLeak:          StatusBroken,
	IssueLowPressure:   StatusUnderMaintenance,
	IssueMechanical:    StatusUnderMaintenance,
	IssueOther:         StatusUnderMaintenance,
}

func (t IssueType) Valid() bool {
	_, ok := issueWellStatus[t]
	return ok
}

// WellStatus returns the well status this kind of issue implies.
func (t IssueType) WellStatus() WellStatus {
	if s, ok := issueWellStatus[t]; ok {
		return s
	}
	return StatusUnderMaintenance
}

// BreakageReport is a user-submitted issue ticket against a well.
// Reports are first-class rows with stable IDs; resolution is the
// structured Resolved/ResolvedAt pair, never a marker inside Summary.
type BreakageReport struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	WellID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"wellId"`
	Well            *Well          `gorm:"foreignKey:WellID;constraint:OnDelete:CASCADE" json:"-"`
	IssueType       IssueType      `gorm:"type:text;not null" json:"issueType"`
	Summary         string         `gorm:"not null" json:"summary"`
	ImageURL        *string        `json:"imageUrl,omitempty"`
	Photos          pq.StringArray `gorm:"type:text[]" json:"photos,omitempty"`
	ReporterContact datatypes.JSON `gorm:"type:jsonb" json:"reporterContact,omitempty"`
	Status          ReportStatus   `gorm:"type:text;not null;default:'reported'" json:"status"`
	FixPriority     int            `gorm:"not null;default:0" json:"fixPriority"`
	Resolved        bool           `gorm:"not null;default:false" json:"resolved"`
	ResolvedAt      *time.Time     `json:"resolvedAt,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
}

func (r *BreakageReport) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}
