package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WellProject is the one-to-one planning record behind a well. It exists
// only while a well is being planned and dies with its well.
type WellProject struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	WellID                uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"wellId"`
	ProjectName           string    `gorm:"not null" json:"projectName"`
	EstimatedBuildCost    float64   `gorm:"type:numeric(12,2);not null" json:"estimatedBuildCost"`
	PredictedLifetimeCost *float64  `gorm:"type:numeric(12,2)" json:"predictedLifetimeCost,omitempty"`
	Notes                 string    `json:"notes,omitempty"`
	CreatedAt             time.Time `json:"createdAt"`
}

func (p *WellProject) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
