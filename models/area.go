package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Area is an administrative region. It owns admins and wells; both
// reference it with ON DELETE RESTRICT so an area cannot disappear from
// under its wells.
type Area struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	Boundary  Polygon   `gorm:"not null" json:"boundary"`
	CreatedAt time.Time `json:"createdAt"`

	Admins []Admin `gorm:"foreignKey:AreaID;constraint:OnDelete:RESTRICT" json:"-"`
	Wells  []Well  `gorm:"foreignKey:AreaID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (a *Area) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}
