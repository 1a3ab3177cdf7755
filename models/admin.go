package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Admin is an operator account. AreaID is nullable: an admin without an
// area is unassigned and manages every area. The OAuth columns are only
// populated for accounts linked through Google or GitHub.
type Admin struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	AreaID       *uuid.UUID `gorm:"type:uuid;index" json:"areaId,omitempty"`
	Area         *Area      `gorm:"foreignKey:AreaID" json:"-"`
	// no column default: gorm drops zero values for defaulted fields,
	// which would silently store a demoted admin as is_admin = true.
	// Every creation path sets this explicitly.
	IsAdmin bool `gorm:"not null" json:"isAdmin"`

	OAuthID        *string    `gorm:"column:oauth_id;size:255;index" json:"-"`
	AccessToken    *string    `json:"-"`
	RefreshToken   *string    `json:"-"`
	TokenExpiresAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (a *Admin) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}

// SetPassword hashes and stores the password.
func (a *Admin) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether the password matches the stored hash.
func (a *Admin) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}
