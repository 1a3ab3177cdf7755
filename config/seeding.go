package config

import (
	"os"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/projectoasis/hydroflow/models"
)

// Seed provisions the initial area and admin account so a fresh deploy
// is usable. It skips anything that already exists.
func Seed(db *gorm.DB) error {
	var areaCount int64
	if err := db.Model(&models.Area{}).Count(&areaCount).Error; err != nil {
		return err
	}
	var area models.Area
	if areaCount == 0 {
		// Travis County-ish rectangle; operators replace this with real
		// boundaries through their own tooling.
		area = models.Area{
			Name: "Travis County",
			Boundary: models.Polygon(orb.Polygon{{
				{-98.17, 30.02}, {-97.37, 30.02}, {-97.37, 30.63}, {-98.17, 30.63}, {-98.17, 30.02},
			}}),
		}
		if err := db.Create(&area).Error; err != nil {
			return err
		}
		logrus.WithField("area", area.Name).Info("seeded default area")
	} else if err := db.First(&area).Error; err != nil {
		return err
	}

	email := os.Getenv("SEED_ADMIN_EMAIL")
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}
	var existing int64
	if err := db.Model(&models.Admin{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return nil
	}
	admin := models.Admin{
		Email:   email,
		AreaID:  &area.ID,
		IsAdmin: true,
	}
	if err := admin.SetPassword(password); err != nil {
		return err
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	logrus.WithField("email", email).Info("seeded admin account")
	return nil
}
