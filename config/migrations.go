package config

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/projectoasis/hydroflow/models"
)

// Migrations brings the schema up to date. Enum and range rules live in
// CHECK constraints rather than Postgres enum types so the columns stay
// portable across drivers.
func Migrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "20240512_enable_postgis",
			Migrate: func(tx *gorm.DB) error {
				if tx.Dialector.Name() != "postgres" {
					return nil
				}
				return tx.Exec("CREATE EXTENSION IF NOT EXISTS postgis").Error
			},
		},
		{
			ID: "20240512_create_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(
					&models.Area{}, &models.Admin{}, &models.Well{},
					&models.WellProject{}, &models.BreakageReport{},
				)
			},
		},
		{
			ID: "20240519_add_check_constraints",
			Migrate: func(tx *gorm.DB) error {
				if tx.Dialector.Name() != "postgres" {
					return nil
				}
				stmts := []string{
					`ALTER TABLE wells ADD CONSTRAINT chk_wells_capacity CHECK (capacity >= 0)`,
					`ALTER TABLE wells ADD CONSTRAINT chk_wells_current_load CHECK (current_load >= 0)`,
					`ALTER TABLE wells ADD CONSTRAINT chk_wells_status CHECK (status IN ('draft', 'building', 'completed', 'broken', 'under_maintenance'))`,
					`ALTER TABLE breakage_reports ADD CONSTRAINT chk_reports_status CHECK (status IN ('reported', 'in_progress', 'fixed'))`,
				}
				for _, s := range stmts {
					if err := tx.Exec(s).Error; err != nil {
						return err
					}
				}
				return nil
			},
		},
	})
	return m.Migrate()
}
