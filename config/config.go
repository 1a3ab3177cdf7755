package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Connect loads the environment, opens the database and brings the
// schema up to date. It is fatal on failure; there is nothing to serve
// without a database.
func Connect() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found, using system environment variables")
	}

	dsn := os.Getenv("DB_DSN")
	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}

	if err := Migrations(DB); err != nil {
		logrus.WithError(err).Fatal("failed to run migrations")
	}

	if err := Seed(DB); err != nil {
		logrus.WithError(err).Warn("seeding encountered issues")
	}
}

// FrontendURL is the single origin CORS allows.
func FrontendURL() string {
	if url := os.Getenv("FRONTEND_URL"); url != "" {
		return url
	}
	return "http://localhost:8080"
}
