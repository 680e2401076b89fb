package config

import (
	"fmt"
	"os"

	"github.com/gosimple/slug"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/gatherly/gatherly/internal/models"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	Env        string
	LogLevel   string
}

func LoadConfig() (*Config, error) {
	return &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		Env:        os.Getenv("GO_ENV"),
		LogLevel:   os.Getenv("LOG_LEVEL"),
	}, nil
}

// NewLogger configures logrus: JSON output in production, text
// otherwise, level from LOG_LEVEL (default info).
func NewLogger(cfg *Config) *logrus.Logger {
	log := logrus.New()
	if cfg.Env == "production" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

func enableUUIDExtension(db *gorm.DB) error {
	return db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error
}

func InitDatabase(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := enableUUIDExtension(db); err != nil {
		return nil, err
	}

	err = db.AutoMigrate(&models.Role{}, &models.User{}, &models.Category{}, &models.Event{}, &models.VirtualEvent{})
	if err != nil {
		return nil, err
	}

	seedRoles(db)
	seedCategories(db)

	return db, nil
}

func seedRoles(db *gorm.DB) {
	roles := []models.Role{
		{Name: models.RoleOrganizer},
		{Name: models.RoleAttendee},
		{Name: models.RoleAdmin},
	}

	for _, role := range roles {
		var existingRole models.Role
		result := db.Where("name = ?", role.Name).First(&existingRole)
		if result.Error != nil {
			db.Create(&role)
		}
	}
}

func seedCategories(db *gorm.DB) {
	names := []string{"Music", "Technology", "Sports", "Arts", "Food & Drink", "Business", "Health"}

	for _, name := range names {
		category := models.Category{Name: name, Slug: slug.Make(name)}
		var existing models.Category
		result := db.Where("slug = ?", category.Slug).First(&existing)
		if result.Error != nil {
			db.Create(&category)
		}
	}
}
