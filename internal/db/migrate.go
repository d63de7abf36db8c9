package db

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ase-portfolio/webapp/internal/models"
	"gorm.io/gorm"
)

// Settings keys and defaults.
const (
	// SiteNameKey is the settings key for the rendered site name.
	SiteNameKey = "SITE_NAME"
	// DefaultSiteName is the fallback site name.
	DefaultSiteName = "ASE Portfolio"
)

// Migrate runs schema migrations and seeds default settings.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	if errAutoMigrate := conn.AutoMigrate(
		&models.User{},
		&models.Setting{},
	); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}
	return ensureSiteNameSetting(conn, DefaultSiteName)
}

// ensureSiteNameSetting seeds the SITE_NAME setting when absent.
func ensureSiteNameSetting(conn *gorm.DB, siteName string) error {
	var count int64
	if errCount := conn.Model(&models.Setting{}).Where("key = ?", SiteNameKey).Count(&count).Error; errCount != nil {
		return fmt.Errorf("db: count SITE_NAME setting: %w", errCount)
	}
	if count > 0 {
		return nil
	}

	payload, errMarshal := json.Marshal(strings.TrimSpace(siteName))
	if errMarshal != nil {
		return fmt.Errorf("db: marshal SITE_NAME setting: %w", errMarshal)
	}
	setting := models.Setting{
		Key:       SiteNameKey,
		Value:     payload,
		UpdatedAt: time.Now().UTC(),
	}
	if errCreate := conn.Create(&setting).Error; errCreate != nil {
		return fmt.Errorf("db: create SITE_NAME setting: %w", errCreate)
	}
	return nil
}

// SiteName returns the configured site name, falling back to the default.
func SiteName(conn *gorm.DB) string {
	var setting models.Setting
	if errFind := conn.Where("key = ?", SiteNameKey).First(&setting).Error; errFind != nil {
		return DefaultSiteName
	}
	var name string
	if errUnmarshal := json.Unmarshal(setting.Value, &name); errUnmarshal != nil || strings.TrimSpace(name) == "" {
		return DefaultSiteName
	}
	return name
}
