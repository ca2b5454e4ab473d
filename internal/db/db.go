package db

import (
	"fmt"
	"strings"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/suPer8Hu/icebreaker-bot/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the relational store. driver is "mysql" (production) or "sqlite" (local runs).
func Connect(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(driver) {
	case "", "mysql":
		dialector = mysql.Open(dsn)
	case "sqlite":
		dialector = gormsqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER=%q", driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	return gdb, nil
}

func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Category{},
		&models.Card{},
		&models.CardPreference{},
		&models.Suggestion{},
	)
}
