package database

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"minichat/internal/models"
)

// Connect opens the Postgres connection with a short retry loop so the
// server survives the container starting before the database does.
func Connect(dsn string) (*gorm.DB, error) {
	var gdb *gorm.DB
	var err error
	for i := 0; i < 10; i++ {
		gdb, err = gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
		if err == nil {
			sqlDB, err2 := gdb.DB()
			if err2 == nil {
				sqlDB.SetMaxIdleConns(5)
				sqlDB.SetMaxOpenConns(20)
				sqlDB.SetConnMaxLifetime(time.Hour)
				log.Info().Msg("database connected")
				return gdb, nil
			}
			err = err2
		}
		time.Sleep(time.Duration(500+i*200) * time.Millisecond)
	}
	return nil, fmt.Errorf("failed to connect to database: %w", err)
}

// Migrate creates the messages and roles tables.
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(&models.ChatMessage{}, &models.Role{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
