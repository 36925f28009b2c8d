package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/planche-electronique/cepo/internal/logging"
)

// OpenArchive connects to the flight archive database. driver is "sqlite"
// (dsn is a file path or ":memory:") or "postgres" (dsn is a URL or keyword string).
func OpenArchive(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported archive driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s archive: %w", driver, err)
	}

	logging.Info("Connected to flight archive via GORM", "driver", driver)
	return db, nil
}
