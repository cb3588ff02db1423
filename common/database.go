package common

import (
	"fmt"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"time"
)

type gormWriter struct {
	logger *zap.SugaredLogger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.logger.Debugf(format, args...)
}

// OpenDatabase connects to database with one of supported drivers: mysql, postgres, sqlite.
// Timestamps are stored in UTC.
func OpenDatabase(dc DatabaseConfig, log *zap.SugaredLogger) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: logger.New(gormWriter{logger: log}, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var dialector gorm.Dialector
	switch dc.Driver {
	case "mysql":
		dialector = mysql.Open(dc.DSN)
	case "postgres":
		dialector = postgres.Open(dc.DSN)
	case "sqlite":
		dialector = sqlite.Open(dc.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", dc.Driver)
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", dc.Driver, err)
	}
	if dc.Driver == "sqlite" {
		// in-memory databases live as long as their single connection
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}
