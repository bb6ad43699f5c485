package sqldb

import (
	"fmt"
	"lockrent/pkg/logger"
	"log"
	"os"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DialectPostgres = "postgres"
	DialectMySQL    = "mysql"
	DialectSQLite   = "sqlite"
)

type Config struct {
	Dialect         string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	LockWaitTimeout time.Duration
}

func dialector(cfg Config) (gorm.Dialector, error) {
	switch cfg.Dialect {
	case DialectPostgres:
		return postgres.Open(cfg.DSN), nil
	case DialectMySQL:
		return mysql.Open(cfg.DSN), nil
	case DialectSQLite:
		return sqlite.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported SQL dialect %q", cfg.Dialect)
	}
}

func Open(log *logger.Logger, cfg Config) (*gorm.DB, error) {
	dia, err := dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dia, &gorm.Config{
		Logger:         newGormLogger(),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Dialect, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to configure connections: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	if cfg.Dialect == DialectPostgres {
		var version string
		if result := db.Raw("SELECT version()").Scan(&version); result.Error != nil {
			return nil, result.Error
		}
		log.Info("PostgreSQL information", "version", version)
	}

	log.Info("Successfully connected to SQL database", "dialect", cfg.Dialect)
	return db, nil
}

func newGormLogger() gormlogger.Interface {
	return gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
