package testutil

import (
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	dbpkg "github.com/yungbote/crm-backend/internal/data/db"
	"github.com/yungbote/crm-backend/internal/platform/logger"
)

var (
	pgOnce sync.Once
	pgDB   *gorm.DB
	pgErr  error

	logOnce sync.Once
	logg    *logger.Logger
	logErr  error
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

// IsPostgres reports whether tests run against TEST_POSTGRES_DSN.
func IsPostgres() bool {
	return os.Getenv("TEST_POSTGRES_DSN") != ""
}

// DB returns an empty, migrated database. Without TEST_POSTGRES_DSN every call
// gets its own in-memory sqlite database; with it, the shared Postgres
// database is emptied first.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	if IsPostgres() {
		return postgresDB(tb)
	}
	return sqliteDB(tb)
}

// PostgresDB skips the test unless TEST_POSTGRES_DSN is set.
func PostgresDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	if !IsPostgres() {
		tb.Skip("set TEST_POSTGRES_DSN to run postgres integration tests")
	}
	return postgresDB(tb)
}

func sqliteDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), dbpkg.Config(gormLogger.Default.LogMode(gormLogger.Silent)))
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })
	if err := dbpkg.AutoMigrateAll(db); err != nil {
		tb.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

func postgresDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	pgOnce.Do(func() {
		pgDB, pgErr = gorm.Open(postgres.Open(os.Getenv("TEST_POSTGRES_DSN")), dbpkg.Config(gormLogger.Default.LogMode(gormLogger.Silent)))
		if pgErr != nil {
			return
		}
		pgErr = dbpkg.AutoMigrateAll(pgDB)
	})
	if pgErr != nil {
		tb.Fatalf("failed to init test db: %v", pgErr)
	}
	if err := pgDB.Exec("TRUNCATE order_products, orders, products, customers").Error; err != nil {
		tb.Fatalf("truncate: %v", err)
	}
	return pgDB
}

func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}
