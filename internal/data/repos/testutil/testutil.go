package testutil

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/yungbote/scandine-backend/internal/data/db"
	"github.com/yungbote/scandine-backend/internal/platform/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var (
	dbOnce sync.Once
	shared *gorm.DB
	dbErr  error

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

// DB returns a process-wide migrated database. Callers isolate themselves
// with Tx. TEST_POSTGRES_DSN switches from in-memory sqlite to Postgres.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	dbOnce.Do(func() {
		shared, dbErr = open(sharedSQLiteDSN("repos"))
	})
	if dbErr != nil {
		tb.Fatalf("failed to init test db: %v", dbErr)
	}
	return shared
}

// FreshDB opens an isolated, migrated database for tests that run their own
// transactions (services, handlers). It is closed on cleanup.
func FreshDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	if dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN")); dsn != "" {
		// Postgres is shared; wipe rows so each test starts empty.
		g := DB(tb)
		truncateAll(tb, g)
		return g
	}
	g, err := open(sharedSQLiteDSN(uuid.NewString()))
	if err != nil {
		tb.Fatalf("failed to init fresh db: %v", err)
	}
	tb.Cleanup(func() {
		if sqlDB, err := g.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return g
}

func Tx(tb testing.TB, g *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := g.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}

func sharedSQLiteDSN(name string) string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)
}

func open(sqliteDSN string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
	}

	var (
		g   *gorm.DB
		err error
	)
	if dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN")); dsn != "" {
		g, err = gorm.Open(postgres.Open(dsn), cfg)
	} else {
		g, err = gorm.Open(sqlite.Open(sqliteDSN), cfg)
		if err == nil {
			// One connection keeps the in-memory database alive and serializes writers.
			if sqlDB, derr := g.DB(); derr == nil {
				sqlDB.SetMaxOpenConns(1)
			}
		}
	}
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrateAll(g); err != nil {
		return nil, err
	}
	return g, nil
}

func truncateAll(tb testing.TB, g *gorm.DB) {
	tb.Helper()
	for _, table := range []string{"product", "category", "shop_settings", "shop_user", "invite", "password_reset", "user_token", "shop", "user"} {
		if err := g.Exec(fmt.Sprintf(`DELETE FROM %q`, table)).Error; err != nil {
			tb.Fatalf("truncate %s: %v", table, err)
		}
	}
}
