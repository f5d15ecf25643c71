package db

import (
	"testing"

	"github.com/yungbote/scandine-backend/internal/platform/logger"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("POSTGRES_PASSWORD", "pw")
	t.Setenv("POSTGRES_NAME", "menus")

	cfg := ConfigFromEnv()
	if cfg.Driver != DriverSQLite {
		t.Fatalf("driver: want=%q got=%q", DriverSQLite, cfg.Driver)
	}
	want := "postgres://postgres:pw@db.internal:5432/menus?sslmode=disable"
	if got := cfg.PostgresDSN(); got != want {
		t.Fatalf("dsn: want=%q got=%q", want, got)
	}
}

func TestNewServiceSQLiteMigrates(t *testing.T) {
	svc, err := NewService(logger.Nop(), Config{Driver: DriverSQLite, SQLitePath: "file::memory:"})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	defer svc.Close()
	if err := svc.AutoMigrateAll(); err != nil {
		t.Fatalf("AutoMigrateAll: %v", err)
	}
	for _, table := range []string{"user", "shop", "shop_settings", "product", "invite"} {
		if !svc.DB().Migrator().HasTable(table) {
			t.Fatalf("table %q missing after migrate", table)
		}
	}
}

func TestNewServiceRejectsUnknownDriver(t *testing.T) {
	if _, err := NewService(logger.Nop(), Config{Driver: "mysql"}); err == nil {
		t.Fatalf("NewService(mysql): expected error")
	}
}
