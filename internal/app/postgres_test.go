package app

import (
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/guttosm/stockcast/config"
)

func TestInitPostgres_Table(t *testing.T) {
	pg := config.PostgresConfig{User: "u", Password: "p", Host: "h", Port: 5432, DBName: "d", SSLMode: "disable"}

	cases := []struct {
		name        string
		migrateOn   bool
		openErr     error
		pingErr     error
		wantErr     string
		wantMigrate bool
	}{
		{name: "open error", openErr: errors.New("open failed"), wantErr: "failed to open postgres"},
		{name: "ping error", pingErr: errors.New("ping failed"), wantErr: "failed to ping postgres"},
		{name: "no migrate", migrateOn: false},
		{name: "migrate", migrateOn: true, wantMigrate: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			oldOpen, oldMigrate := sqlOpener, migrate
			t.Cleanup(func() { sqlOpener, migrate = oldOpen, oldMigrate })

			var gotDSN string
			sqlOpener = func(driverName, dataSourceName string) (*sql.DB, error) {
				gotDSN = dataSourceName
				if tc.openErr != nil {
					return nil, tc.openErr
				}
				db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
				if err != nil {
					t.Fatalf("sqlmock new: %v", err)
				}
				p := mock.ExpectPing()
				if tc.pingErr != nil {
					p.WillReturnError(tc.pingErr)
				}
				mock.ExpectClose()
				return db, nil
			}
			migrated := false
			migrate = func(*sql.DB) error { migrated = true; return nil }

			cfg := config.Config{Postgres: pg}
			cfg.Postgres.Migrate = tc.migrateOn
			db, err := InitPostgres(cfg)

			if gotDSN != "postgres://u:p@h:5432/d?sslmode=disable" {
				t.Fatalf("unexpected dsn %q", gotDSN)
			}
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("want error containing %q, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer db.Close()
			if migrated != tc.wantMigrate {
				t.Fatalf("migrated=%v, want %v", migrated, tc.wantMigrate)
			}
		})
	}
}
