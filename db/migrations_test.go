package db

import (
	"io/fs"
	"strings"
	"testing"
)

func TestMigrations_Embedded(t *testing.T) {
	files, err := fs.Glob(Migrations, "migrations/*.sql")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) < 2 {
		t.Fatalf("expected embedded migrations, got %v", files)
	}
	for _, f := range files {
		b, err := fs.ReadFile(Migrations, f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if !strings.Contains(string(b), "-- +goose Up") || !strings.Contains(string(b), "-- +goose Down") {
			t.Fatalf("%s is missing goose annotations", f)
		}
	}
}
