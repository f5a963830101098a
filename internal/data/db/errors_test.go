package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want ErrorClass
	}{
		{"not found", gorm.ErrRecordNotFound, ClassNotFound},
		{"wrapped not found", fmt.Errorf("load: %w", gorm.ErrRecordNotFound), ClassNotFound},
		{"pg unique", &pgconn.PgError{Code: "23505"}, ClassConflict},
		{"pg fk", &pgconn.PgError{Code: "23503"}, ClassForeignKey},
		{"pg check", &pgconn.PgError{Code: "23514"}, ClassCheck},
		{"pg serialization", &pgconn.PgError{Code: "40001"}, ClassRetryable},
		{"sqlite unique", errors.New("UNIQUE constraint failed: compositions.parent_id"), ClassConflict},
		{"canceled", context.Canceled, ClassRetryable},
		{"other", errors.New("boom"), ClassInternal},
	}
	for _, tc := range cases {
		if got := Classify(tc.err); got != tc.want {
			t.Fatalf("%s: want=%s got=%s", tc.name, tc.want, got)
		}
	}
	if !IsConflict(&pgconn.PgError{Code: "23505"}) {
		t.Fatalf("IsConflict: want true")
	}
	if IsConflict(nil) {
		t.Fatalf("IsConflict(nil): want false")
	}
}

func TestConnString(t *testing.T) {
	cfg := PostgresConfig{Host: "db", Port: "5432", User: "armory", Password: "p@ss", Name: "armory"}
	want := "postgres://armory:p%40ss@db:5432/armory?sslmode=disable"
	if got := cfg.ConnString(); got != want {
		t.Fatalf("ConnString: want=%q got=%q", want, got)
	}
	cfg.DSN = "postgres://x@y/z"
	if got := cfg.ConnString(); got != "postgres://x@y/z" {
		t.Fatalf("ConnString(dsn): got %q", got)
	}
}
