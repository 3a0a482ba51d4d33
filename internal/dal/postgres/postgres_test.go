package postgres

import (
	"errors"
	"testing"

	"github.com/corray333/littlelemon/internal/service/svcerr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestWrapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want svcerr.Kind
	}{
		{name: "numeric out of range", err: &pgconn.PgError{Code: "22003"}, want: svcerr.KindValidation},
		{name: "unique violation", err: &pgconn.PgError{Code: "23505"}, want: svcerr.KindValidation},
		{name: "foreign key violation", err: &pgconn.PgError{Code: "23503"}, want: svcerr.KindValidation},
		{name: "check violation", err: &pgconn.PgError{Code: "23514"}, want: svcerr.KindValidation},
		{name: "serialization failure", err: &pgconn.PgError{Code: "40001"}, want: svcerr.KindConflict},
		{name: "deadlock", err: &pgconn.PgError{Code: "40P01"}, want: svcerr.KindConflict},
		{name: "other driver error", err: &pgconn.PgError{Code: "57014"}, want: svcerr.KindInternal},
		{name: "plain error", err: errors.New("connection reset"), want: svcerr.KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := WrapError(tt.err, "failed to write")
			if got := svcerr.KindOf(err); got != tt.want {
				t.Errorf("KindOf(WrapError()) = %v, want %v", got, tt.want)
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("WrapError() = %v, want it to wrap %v", err, tt.err)
			}
		})
	}

	if err := WrapError(nil, "failed to write"); err != nil {
		t.Errorf("WrapError(nil) = %v, want nil", err)
	}
}

func TestIsNoRows(t *testing.T) {
	if !IsNoRows(WrapError(pgx.ErrNoRows, "failed to get")) {
		t.Error("IsNoRows() = false for a wrapped ErrNoRows")
	}
	if IsNoRows(errors.New("boom")) {
		t.Error("IsNoRows() = true for an unrelated error")
	}
}
