package gormstore

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"hotel-booking-engine/apperror"
)

func TestTranslateUniqueViolations(t *testing.T) {
	cases := map[string]error{
		"gorm":     gorm.ErrDuplicatedKey,
		"mysql":    &mysql.MySQLError{Number: 1062, Message: "Duplicate entry '1-2-2025-01-01' for key 'idx_room_night'"},
		"postgres": fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "idx_room_night"}),
	}
	for name, cause := range cases {
		t.Run(name, func(t *testing.T) {
			err := translate("create room nights", cause)
			ce, ok := apperror.AsConflict(err)
			if !ok {
				t.Fatalf("expected conflict, got %v", err)
			}
			if ce.Reason != apperror.ReasonOccupied {
				t.Errorf("unexpected reason %q", ce.Reason)
			}
		})
	}
}

func TestTranslateNotFound(t *testing.T) {
	err := translate("find booking", gorm.ErrRecordNotFound)
	if !apperror.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTranslateOtherErrors(t *testing.T) {
	if translate("noop", nil) != nil {
		t.Fatal("nil must stay nil")
	}

	base := &mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"}
	err := translate("lock room nights", base)
	if _, ok := apperror.AsConflict(err); ok {
		t.Error("lock timeout is not a conflict")
	}
	if !errors.Is(err, base) {
		t.Error("cause must be kept")
	}
}
