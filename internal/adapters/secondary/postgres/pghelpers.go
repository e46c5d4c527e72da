package postgres

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// uuidParam converts a uuid.UUID to a pgtype.UUID.
func uuidParam(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

// uuidPtrParam converts a *uuid.UUID to a pgtype.UUID, mapping nil to NULL.
func uuidPtrParam(id *uuid.UUID) pgtype.UUID {
	if id == nil {
		return pgtype.UUID{Valid: false}
	}
	return pgtype.UUID{Bytes: *id, Valid: true}
}

// uuidPtr converts a pgtype.UUID to a *uuid.UUID, mapping NULL to nil.
func uuidPtr(id pgtype.UUID) *uuid.UUID {
	if !id.Valid {
		return nil
	}
	value := uuid.UUID(id.Bytes)
	return &value
}

// timePtrParam converts a *time.Time to a pgtype.Timestamptz, mapping nil to NULL.
func timePtrParam(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{Valid: false}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

// timePtr converts a pgtype.Timestamptz to a *time.Time, mapping NULL to nil.
func timePtr(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	value := t.Time
	return &value
}

// intPtr converts a pgtype.Int4 to an *int, mapping NULL to nil.
func intPtr(n pgtype.Int4) *int {
	if !n.Valid {
		return nil
	}
	value := int(n.Int32)
	return &value
}

// intPtrParam converts an *int to a pgtype.Int4, mapping nil to NULL.
func intPtrParam(n *int) pgtype.Int4 {
	if n == nil {
		return pgtype.Int4{Valid: false}
	}
	return pgtype.Int4{Int32: int32(*n), Valid: true}
}
