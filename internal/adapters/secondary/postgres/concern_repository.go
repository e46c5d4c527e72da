package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/concernrise/concern-backend/internal/core/domain"
	apperrors "github.com/concernrise/concern-backend/internal/core/errors"
	"github.com/concernrise/concern-backend/internal/core/ports"
)

type ConcernRepository struct {
	pool *pgxpool.Pool
}

var _ ports.ConcernRepository = (*ConcernRepository)(nil)

func NewConcernRepository(pool *pgxpool.Pool) *ConcernRepository {
	return &ConcernRepository{pool: pool}
}

const concernColumns = `id, ticket_code, student_id, assigned_to, title, description, category, severity,
status, is_anonymous, campus, attachments, rating, feedback, resolved_at, closed_at, created_at, updated_at`

func scanConcern(row pgx.Row) (*domain.Concern, error) {
	var (
		concern     domain.Concern
		id          pgtype.UUID
		studentID   pgtype.UUID
		assignedTo  pgtype.UUID
		category    string
		severity    string
		status      string
		campus      string
		attachments []byte
		rating      pgtype.Int4
		resolvedAt  pgtype.Timestamptz
		closedAt    pgtype.Timestamptz
		updatedAt   pgtype.Timestamptz
	)

	err := row.Scan(
		&id,
		&concern.TicketCode,
		&studentID,
		&assignedTo,
		&concern.Title,
		&concern.Description,
		&category,
		&severity,
		&status,
		&concern.IsAnonymous,
		&campus,
		&attachments,
		&rating,
		&concern.Feedback,
		&resolvedAt,
		&closedAt,
		&concern.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(attachments, &concern.Attachments); err != nil {
		return nil, fmt.Errorf("decode attachments: %w", err)
	}

	concern.ID = uuid.UUID(id.Bytes)
	concern.StudentID = uuid.UUID(studentID.Bytes)
	concern.AssignedTo = uuidPtr(assignedTo)
	concern.Category = domain.Category(category)
	concern.Severity = domain.Severity(severity)
	concern.Status = domain.ConcernStatus(status)
	concern.Campus = domain.Campus(campus)
	concern.Rating = intPtr(rating)
	concern.ResolvedAt = timePtr(resolvedAt)
	concern.ClosedAt = timePtr(closedAt)
	concern.UpdatedAt = timePtr(updatedAt)
	return &concern, nil
}

// Create inserts the concern and its seeded timeline. The ticket code comes
// from the database sequence default and is returned on the inserted row.
func (r *ConcernRepository) Create(ctx context.Context, concern *domain.Concern) (*domain.Concern, error) {
	attachments, err := json.Marshal(concern.Attachments)
	if err != nil {
		return nil, fmt.Errorf("encode attachments: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create concern: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const query = `
INSERT INTO concerns (id, student_id, assigned_to, title, description, category, severity,
                      status, is_anonymous, campus, attachments, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING ` + concernColumns

	row := tx.QueryRow(ctx, query,
		uuidParam(concern.ID),
		uuidParam(concern.StudentID),
		uuidPtrParam(concern.AssignedTo),
		concern.Title,
		concern.Description,
		string(concern.Category),
		string(concern.Severity),
		string(concern.Status),
		concern.IsAnonymous,
		string(concern.Campus),
		attachments,
		concern.CreatedAt,
	)

	created, err := scanConcern(row)
	if err != nil {
		return nil, fmt.Errorf("create concern: %w", err)
	}

	if err := insertTimeline(ctx, tx, concern.ID, concern.Timeline); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create concern: %w", err)
	}

	created.Timeline = concern.Timeline
	return created, nil
}

func (r *ConcernRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Concern, error) {
	const query = `SELECT ` + concernColumns + ` FROM concerns WHERE id = $1`

	db := GetDBTX(ctx, r.pool)
	concern, err := scanConcern(db.QueryRow(ctx, query, uuidParam(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrConcernNotFound
		}
		return nil, fmt.Errorf("get concern: %w", err)
	}

	timeline, err := loadTimeline(ctx, db, id)
	if err != nil {
		return nil, err
	}
	concern.Timeline = timeline

	return concern, nil
}

// Update persists the concern's mutable fields and appends any timeline
// entries that are not yet stored. Existing entries are never touched.
func (r *ConcernRepository) Update(ctx context.Context, concern *domain.Concern) (*domain.Concern, error) {
	attachments, err := json.Marshal(concern.Attachments)
	if err != nil {
		return nil, fmt.Errorf("encode attachments: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin update concern: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const query = `
UPDATE concerns
SET assigned_to = $2,
    title = $3,
    description = $4,
    category = $5,
    severity = $6,
    status = $7,
    campus = $8,
    attachments = $9,
    rating = $10,
    feedback = $11,
    resolved_at = $12,
    closed_at = $13,
    updated_at = NOW()
WHERE id = $1
RETURNING ` + concernColumns

	row := tx.QueryRow(ctx, query,
		uuidParam(concern.ID),
		uuidPtrParam(concern.AssignedTo),
		concern.Title,
		concern.Description,
		string(concern.Category),
		string(concern.Severity),
		string(concern.Status),
		string(concern.Campus),
		attachments,
		intPtrParam(concern.Rating),
		concern.Feedback,
		timePtrParam(concern.ResolvedAt),
		timePtrParam(concern.ClosedAt),
	)

	updated, err := scanConcern(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrConcernNotFound
		}
		return nil, fmt.Errorf("update concern: %w", err)
	}

	if err := insertTimeline(ctx, tx, concern.ID, concern.Timeline); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit update concern: %w", err)
	}

	updated.Timeline = concern.Timeline
	return updated, nil
}

func (r *ConcernRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM concerns WHERE id = $1`

	tag, err := GetDBTX(ctx, r.pool).Exec(ctx, query, uuidParam(id))
	if err != nil {
		return fmt.Errorf("delete concern: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrConcernNotFound
	}
	return nil
}

func (r *ConcernRepository) List(ctx context.Context, filter ports.ConcernFilter) ([]*domain.Concern, error) {
	var (
		conditions []string
		args       []interface{}
	)

	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conditions = append(conditions, "status = $"+strconv.Itoa(len(args)))
	}
	if filter.Category != nil {
		args = append(args, string(*filter.Category))
		conditions = append(conditions, "category = $"+strconv.Itoa(len(args)))
	}
	if filter.Severity != nil {
		args = append(args, string(*filter.Severity))
		conditions = append(conditions, "severity = $"+strconv.Itoa(len(args)))
	}
	if filter.Campus != nil {
		args = append(args, string(*filter.Campus))
		conditions = append(conditions, "campus = $"+strconv.Itoa(len(args)))
	}
	if filter.StudentID != nil {
		args = append(args, uuidParam(*filter.StudentID))
		conditions = append(conditions, "student_id = $"+strconv.Itoa(len(args)))
	}
	if filter.AssignedTo != nil {
		args = append(args, uuidParam(*filter.AssignedTo))
		conditions = append(conditions, "assigned_to = $"+strconv.Itoa(len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		idx := strconv.Itoa(len(args))
		conditions = append(conditions, "(title ILIKE $"+idx+" OR ticket_code ILIKE $"+idx+")")
	}

	query := `SELECT ` + concernColumns + ` FROM concerns`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += " OFFSET $" + strconv.Itoa(len(args))
	}

	db := GetDBTX(ctx, r.pool)
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list concerns: %w", err)
	}
	defer rows.Close()

	concerns := make([]*domain.Concern, 0)
	for rows.Next() {
		concern, err := scanConcern(rows)
		if err != nil {
			return nil, fmt.Errorf("scan concern: %w", err)
		}
		concerns = append(concerns, concern)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for _, concern := range concerns {
		timeline, err := loadTimeline(ctx, db, concern.ID)
		if err != nil {
			return nil, err
		}
		concern.Timeline = timeline
	}

	return concerns, nil
}

func (r *ConcernRepository) Stats(ctx context.Context) (*domain.ConcernStats, error) {
	db := GetDBTX(ctx, r.pool)
	stats := &domain.ConcernStats{}

	const countsQuery = `
SELECT COUNT(*),
       COUNT(*) FILTER (WHERE status IN ('Submitted', 'In Review', 'Assigned', 'In Progress')),
       COUNT(*) FILTER (WHERE status = 'Resolved'),
       COUNT(*) FILTER (WHERE status = 'Closed')
FROM concerns
`
	row := db.QueryRow(ctx, countsQuery)
	if err := row.Scan(&stats.Total, &stats.Pending, &stats.Resolved, &stats.Closed); err != nil {
		return nil, fmt.Errorf("concern counts: %w", err)
	}

	categories, err := fetchDistribution(ctx, db, "category")
	if err != nil {
		return nil, err
	}
	stats.CategoryDistribution = categories

	severities, err := fetchDistribution(ctx, db, "severity")
	if err != nil {
		return nil, err
	}
	stats.SeverityDistribution = severities

	return stats, nil
}

// fetchDistribution aggregates concern counts grouped by the given column.
// The column name is restricted to the two known aggregation columns.
func fetchDistribution(ctx context.Context, db DBTX, column string) ([]domain.StatusBucketCount, error) {
	if column != "category" && column != "severity" {
		return nil, fmt.Errorf("unsupported distribution column %q", column)
	}

	query := `SELECT ` + column + `, COUNT(*) FROM concerns GROUP BY ` + column + ` ORDER BY COUNT(*) DESC, ` + column

	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s distribution: %w", column, err)
	}
	defer rows.Close()

	buckets := make([]domain.StatusBucketCount, 0)
	for rows.Next() {
		var bucket domain.StatusBucketCount
		if err := rows.Scan(&bucket.Label, &bucket.Count); err != nil {
			return nil, err
		}
		buckets = append(buckets, bucket)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return buckets, nil
}

// insertTimeline appends the concern's timeline entries that are not yet
// persisted. Entries are identified by their timestamp, so re-saving a
// concern skips what is already stored without discarding entries written
// concurrently by another transaction. The position is derived from the
// stored rows; the concern row lock held by the surrounding transaction
// keeps it collision-free.
func insertTimeline(ctx context.Context, db DBTX, concernID uuid.UUID, timeline []domain.TimelineEntry) error {
	const query = `
INSERT INTO concern_timeline (concern_id, position, status, updated_by, comment, created_at)
SELECT $1, COALESCE(MAX(position) + 1, 0), $2, $3, $4, $5
FROM concern_timeline
WHERE concern_id = $1
ON CONFLICT (concern_id, created_at) DO NOTHING
`

	for _, entry := range timeline {
		_, err := db.Exec(ctx, query,
			uuidParam(concernID),
			string(entry.Status),
			uuidPtrParam(entry.UpdatedBy),
			entry.Comment,
			entry.Timestamp,
		)
		if err != nil {
			return fmt.Errorf("insert timeline entry: %w", err)
		}
	}

	return nil
}

func loadTimeline(ctx context.Context, db DBTX, concernID uuid.UUID) ([]domain.TimelineEntry, error) {
	const query = `
SELECT status, updated_by, comment, created_at
FROM concern_timeline
WHERE concern_id = $1
ORDER BY position, created_at
`

	rows, err := db.Query(ctx, query, uuidParam(concernID))
	if err != nil {
		return nil, fmt.Errorf("load timeline: %w", err)
	}
	defer rows.Close()

	timeline := make([]domain.TimelineEntry, 0)
	for rows.Next() {
		var (
			entry     domain.TimelineEntry
			status    string
			updatedBy pgtype.UUID
		)
		if err := rows.Scan(&status, &updatedBy, &entry.Comment, &entry.Timestamp); err != nil {
			return nil, err
		}
		entry.Status = domain.ConcernStatus(status)
		entry.UpdatedBy = uuidPtr(updatedBy)
		timeline = append(timeline, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return timeline, nil
}
