package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/concernrise/concern-backend/internal/core/domain"
	apperrors "github.com/concernrise/concern-backend/internal/core/errors"
	"github.com/concernrise/concern-backend/internal/core/ports"
)

// uniqueViolationCode is the Postgres error code for unique constraint violations.
const uniqueViolationCode = "23505"

type UserRepository struct {
	pool *pgxpool.Pool
}

var _ ports.UserRepository = (*UserRepository)(nil)

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, full_name, email, password_hash, role, campus, batch, phone, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user      domain.User
		id        pgtype.UUID
		role      string
		campus    string
		updatedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&id,
		&user.FullName,
		&user.Email,
		&user.PasswordHash,
		&role,
		&campus,
		&user.Batch,
		&user.Phone,
		&user.IsActive,
		&user.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.ID = uuid.UUID(id.Bytes)
	user.Role = domain.Role(role)
	user.Campus = domain.Campus(campus)
	user.UpdatedAt = timePtr(updatedAt)
	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	const query = `
INSERT INTO users (id, full_name, email, password_hash, role, campus, batch, phone, is_active, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + userColumns

	row := GetDBTX(ctx, r.pool).QueryRow(ctx, query,
		uuidParam(user.ID),
		user.FullName,
		user.Email,
		user.PasswordHash,
		string(user.Role),
		string(user.Campus),
		user.Batch,
		user.Phone,
		user.IsActive,
		user.CreatedAt,
	)

	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, apperrors.ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(GetDBTX(ctx, r.pool).QueryRow(ctx, query, uuidParam(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(GetDBTX(ctx, r.pool).QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	const query = `
UPDATE users
SET full_name = $2,
    email = $3,
    password_hash = $4,
    role = $5,
    campus = $6,
    batch = $7,
    phone = $8,
    is_active = $9,
    updated_at = NOW()
WHERE id = $1
RETURNING ` + userColumns

	row := GetDBTX(ctx, r.pool).QueryRow(ctx, query,
		uuidParam(user.ID),
		user.FullName,
		user.Email,
		user.PasswordHash,
		string(user.Role),
		string(user.Campus),
		user.Batch,
		user.Phone,
		user.IsActive,
	)

	updated, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return updated, nil
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM users WHERE id = $1`

	tag, err := GetDBTX(ctx, r.pool).Exec(ctx, query, uuidParam(id))
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, filter ports.UserFilter) ([]*domain.User, error) {
	var (
		conditions []string
		args       []interface{}
	)

	if filter.Role != nil {
		args = append(args, string(*filter.Role))
		conditions = append(conditions, "role = $"+strconv.Itoa(len(args)))
	}
	if filter.Campus != nil {
		args = append(args, string(*filter.Campus))
		conditions = append(conditions, "campus = $"+strconv.Itoa(len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		idx := strconv.Itoa(len(args))
		conditions = append(conditions, "(full_name ILIKE $"+idx+" OR email ILIKE $"+idx+")")
	}

	query := `SELECT ` + userColumns + ` FROM users`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := GetDBTX(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}
