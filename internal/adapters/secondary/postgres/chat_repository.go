package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/concernrise/concern-backend/internal/core/domain"
	"github.com/concernrise/concern-backend/internal/core/ports"
)

type ChatRepository struct {
	pool *pgxpool.Pool
}

var _ ports.ChatRepository = (*ChatRepository)(nil)

func NewChatRepository(pool *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{pool: pool}
}

const chatMessageColumns = `m.id, m.concern_id, m.sender_id, m.message, m.attachments, m.is_read, m.read_at, m.created_at,
u.full_name, u.role`

func scanChatMessage(row pgx.Row) (*domain.ChatMessage, error) {
	var (
		message     domain.ChatMessage
		id          pgtype.UUID
		concernID   pgtype.UUID
		senderID    pgtype.UUID
		attachments []byte
		readAt      pgtype.Timestamptz
		senderName  string
		senderRole  string
	)

	err := row.Scan(
		&id,
		&concernID,
		&senderID,
		&message.Message,
		&attachments,
		&message.IsRead,
		&readAt,
		&message.CreatedAt,
		&senderName,
		&senderRole,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(attachments, &message.Attachments); err != nil {
		return nil, fmt.Errorf("decode attachments: %w", err)
	}

	message.ID = uuid.UUID(id.Bytes)
	message.ConcernID = uuid.UUID(concernID.Bytes)
	message.SenderID = uuid.UUID(senderID.Bytes)
	message.ReadAt = timePtr(readAt)
	message.Sender = &domain.PublicProfile{
		ID:       message.SenderID,
		FullName: senderName,
		Role:     domain.Role(senderRole),
	}
	return &message, nil
}

func (r *ChatRepository) Create(ctx context.Context, message *domain.ChatMessage) (*domain.ChatMessage, error) {
	attachments, err := json.Marshal(message.Attachments)
	if err != nil {
		return nil, fmt.Errorf("encode attachments: %w", err)
	}

	const query = `
WITH inserted AS (
    INSERT INTO chat_messages (id, concern_id, sender_id, message, attachments, created_at)
    VALUES ($1, $2, $3, $4, $5, $6)
    RETURNING id, concern_id, sender_id, message, attachments, is_read, read_at, created_at
)
SELECT ` + chatMessageColumns + `
FROM inserted m
JOIN users u ON u.id = m.sender_id
`

	row := GetDBTX(ctx, r.pool).QueryRow(ctx, query,
		uuidParam(message.ID),
		uuidParam(message.ConcernID),
		uuidParam(message.SenderID),
		message.Message,
		attachments,
		message.CreatedAt,
	)

	created, err := scanChatMessage(row)
	if err != nil {
		return nil, fmt.Errorf("create chat message: %w", err)
	}
	return created, nil
}

func (r *ChatRepository) ListByConcernID(ctx context.Context, concernID uuid.UUID) ([]*domain.ChatMessage, error) {
	const query = `
SELECT ` + chatMessageColumns + `
FROM chat_messages m
JOIN users u ON u.id = m.sender_id
WHERE m.concern_id = $1
ORDER BY m.created_at ASC
`

	rows, err := GetDBTX(ctx, r.pool).Query(ctx, query, uuidParam(concernID))
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*domain.ChatMessage, 0)
	for rows.Next() {
		message, err := scanChatMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}

// MarkAllRead flags every unread message on the concern that the reader did
// not send. It reports how many rows were updated.
func (r *ChatRepository) MarkAllRead(ctx context.Context, concernID, readerID uuid.UUID) (int64, error) {
	const query = `
UPDATE chat_messages
SET is_read = TRUE, read_at = NOW()
WHERE concern_id = $1 AND sender_id != $2 AND is_read = FALSE
`

	tag, err := GetDBTX(ctx, r.pool).Exec(ctx, query, uuidParam(concernID), uuidParam(readerID))
	if err != nil {
		return 0, fmt.Errorf("mark messages read: %w", err)
	}
	return tag.RowsAffected(), nil
}
