package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"concierge-llm/internal/domain"
)

// MessageRepository es el contrato del message store: la durabilidad de la
// conversación vive acá, no en la tabla de sesiones en memoria.
type MessageRepository interface {
	Save(ctx context.Context, message domain.Message) error
	GetByThread(ctx context.Context, threadID string, limit int) ([]domain.Message, error)
	CountByThread(ctx context.Context, threadID string) (int, error)
}

type PgMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPgMessageRepository(pool *pgxpool.Pool) *PgMessageRepository {
	return &PgMessageRepository{pool: pool}
}

func (r *PgMessageRepository) Save(ctx context.Context, message domain.Message) error {
	const query = `
		INSERT INTO messages (id, session_id, parent_id, content, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	var sessionID interface{}
	if message.SessionID != "" {
		sessionID = message.SessionID
	}
	var parentID interface{}
	if message.ParentID != "" {
		parentID = message.ParentID
	}

	_, err := r.pool.Exec(ctx, query,
		message.ID,
		sessionID,
		parentID,
		message.Content,
		message.Role,
		message.CreatedAt,
	)
	return err
}

func (r *PgMessageRepository) GetByThread(ctx context.Context, threadID string, limit int) ([]domain.Message, error) {
	const query = `
		SELECT id, session_id, parent_id, content, role, created_at
		FROM messages
		WHERE session_id = $1
		ORDER BY created_at ASC
		LIMIT $2
	`
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, query, threadID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		var sessionID, parentID *string

		err = rows.Scan(
			&msg.ID,
			&sessionID,
			&parentID,
			&msg.Content,
			&msg.Role,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if sessionID != nil {
			msg.SessionID = *sessionID
		}
		if parentID != nil {
			msg.ParentID = *parentID
		}
		messages = append(messages, msg)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}

func (r *PgMessageRepository) CountByThread(ctx context.Context, threadID string) (int, error) {
	const query = `SELECT COUNT(*) FROM messages WHERE session_id = $1`

	var count int
	if err := r.pool.QueryRow(ctx, query, threadID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
