package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"buzztub/internal/database"
	"buzztub/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

type ChatRepository struct {
	db database.DB
}

func NewChatRepository(db database.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) Create(ctx context.Context, msg models.ChatMessage) (models.ChatMessage, error) {
	const query = `
		INSERT INTO messages (author, text, attachment_path, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, author, text, attachment_path, created_at
	`
	var created models.ChatMessage
	err := r.db.QueryRow(ctx, query, msg.Author, msg.Text, msg.AttachmentPath).Scan(
		&created.ID,
		&created.Author,
		&created.Text,
		&created.AttachmentPath,
		&created.CreatedAt,
	)
	return created, err
}

// Latest returns the newest messages first.
func (r *ChatRepository) Latest(ctx context.Context, limit int) ([]models.ChatMessage, error) {
	const query = `
		SELECT id, author, text, attachment_path, created_at
		FROM messages ORDER BY id DESC LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ChatMessage, error) {
		var m models.ChatMessage
		err := row.Scan(&m.ID, &m.Author, &m.Text, &m.AttachmentPath, &m.CreatedAt)
		return m, err
	})
}

func (r *ChatRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrMessageNotFound
	}
	return nil
}
