package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"buzztub/internal/database"
	"buzztub/internal/models"
)

var ErrCommentNotFound = errors.New("comment not found")

type CommentRepository struct {
	db database.DB
}

func NewCommentRepository(db database.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, comment models.Comment) (models.Comment, error) {
	const query = `
		INSERT INTO comments (video_id, author, text, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, video_id, author, text, created_at
	`
	var created models.Comment
	err := r.db.QueryRow(ctx, query, comment.VideoID, comment.Author, comment.Text).Scan(
		&created.ID,
		&created.VideoID,
		&created.Author,
		&created.Text,
		&created.CreatedAt,
	)
	return created, err
}

func (r *CommentRepository) ListByVideo(ctx context.Context, videoID int64) ([]models.Comment, error) {
	const query = `
		SELECT id, video_id, author, text, created_at
		FROM comments WHERE video_id = $1
		ORDER BY created_at, id
	`
	return r.list(ctx, query, videoID)
}

func (r *CommentRepository) List(ctx context.Context) ([]models.Comment, error) {
	const query = `
		SELECT id, video_id, author, text, created_at
		FROM comments ORDER BY id DESC
	`
	return r.list(ctx, query)
}

func (r *CommentRepository) list(ctx context.Context, query string, args ...any) ([]models.Comment, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Comment, error) {
		var c models.Comment
		err := row.Scan(&c.ID, &c.VideoID, &c.Author, &c.Text, &c.CreatedAt)
		return c, err
	})
}

func (r *CommentRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrCommentNotFound
	}
	return nil
}
