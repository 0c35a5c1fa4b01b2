package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"buzztub/internal/database"
	"buzztub/internal/models"
)

var ErrVideoNotFound = errors.New("video not found")

type VideoRepository struct {
	db database.DB
}

func NewVideoRepository(db database.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

const videoColumns = `id, title, uploader, storage_path, likes, created_at`

func scanVideo(row pgx.Row) (models.Video, error) {
	var video models.Video
	if err := row.Scan(
		&video.ID,
		&video.Title,
		&video.Uploader,
		&video.StoragePath,
		&video.Likes,
		&video.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrVideoNotFound
		}
		return models.Video{}, err
	}
	return video, nil
}

func (r *VideoRepository) Create(ctx context.Context, video models.Video) (models.Video, error) {
	const query = `
		INSERT INTO videos (title, uploader, storage_path, likes, created_at)
		VALUES ($1, $2, $3, 0, NOW())
		RETURNING ` + videoColumns
	return scanVideo(r.db.QueryRow(ctx, query, video.Title, video.Uploader, video.StoragePath))
}

func (r *VideoRepository) GetByID(ctx context.Context, id int64) (models.Video, error) {
	const query = `SELECT ` + videoColumns + ` FROM videos WHERE id = $1`
	return scanVideo(r.db.QueryRow(ctx, query, id))
}

func (r *VideoRepository) List(ctx context.Context) ([]models.Video, error) {
	return r.list(ctx, `SELECT `+videoColumns+` FROM videos ORDER BY created_at DESC, id DESC`)
}

func (r *VideoRepository) ListByUploader(ctx context.Context, uploader string) ([]models.Video, error) {
	return r.list(ctx, `SELECT `+videoColumns+` FROM videos WHERE uploader = $1 ORDER BY created_at DESC, id DESC`, uploader)
}

// Top returns the most liked videos, ties broken by id.
func (r *VideoRepository) Top(ctx context.Context, limit int) ([]models.Video, error) {
	return r.list(ctx, `SELECT `+videoColumns+` FROM videos ORDER BY likes DESC, id ASC LIMIT $1`, limit)
}

func (r *VideoRepository) list(ctx context.Context, query string, args ...any) ([]models.Video, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, video)
	}
	return videos, rows.Err()
}

// ToggleLike flips the (video, user) like pair and moves the counter in the
// same transaction. A concurrent insert of the same pair leaves the counter
// untouched and reports the video as liked.
func (r *VideoRepository) ToggleLike(ctx context.Context, videoID int64, username string) (liked bool, likes int, err error) {
	err = database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		removed, err := tx.Exec(ctx, `DELETE FROM likes WHERE video_id = $1 AND username = $2`, videoID, username)
		if err != nil {
			return fmt.Errorf("delete like: %w", err)
		}
		if removed.RowsAffected() == 1 {
			liked = false
			return scanLikes(tx.QueryRow(ctx, `UPDATE videos SET likes = likes - 1 WHERE id = $1 RETURNING likes`, videoID), &likes)
		}

		added, err := tx.Exec(ctx, `INSERT INTO likes (video_id, username) VALUES ($1, $2) ON CONFLICT DO NOTHING`, videoID, username)
		if err != nil {
			return fmt.Errorf("insert like: %w", err)
		}
		liked = true
		if added.RowsAffected() == 1 {
			return scanLikes(tx.QueryRow(ctx, `UPDATE videos SET likes = likes + 1 WHERE id = $1 RETURNING likes`, videoID), &likes)
		}
		return scanLikes(tx.QueryRow(ctx, `SELECT likes FROM videos WHERE id = $1`, videoID), &likes)
	})
	return liked, likes, err
}

func scanLikes(row pgx.Row, likes *int) error {
	if err := row.Scan(likes); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrVideoNotFound
		}
		return fmt.Errorf("update counter: %w", err)
	}
	return nil
}

func (r *VideoRepository) IsLiked(ctx context.Context, videoID int64, username string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM likes WHERE video_id = $1 AND username = $2)`
	var liked bool
	err := r.db.QueryRow(ctx, query, videoID, username).Scan(&liked)
	return liked, err
}

// Delete removes the video and everything that references it: comments,
// likes and subscriptions made from its page. Either all rows go or none.
// The removed video is returned so its stored file can be cleaned up.
func (r *VideoRepository) Delete(ctx context.Context, id int64) (models.Video, error) {
	var video models.Video
	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		dependents := []struct {
			name  string
			query string
		}{
			{"comments", `DELETE FROM comments WHERE video_id = $1`},
			{"likes", `DELETE FROM likes WHERE video_id = $1`},
			{"follows", `DELETE FROM follows WHERE source_video_id = $1`},
		}
		for _, dep := range dependents {
			if _, err := tx.Exec(ctx, dep.query, id); err != nil {
				return fmt.Errorf("delete %s: %w", dep.name, err)
			}
		}

		deleted, err := scanVideo(tx.QueryRow(ctx, `DELETE FROM videos WHERE id = $1 RETURNING `+videoColumns, id))
		if err != nil {
			return err
		}
		video = deleted
		return nil
	})
	return video, err
}
