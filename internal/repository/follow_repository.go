package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"buzztub/internal/database"
	"buzztub/internal/models"
)

type FollowRepository struct {
	db database.DB
}

func NewFollowRepository(db database.DB) *FollowRepository {
	return &FollowRepository{db: db}
}

// Toggle removes the (follower, followee) pair if present, otherwise inserts
// it. Losing an insert race to an identical request still reports following.
func (r *FollowRepository) Toggle(ctx context.Context, follow models.Follow) (following bool, err error) {
	removed, err := r.db.Exec(ctx,
		`DELETE FROM follows WHERE follower = $1 AND followee = $2`,
		follow.Follower, follow.Followee)
	if err != nil {
		return false, fmt.Errorf("delete follow: %w", err)
	}
	if removed.RowsAffected() > 0 {
		return false, nil
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO follows (follower, followee, source_video_id, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (follower, followee) DO NOTHING`,
		follow.Follower, follow.Followee, follow.SourceVideoID)
	if err != nil {
		return false, fmt.Errorf("insert follow: %w", err)
	}
	return true, nil
}

func (r *FollowRepository) IsFollowing(ctx context.Context, follower, followee string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM follows WHERE follower = $1 AND followee = $2)`
	var following bool
	err := r.db.QueryRow(ctx, query, follower, followee).Scan(&following)
	return following, err
}

func (r *FollowRepository) ListByFollower(ctx context.Context, follower string) ([]models.Follow, error) {
	const query = `
		SELECT follower, followee, source_video_id, created_at
		FROM follows WHERE follower = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, follower)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Follow, error) {
		var f models.Follow
		err := row.Scan(&f.Follower, &f.Followee, &f.SourceVideoID, &f.CreatedAt)
		return f, err
	})
}

func (r *FollowRepository) CountFollowers(ctx context.Context, followee string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM follows WHERE followee = $1`, followee).Scan(&count)
	return count, err
}
