package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"buzztub/internal/database"
	"buzztub/internal/models"
)

var (
	ErrPremiumRequestNotFound = errors.New("premium request not found")
	ErrPremiumRequestPending  = errors.New("premium request already pending")
)

type PremiumRequestRepository struct {
	db database.DB
}

func NewPremiumRequestRepository(db database.DB) *PremiumRequestRepository {
	return &PremiumRequestRepository{db: db}
}

// Create opens a pending request. A partial unique index allows at most one
// pending request per user.
func (r *PremiumRequestRepository) Create(ctx context.Context, username string) (models.PremiumRequest, error) {
	const query = `
		INSERT INTO premium_requests (username, status, created_at)
		VALUES ($1, 'pending', NOW())
		RETURNING id, username, status, created_at
	`
	var req models.PremiumRequest
	err := r.db.QueryRow(ctx, query, username).Scan(&req.ID, &req.Username, &req.Status, &req.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return models.PremiumRequest{}, ErrPremiumRequestPending
		}
		return models.PremiumRequest{}, err
	}
	return req, nil
}

func (r *PremiumRequestRepository) LatestForUser(ctx context.Context, username string) (models.PremiumRequest, error) {
	const query = `
		SELECT id, username, status, created_at
		FROM premium_requests WHERE username = $1
		ORDER BY id DESC LIMIT 1
	`
	var req models.PremiumRequest
	err := r.db.QueryRow(ctx, query, username).Scan(&req.ID, &req.Username, &req.Status, &req.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.PremiumRequest{}, ErrPremiumRequestNotFound
		}
		return models.PremiumRequest{}, err
	}
	return req, nil
}

func (r *PremiumRequestRepository) ListPending(ctx context.Context) ([]models.PremiumRequest, error) {
	const query = `
		SELECT id, username, status, created_at
		FROM premium_requests WHERE status = 'pending'
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.PremiumRequest, error) {
		var req models.PremiumRequest
		err := row.Scan(&req.ID, &req.Username, &req.Status, &req.CreatedAt)
		return req, err
	})
}

// Resolve closes every pending request of the user with the given status.
func (r *PremiumRequestRepository) Resolve(ctx context.Context, username string, status models.PremiumRequestStatus) error {
	_, err := r.db.Exec(ctx,
		`UPDATE premium_requests SET status = $2 WHERE username = $1 AND status = 'pending'`,
		username, status)
	return err
}

// Reject closes a single pending request.
func (r *PremiumRequestRepository) Reject(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx,
		`UPDATE premium_requests SET status = 'rejected' WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrPremiumRequestNotFound
	}
	return nil
}
