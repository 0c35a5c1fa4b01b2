package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"buzztub/internal/database"
	"buzztub/internal/models"
)

var (
	ErrReportNotFound        = errors.New("report not found")
	ErrReportAlreadyReviewed = errors.New("report already reviewed")
)

type ReportRepository struct {
	db database.DB
}

func NewReportRepository(db database.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Create(ctx context.Context, report models.Report) (models.Report, error) {
	const query = `
		INSERT INTO reports (reporter, reported_user, reason, status, created_at)
		VALUES ($1, $2, $3, 'pending', NOW())
		RETURNING id, reporter, reported_user, reason, status, created_at
	`
	var created models.Report
	err := r.db.QueryRow(ctx, query, report.Reporter, report.ReportedUser, report.Reason).Scan(
		&created.ID,
		&created.Reporter,
		&created.ReportedUser,
		&created.Reason,
		&created.Status,
		&created.CreatedAt,
	)
	return created, err
}

func (r *ReportRepository) List(ctx context.Context) ([]models.Report, error) {
	const query = `
		SELECT id, reporter, reported_user, reason, status, created_at
		FROM reports ORDER BY status = 'reviewed', id DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Report, error) {
		var rep models.Report
		err := row.Scan(&rep.ID, &rep.Reporter, &rep.ReportedUser, &rep.Reason, &rep.Status, &rep.CreatedAt)
		return rep, err
	})
}

// MarkReviewed moves a pending report to reviewed. Reviewed is terminal.
func (r *ReportRepository) MarkReviewed(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `UPDATE reports SET status = 'reviewed' WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 1 {
		return nil
	}

	var status models.ReportStatus
	if err := r.db.QueryRow(ctx, `SELECT status FROM reports WHERE id = $1`, id).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrReportNotFound
		}
		return err
	}
	return ErrReportAlreadyReviewed
}
