package service

import (
	"context"
	"time"

	"buzztub/internal/models"
	"buzztub/internal/repository"
	"buzztub/internal/storage"
)

type UserStore interface {
	Create(ctx context.Context, user models.User) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id int64) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateRole(ctx context.Context, id int64, role models.Role) error
	UpdateEmail(ctx context.Context, id int64, email *string) error
	UpdatePassword(ctx context.Context, id int64, hash []byte) error
	Delete(ctx context.Context, id int64) (string, error)
}

type SessionStore interface {
	Create(ctx context.Context, session models.Session, ttl time.Duration) error
	GetByID(ctx context.Context, id string) (models.Session, error)
	Delete(ctx context.Context, session models.Session) error
	DeleteByUser(ctx context.Context, username string) (int, error)
}

type VideoStore interface {
	Create(ctx context.Context, video models.Video) (models.Video, error)
	GetByID(ctx context.Context, id int64) (models.Video, error)
	List(ctx context.Context) ([]models.Video, error)
	ListByUploader(ctx context.Context, uploader string) ([]models.Video, error)
	Top(ctx context.Context, limit int) ([]models.Video, error)
	ToggleLike(ctx context.Context, videoID int64, username string) (bool, int, error)
	IsLiked(ctx context.Context, videoID int64, username string) (bool, error)
	Delete(ctx context.Context, id int64) (models.Video, error)
}

type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) (models.Comment, error)
	ListByVideo(ctx context.Context, videoID int64) ([]models.Comment, error)
	List(ctx context.Context) ([]models.Comment, error)
	Delete(ctx context.Context, id int64) error
}

type FollowStore interface {
	Toggle(ctx context.Context, follow models.Follow) (bool, error)
	IsFollowing(ctx context.Context, follower, followee string) (bool, error)
	ListByFollower(ctx context.Context, follower string) ([]models.Follow, error)
	CountFollowers(ctx context.Context, followee string) (int, error)
}

type ChatStore interface {
	Create(ctx context.Context, msg models.ChatMessage) (models.ChatMessage, error)
	Latest(ctx context.Context, limit int) ([]models.ChatMessage, error)
	Delete(ctx context.Context, id int64) error
}

type ReportStore interface {
	Create(ctx context.Context, report models.Report) (models.Report, error)
	List(ctx context.Context) ([]models.Report, error)
	MarkReviewed(ctx context.Context, id int64) error
}

type PremiumRequestStore interface {
	Create(ctx context.Context, username string) (models.PremiumRequest, error)
	LatestForUser(ctx context.Context, username string) (models.PremiumRequest, error)
	ListPending(ctx context.Context) ([]models.PremiumRequest, error)
	Resolve(ctx context.Context, username string, status models.PremiumRequestStatus) error
	Reject(ctx context.Context, id int64) error
}

type AuditLog interface {
	Append(ctx context.Context, entry repository.AuditEntry) error
	Recent(ctx context.Context, count int64) ([]repository.AuditEntry, error)
}

type FileStore interface {
	Save(ctx context.Context, cat storage.Category, up storage.Upload) (string, error)
	Remove(ctx context.Context, key string) error
}
