package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"buzztub/internal/apperr"
	"buzztub/internal/models"
	"buzztub/internal/repository"
)

const auditHistorySize = 50

// ModerationService holds the admin-only mutations. Callers are expected to
// have passed the admin gate already.
type ModerationService struct {
	users    UserStore
	sessions SessionStore
	videos   VideoStore
	comments CommentStore
	messages ChatStore
	reports  ReportStore
	requests PremiumRequestStore
	files    FileStore
	audit    AuditLog
	log      zerolog.Logger
}

type ModerationDeps struct {
	Users    UserStore
	Sessions SessionStore
	Videos   VideoStore
	Comments CommentStore
	Messages ChatStore
	Reports  ReportStore
	Requests PremiumRequestStore
	Files    FileStore
	Audit    AuditLog
}

func NewModerationService(deps ModerationDeps, log zerolog.Logger) *ModerationService {
	return &ModerationService{
		users:    deps.Users,
		sessions: deps.Sessions,
		videos:   deps.Videos,
		comments: deps.Comments,
		messages: deps.Messages,
		reports:  deps.Reports,
		requests: deps.Requests,
		files:    deps.Files,
		audit:    deps.Audit,
		log:      log,
	}
}

type Dashboard struct {
	Videos          []models.Video          `json:"videos"`
	Comments        []models.Comment        `json:"comments"`
	Users           []models.User           `json:"users"`
	Reports         []models.Report         `json:"reports"`
	PremiumRequests []models.PremiumRequest `json:"premiumRequests"`
	Audit           []repository.AuditEntry `json:"audit"`
}

func (s *ModerationService) Dashboard(ctx context.Context) (Dashboard, error) {
	var (
		d   Dashboard
		err error
	)
	if d.Videos, err = s.videos.List(ctx); err != nil {
		return Dashboard{}, fmt.Errorf("list videos: %w", err)
	}
	if d.Comments, err = s.comments.List(ctx); err != nil {
		return Dashboard{}, fmt.Errorf("list comments: %w", err)
	}
	if d.Users, err = s.users.List(ctx); err != nil {
		return Dashboard{}, fmt.Errorf("list users: %w", err)
	}
	if d.Reports, err = s.reports.List(ctx); err != nil {
		return Dashboard{}, fmt.Errorf("list reports: %w", err)
	}
	if d.PremiumRequests, err = s.requests.ListPending(ctx); err != nil {
		return Dashboard{}, fmt.Errorf("list premium requests: %w", err)
	}
	if d.Audit, err = s.audit.Recent(ctx, auditHistorySize); err != nil {
		s.log.Warn().Err(err).Msg("load audit trail failed")
		d.Audit = nil
	}
	return d, nil
}

// DeleteVideo removes the video with its comments, likes and the
// subscriptions made from its page, then drops the stored file.
func (s *ModerationService) DeleteVideo(ctx context.Context, actor models.Session, id int64) error {
	video, err := s.videos.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrVideoNotFound) {
			return apperr.NotFound("Video")
		}
		return fmt.Errorf("delete video: %w", err)
	}

	if video.StoragePath != "" {
		if err := s.files.Remove(ctx, video.StoragePath); err != nil {
			s.log.Warn().Err(err).Str("key", video.StoragePath).Msg("remove video file failed")
		}
	}
	s.record(ctx, actor, "delete_video", strconv.FormatInt(id, 10))
	return nil
}

func (s *ModerationService) DeleteComment(ctx context.Context, actor models.Session, id int64) error {
	if err := s.comments.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return apperr.NotFound("Comment")
		}
		return fmt.Errorf("delete comment: %w", err)
	}
	s.record(ctx, actor, "delete_comment", strconv.FormatInt(id, 10))
	return nil
}

func (s *ModerationService) DeleteMessage(ctx context.Context, actor models.Session, id int64) error {
	if err := s.messages.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return apperr.NotFound("Message")
		}
		return fmt.Errorf("delete message: %w", err)
	}
	s.record(ctx, actor, "delete_message", strconv.FormatInt(id, 10))
	return nil
}

// GrantPremium upgrades the stored role of a user. Sessions that are already
// open keep the role they were created with.
func (s *ModerationService) GrantPremium(ctx context.Context, actor models.Session, userID int64) (models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, apperr.NotFound("User")
		}
		return models.User{}, err
	}

	if !user.Role.IsPremium() {
		if err := s.users.UpdateRole(ctx, user.ID, models.RolePremium); err != nil {
			return models.User{}, fmt.Errorf("update role: %w", err)
		}
		user.Role = models.RolePremium
	}
	if err := s.requests.Resolve(ctx, user.Username, models.PremiumRequestGranted); err != nil {
		return models.User{}, fmt.Errorf("resolve premium requests: %w", err)
	}

	s.record(ctx, actor, "grant_premium", user.Username)
	return user, nil
}

func (s *ModerationService) RejectPremium(ctx context.Context, actor models.Session, requestID int64) error {
	if err := s.requests.Reject(ctx, requestID); err != nil {
		if errors.Is(err, repository.ErrPremiumRequestNotFound) {
			return apperr.NotFound("Pending premium request")
		}
		return fmt.Errorf("reject premium request: %w", err)
	}
	s.record(ctx, actor, "reject_premium", strconv.FormatInt(requestID, 10))
	return nil
}

type KickResult struct {
	Username string
	// Self is set when the admin removed their own account; the caller's
	// session is gone and its cookie must be cleared.
	Self bool
}

func (s *ModerationService) KickUser(ctx context.Context, actor models.Session, userID int64) (KickResult, error) {
	username, err := s.users.Delete(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return KickResult{}, apperr.NotFound("User")
		}
		return KickResult{}, fmt.Errorf("delete user: %w", err)
	}

	revoked, err := s.sessions.DeleteByUser(ctx, username)
	if err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("revoke sessions failed")
	}

	result := KickResult{Username: username, Self: username == actor.Username}
	if result.Self {
		if err := s.sessions.Delete(ctx, actor); err != nil {
			s.log.Warn().Err(err).Str("username", username).Msg("clear own session failed")
		}
	}

	s.log.Info().Str("username", username).Int("sessions_revoked", revoked).Msg("user kicked")
	s.record(ctx, actor, "kick_user", username)
	return result, nil
}

func (s *ModerationService) MarkReportReviewed(ctx context.Context, actor models.Session, id int64) error {
	if err := s.reports.MarkReviewed(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrReportNotFound):
			return apperr.NotFound("Report")
		case errors.Is(err, repository.ErrReportAlreadyReviewed):
			return apperr.Conflict("That report has already been reviewed.")
		}
		return fmt.Errorf("mark report reviewed: %w", err)
	}
	s.record(ctx, actor, "mark_report_reviewed", strconv.FormatInt(id, 10))
	return nil
}

func (s *ModerationService) record(ctx context.Context, actor models.Session, action string, target string) {
	err := s.audit.Append(ctx, repository.AuditEntry{Actor: actor.Username, Action: action, Target: target})
	if err != nil {
		s.log.Warn().Err(err).Str("action", action).Msg("audit append failed")
	}
}
