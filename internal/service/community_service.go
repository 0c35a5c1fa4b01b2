package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"buzztub/internal/apperr"
	"buzztub/internal/models"
	"buzztub/internal/repository"
)

// CommunityService handles member-initiated requests that end up in front of
// an admin: user reports and premium upgrade requests.
type CommunityService struct {
	users    UserStore
	reports  ReportStore
	requests PremiumRequestStore
}

func NewCommunityService(users UserStore, reports ReportStore, requests PremiumRequestStore) *CommunityService {
	return &CommunityService{users: users, reports: reports, requests: requests}
}

func (s *CommunityService) Report(ctx context.Context, session models.Session, reportedUser string, reason string) (models.Report, error) {
	reportedUser = strings.TrimSpace(reportedUser)
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return models.Report{}, apperr.Validation("Please give a reason for the report.")
	}
	if reportedUser == session.Username {
		return models.Report{}, apperr.Validation("You cannot report yourself.")
	}
	if _, err := s.users.FindByUsername(ctx, reportedUser); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.Report{}, apperr.NotFound("User")
		}
		return models.Report{}, err
	}

	report, err := s.reports.Create(ctx, models.Report{
		Reporter:     session.Username,
		ReportedUser: reportedUser,
		Reason:       reason,
	})
	if err != nil {
		return models.Report{}, fmt.Errorf("create report: %w", err)
	}
	return report, nil
}

type PremiumStatus struct {
	// Role is the stored role, which may be ahead of the session snapshot.
	Role    models.Role            `json:"role"`
	Request *models.PremiumRequest `json:"request,omitempty"`
}

func (s *CommunityService) PremiumStatus(ctx context.Context, session models.Session) (PremiumStatus, error) {
	user, err := s.users.FindByUsername(ctx, session.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return PremiumStatus{}, apperr.NotFound("User")
		}
		return PremiumStatus{}, err
	}

	status := PremiumStatus{Role: user.Role}
	req, err := s.requests.LatestForUser(ctx, user.Username)
	switch {
	case err == nil:
		status.Request = &req
	case !errors.Is(err, repository.ErrPremiumRequestNotFound):
		return PremiumStatus{}, err
	}
	return status, nil
}

func (s *CommunityService) RequestPremium(ctx context.Context, session models.Session) (models.PremiumRequest, error) {
	user, err := s.users.FindByUsername(ctx, session.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.PremiumRequest{}, apperr.NotFound("User")
		}
		return models.PremiumRequest{}, err
	}
	if user.Role.IsPremium() {
		return models.PremiumRequest{}, apperr.Conflict("Your account already has premium.")
	}

	req, err := s.requests.Create(ctx, user.Username)
	if err != nil {
		if errors.Is(err, repository.ErrPremiumRequestPending) {
			return models.PremiumRequest{}, apperr.Conflict("You already have a pending premium request.")
		}
		return models.PremiumRequest{}, fmt.Errorf("create premium request: %w", err)
	}
	return req, nil
}
