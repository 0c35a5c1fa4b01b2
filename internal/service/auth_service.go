package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"buzztub/internal/apperr"
	"buzztub/internal/config"
	"buzztub/internal/ids"
	"buzztub/internal/models"
	"buzztub/internal/repository"
	"buzztub/internal/security"
)

var (
	ErrInvalidCredentials = apperr.Auth("Invalid credentials.")
	ErrSessionExpired     = apperr.Authorization("Your free trial session has expired. Upgrade to premium to keep watching.")
	ErrNotLoggedIn        = apperr.Authorization("You must log in or sign up to access this page.")
)

type AuthService struct {
	users    UserStore
	sessions SessionStore
	cfg      *config.AppConfig
	log      zerolog.Logger
	hash     func(string) ([]byte, error)
	now      func() time.Time
}

func NewAuthService(users UserStore, sessions SessionStore, cfg *config.AppConfig, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		cfg:      cfg,
		log:      log,
		hash:     security.HashPassword,
		now:      time.Now,
	}
}

type SignupInput struct {
	Username string
	Password string
	Email    string
}

func (s *AuthService) Signup(ctx context.Context, input SignupInput) (models.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return models.User{}, apperr.Validation("Username and password are required.")
	}
	// Login treats any identifier with "@" as an email address.
	if strings.Contains(username, "@") {
		return models.User{}, apperr.Validation("Usernames cannot contain \"@\".")
	}

	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return models.User{}, apperr.Conflict("That username is already taken.")
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return models.User{}, fmt.Errorf("lookup username: %w", err)
	}

	email := normalizeEmail(input.Email)
	if email != nil {
		if _, err := s.users.FindByEmail(ctx, *email); err == nil {
			return models.User{}, apperr.Conflict("That email is already registered.")
		} else if !errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, fmt.Errorf("lookup email: %w", err)
		}
	}

	passwordHash, err := s.hash(input.Password)
	if err != nil {
		return models.User{}, err
	}

	user, err := s.users.Create(ctx, models.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         models.RoleFree,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return models.User{}, apperr.Conflict("That username or email is already taken.")
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Str("username", user.Username).Msg("user signed up")
	return user, nil
}

type LoginResult struct {
	Session models.Session
	Token   string
}

// Login accepts a username or an email address as identifier. The session
// records the user's role as it is right now.
func (s *AuthService) Login(ctx context.Context, identifier string, password string) (LoginResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}

	var (
		user models.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.users.FindByEmail(ctx, strings.ToLower(identifier))
	} else {
		user, err = s.users.FindByUsername(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return LoginResult{}, ErrInvalidCredentials
	}

	session := models.Session{
		ID:        ids.New(),
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		LoginTime: s.now().UTC(),
	}

	token, err := security.GenerateSessionToken(s.cfg.Security.JWTSecret, session.ID, session.Username, s.cfg.Security.SessionTTL)
	if err != nil {
		return LoginResult{}, err
	}

	if err := s.sessions.Create(ctx, session, s.cfg.Security.SessionTTL); err != nil {
		return LoginResult{}, fmt.Errorf("store session: %w", err)
	}

	s.log.Info().Str("username", user.Username).Str("role", string(user.Role)).Msg("user logged in")
	return LoginResult{Session: session, Token: token}, nil
}

func (s *AuthService) Logout(ctx context.Context, session models.Session) error {
	return s.sessions.Delete(ctx, session)
}

// Authenticate resolves a cookie token to its live session.
func (s *AuthService) Authenticate(ctx context.Context, token string) (models.Session, error) {
	if token == "" {
		return models.Session{}, ErrNotLoggedIn
	}
	claims, err := security.ParseSessionToken(token, s.cfg.Security.JWTSecret)
	if err != nil {
		return models.Session{}, ErrNotLoggedIn
	}

	session, err := s.sessions.GetByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return models.Session{}, ErrNotLoggedIn
		}
		return models.Session{}, err
	}
	if session.Username != claims.Username {
		return models.Session{}, ErrNotLoggedIn
	}

	// A session outliving its account, or naming a newer account that reused
	// the username, is not honoured.
	user, err := s.users.FindByUsername(ctx, session.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.Session{}, ErrNotLoggedIn
		}
		return models.Session{}, err
	}
	if user.ID != session.UserID {
		return models.Session{}, ErrNotLoggedIn
	}
	return session, nil
}

// TrialExpired reports whether a free session has outlived the trial window.
// Premium and admin sessions never expire this way.
func TrialExpired(session models.Session, window time.Duration, now time.Time) bool {
	if session.IsPremium() {
		return false
	}
	return now.Sub(session.LoginTime) > window
}

// TrialRemaining is the time left in a free session's trial window, zero
// once it has run out.
func TrialRemaining(session models.Session, window time.Duration, now time.Time) time.Duration {
	if session.IsPremium() {
		return 0
	}
	left := window - now.Sub(session.LoginTime)
	if left < 0 {
		return 0
	}
	return left
}

// Expire destroys a session whose trial ran out.
func (s *AuthService) Expire(ctx context.Context, session models.Session) error {
	s.log.Info().Str("username", session.Username).Msg("free trial session expired")
	return s.sessions.Delete(ctx, session)
}

// Account returns the stored user behind a session.
func (s *AuthService) Account(ctx context.Context, session models.Session) (models.User, error) {
	user, err := s.users.FindByUsername(ctx, session.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, apperr.NotFound("User")
		}
		return models.User{}, err
	}
	return user, nil
}

type SettingsInput struct {
	Email           *string
	CurrentPassword string
	NewPassword     string
}

func (s *AuthService) UpdateSettings(ctx context.Context, session models.Session, input SettingsInput) error {
	user, err := s.users.FindByUsername(ctx, session.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperr.NotFound("User")
		}
		return err
	}

	// A password change is checked before anything is written so a wrong
	// current password leaves the account unchanged.
	var newHash []byte
	if input.NewPassword != "" {
		ok, err := security.VerifyPassword(input.CurrentPassword, user.PasswordHash)
		if err != nil || !ok {
			return apperr.Auth("Current password is incorrect.")
		}
		if newHash, err = s.hash(input.NewPassword); err != nil {
			return err
		}
	}

	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if err := s.users.UpdateEmail(ctx, user.ID, email); err != nil {
			if errors.Is(err, repository.ErrDuplicateUser) {
				return apperr.Conflict("That email is already registered.")
			}
			return fmt.Errorf("update email: %w", err)
		}
	}
	if newHash != nil {
		if err := s.users.UpdatePassword(ctx, user.ID, newHash); err != nil {
			return fmt.Errorf("update password: %w", err)
		}
	}
	return nil
}

// EnsureAdmin creates the starter admin account when the username is free.
// An existing account of that name is left untouched.
func (s *AuthService) EnsureAdmin(ctx context.Context, username string, password string) error {
	if username == "" || password == "" {
		return nil
	}
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}

	hash, err := s.hash(password)
	if err != nil {
		return err
	}
	if _, err := s.users.Create(ctx, models.User{Username: username, PasswordHash: hash, Role: models.RoleAdmin}); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil
		}
		return err
	}
	s.log.Info().Str("username", username).Msg("starter admin account created")
	return nil
}

func normalizeEmail(email string) *string {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}
	return &email
}
