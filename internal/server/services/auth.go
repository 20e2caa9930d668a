// Package services contains the server's business logic: account
// registration and login, one-time codes, and media management.
package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/cryptox"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/authkeeper/internal/server/sessions"
)

const (
	MsgUserExists          = "User with this email already exists"
	MsgUserNotFound        = "User not found"
	MsgEmailNotVerified    = "Email not verified"
	MsgEmailVerified       = "Email is already verified"
	MsgTwoFactorRequired   = "Please complete 2FA verification to access this resource."
	CodeTwoFactorRequired  = "TWO_FACTOR_REQUIRED"
	msgUnauthorizedDefault = "Unauthorized"
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Image    string
	Phone    string
}

// LoginResult is a freshly authenticated user plus the bearer token bound
// to its new session.
type LoginResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	sessions    *sessions.Manager
	tokens      *auth.TokenIssuer
	otp         *OTPService
	log         logging.Logger
}

func NewAuthService(db *sql.DB, rm repomanager.RepositoryManager, sm *sessions.Manager, tokens *auth.TokenIssuer,
	otp *OTPService, log logging.Logger) *AuthService {
	return &AuthService{db: db, repomanager: rm, sessions: sm, tokens: tokens, otp: otp, log: log}
}

// Register creates an unverified user and emails a verification code. A
// failure to deliver the code does not undo the registration.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	if _, err := repo.GetByEmail(ctx, in.Email); err == nil {
		return nil, common.BadRequest(MsgUserExists)
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user, err := repo.Create(ctx, &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: hash,
		Image:    in.Image,
		Phone:    in.Phone,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.BadRequest(MsgUserExists)
		}
		return nil, err
	}

	if err := s.otp.SendOTP(ctx, user.Email, models.TokenTypeEmailVerification); err != nil {
		s.log.Error(ctx, "verification code not sent", "email", user.Email, "error", err)
	}

	return user.WithoutPassword(), nil
}

// Login authenticates by password and opens a session.
func (s *AuthService) Login(ctx context.Context, email, password string, info sessions.DeviceInfo) (*LoginResult, error) {
	user, err := auth.NewPasswordAuthenticator(s.repomanager.Users(s.db)).Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, user, info)
}

// LoginWithProfile maps an OAuth profile to a user and opens a session.
func (s *AuthService) LoginWithProfile(ctx context.Context, p auth.OAuthProfile, info sessions.DeviceInfo) (*LoginResult, error) {
	user, err := auth.NewOAuthResolver(s.db, s.repomanager).FindOrCreateUser(ctx, p)
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, user, info)
}

func (s *AuthService) startSession(ctx context.Context, user *models.User, info sessions.DeviceInfo) (*LoginResult, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	token, err = s.sessions.CreateSession(ctx, user.ID, expiresAt, info, token)
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "session created", "user_id", user.ID, "device", info.DeviceName, "ip", info.IPAddress)
	return &LoginResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// Authenticate resolves a bearer token to its user and live session.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, *models.Session, error) {
	if token == "" {
		return nil, nil, common.Unauthorized(msgUnauthorizedDefault)
	}

	id, err := s.tokens.Parse(token)
	if err != nil {
		return nil, nil, common.Unauthorized(msgUnauthorizedDefault).Wrap(err)
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.Unauthorized(MsgUserNotFound)
		}
		return nil, nil, err
	}
	if !user.EmailVerified {
		return nil, nil, common.Unauthorized(MsgEmailNotVerified)
	}

	session, err := s.sessions.ValidateSession(ctx, user.ID, sessions.ByToken(token))
	if err != nil {
		return nil, nil, err
	}
	if user.Is2FAEnabled && !session.TwoFactorVerified {
		return nil, nil, common.Unauthorized(MsgTwoFactorRequired).WithCode(CodeTwoFactorRequired)
	}

	return user.WithoutPassword(), session, nil
}

func (s *AuthService) Logout(ctx context.Context, userID int64, token string) error {
	_, err := s.sessions.RevokeSession(ctx, userID, sessions.ByToken(token))
	return err
}

func (s *AuthService) Sessions(ctx context.Context, userID int64) ([]*models.Session, error) {
	return s.sessions.ListSessions(ctx, userID)
}

func (s *AuthService) RevokeAllSessions(ctx context.Context, userID int64) (int64, error) {
	return s.sessions.RevokeAllUserSessions(ctx, userID)
}

// RequestEmailVerification emails a new verification code to an unverified
// user.
func (s *AuthService) RequestEmailVerification(ctx context.Context, email string) error {
	user, err := s.userByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return common.BadRequest(MsgEmailVerified)
	}
	return s.otp.SendOTP(ctx, email, models.TokenTypeEmailVerification)
}

// VerifyEmail checks the code and marks the email verified.
func (s *AuthService) VerifyEmail(ctx context.Context, email, code string) error {
	user, err := s.userByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return common.BadRequest(MsgEmailVerified)
	}
	if err := s.otp.VerifyOTP(ctx, email, code, models.TokenTypeEmailVerification); err != nil {
		return err
	}
	if err := s.repomanager.Users(s.db).MarkEmailVerified(ctx, user.ID); err != nil {
		return err
	}
	return s.otp.DeleteOTP(ctx, email, models.TokenTypeEmailVerification)
}

func (s *AuthService) userByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.BadRequest(auth.MsgUserNotFound)
		}
		return nil, err
	}
	return user, nil
}
