package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/cryptox"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/mailer"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
)

const (
	otpLength = 6

	MsgInvalidOTP = "Invalid OTP"
	MsgOTPExpired = "OTP expired"
)

// OTPService issues, verifies and deletes one-time codes stored as bcrypt
// hashes, one per (email, token type).
type OTPService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	mailer      mailer.Sender
	log         logging.Logger
	ttl         time.Duration
	showOTP     bool
	now         func() time.Time
}

func NewOTPService(db *sql.DB, rm repomanager.RepositoryManager, m mailer.Sender, log logging.Logger, ttl time.Duration, showOTP bool) *OTPService {
	return &OTPService{db: db, repomanager: rm, mailer: m, log: log, ttl: ttl, showOTP: showOTP, now: time.Now}
}

// SaveOTP generates and stores a fresh code for email. A new code can be
// requested at most once per ttl.
func (s *OTPService) SaveOTP(ctx context.Context, email string, tokenType models.TokenType, ttl time.Duration) (string, error) {
	repo := s.repomanager.Verifications(s.db)

	existing, err := repo.Find(ctx, email, tokenType)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return "", err
	}
	if existing != nil {
		limit := int(ttl / time.Minute)
		elapsed := int(s.now().Sub(existing.UpdatedAt) / time.Minute)
		if elapsed < limit {
			return "", common.TooManyRequests(fmt.Sprintf(
				"You can only request OTP per %d minute(s). Please wait for %d minute(s)", limit, limit-elapsed))
		}
	}

	code, err := cryptox.GenerateOTP(otpLength)
	if err != nil {
		return "", err
	}
	hash, err := cryptox.HashPassword(code)
	if err != nil {
		return "", err
	}

	if err := repo.Upsert(ctx, &models.Verification{
		Identifier: email,
		TokenType:  tokenType,
		Value:      hash,
		ExpiresAt:  s.now().Add(ttl),
	}); err != nil {
		return "", err
	}
	return code, nil
}

// SendOTP stores a new code and emails it.
func (s *OTPService) SendOTP(ctx context.Context, email string, tokenType models.TokenType) error {
	code, err := s.SaveOTP(ctx, email, tokenType, s.ttl)
	if err != nil {
		return err
	}
	if s.showOTP {
		s.log.Info(ctx, "otp issued", "email", email, "type", string(tokenType), "code", code)
	}
	if err := s.mailer.Send(ctx, mailer.OTPEmail(email, code, string(tokenType), s.ttl)); err != nil {
		return fmt.Errorf("send otp: %w", err)
	}
	return nil
}

// VerifyOTP checks code against the stored hash. An expired record is
// removed.
func (s *OTPService) VerifyOTP(ctx context.Context, email, code string, tokenType models.TokenType) error {
	repo := s.repomanager.Verifications(s.db)

	v, err := repo.Find(ctx, email, tokenType)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.BadRequest(MsgInvalidOTP)
		}
		return err
	}
	if !cryptox.ComparePassword(v.Value, code) {
		return common.BadRequest(MsgInvalidOTP)
	}
	if v.ExpiresAt.Before(s.now()) {
		if err := repo.Delete(ctx, email, tokenType); err != nil {
			return err
		}
		return common.RequestTimeout(MsgOTPExpired)
	}
	return nil
}

func (s *OTPService) DeleteOTP(ctx context.Context, email string, tokenType models.TokenType) error {
	return s.repomanager.Verifications(s.db).Delete(ctx, email, tokenType)
}
