package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"strings"
	"time"

	"taskverse/internal/models"
	"taskverse/internal/repositories"
	"taskverse/internal/utils"
)

const resetTokenTTL = time.Hour

var ErrResetTokenInvalid = errors.New("invalid or expired reset token")

// ResetMailer delivers reset tokens.
type ResetMailer interface {
	SendPasswordResetEmail(email, token string) error
}

type PasswordResetService interface {
	// RequestReset never reveals whether the address exists.
	RequestReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type passwordResetService struct {
	users  repositories.UserRepository
	repo   repositories.PasswordResetRepository
	mailer ResetMailer
	auth   AuthService
	now    func() time.Time
}

// NewPasswordResetService creates a PasswordResetService. mailer may be nil,
// in which case tokens are issued but not delivered.
func NewPasswordResetService(users repositories.UserRepository, repo repositories.PasswordResetRepository, mailer ResetMailer, auth AuthService) PasswordResetService {
	return &passwordResetService{
		users:  users,
		repo:   repo,
		mailer: mailer,
		auth:   auth,
		now:    time.Now,
	}
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *passwordResetService) RequestReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return storeErr(err)
	}
	if user == nil || user.Provider != models.ProviderPassword {
		// don't leak existence
		log.Printf("[password-reset] request for %q ignored", email)
		return nil
	}

	token, err := utils.NewStateToken(32)
	if err != nil {
		return err
	}
	pr := &models.PasswordReset{
		UserID:    user.ID,
		TokenHash: hashResetToken(token),
		ExpiresAt: s.now().Add(resetTokenTTL),
	}
	if err := s.repo.Create(ctx, pr); err != nil {
		return storeErr(err)
	}

	if s.mailer == nil {
		log.Printf("[password-reset][warn] no mailer configured, reset for user_id=%s not delivered", user.ID)
		return nil
	}
	if err := s.mailer.SendPasswordResetEmail(user.Email, token); err != nil {
		log.Printf("[password-reset] failed to send email to %s: %v", user.Email, err)
	}
	return nil
}

func (s *passwordResetService) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrResetTokenInvalid
	}
	pr, err := s.repo.GetByTokenHash(ctx, hashResetToken(token))
	if err != nil {
		return storeErr(err)
	}
	now := s.now()
	if pr == nil || pr.UsedAt != nil || now.After(pr.ExpiresAt) {
		return ErrResetTokenInvalid
	}

	hash, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	ok, err := s.repo.MarkUsed(ctx, pr.ID, now)
	if err != nil {
		return storeErr(err)
	}
	if !ok {
		return ErrResetTokenInvalid
	}
	if err := s.users.UpdatePassword(ctx, pr.UserID, hash); err != nil {
		return storeErr(err)
	}
	log.Printf("[password-reset][ok] user_id=%s", pr.UserID)
	return nil
}
