package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gamehub/internal/common"
	"gamehub/internal/common/security"
	"gamehub/internal/domain/repository"
	"gamehub/internal/platform/config"
	"gamehub/internal/platform/mailer"
)

const (
	passwordResetExpiry     = time.Hour
	emailVerificationExpiry = 24 * time.Hour
	minPasswordLength       = 6

	// GenericRecoveryMessage is returned whether or not the account exists,
	// so the endpoint cannot be used to enumerate registered emails.
	GenericRecoveryMessage = "If an account with that email exists, an email has been sent."
)

// RecoveryService runs the forgot-password and email-verification
// lifecycles: single-use tokens issued, mailed out, and consumed exactly
// once.
type RecoveryService struct {
	userRepo   repository.UserRepository
	dispatcher mailer.Dispatcher
	cfg        *config.Config
}

func NewRecoveryService(userRepo repository.UserRepository, dispatcher mailer.Dispatcher, cfg *config.Config) *RecoveryService {
	return &RecoveryService{userRepo: userRepo, dispatcher: dispatcher, cfg: cfg}
}

func (s *RecoveryService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", common.ErrValidation
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return GenericRecoveryMessage, nil
		}
		return "", fmt.Errorf("failed to look up account: %w", err)
	}

	token, err := security.NewRecoveryToken()
	if err != nil {
		return "", err
	}
	expires := time.Now().Add(passwordResetExpiry)
	if err := s.userRepo.SetPasswordResetToken(ctx, user.ID, token, expires); err != nil {
		return "", err
	}

	link := s.cfg.SiteURL + "/reset-password?token=" + token
	body := "<p>Hi " + user.Username + ",</p>" +
		"<p>A password reset was requested for your account. The link below is valid for 1 hour:</p>" +
		"<p><a href=\"" + link + "\">" + link + "</a></p>" +
		"<p>If you did not request this, you can ignore this email.</p>"
	if err := s.dispatcher.Send(user.Email, "Reset your password", body); err != nil {
		// Dispatch failure is an operational fault, not user-identifying
		// information; it is surfaced, never folded into the generic reply.
		return "", fmt.Errorf("%w: %v", common.ErrDispatch, err)
	}

	return GenericRecoveryMessage, nil
}

// ValidateResetToken is a read-only check with no consumption side effect.
func (s *RecoveryService) ValidateResetToken(ctx context.Context, token string) error {
	if token == "" {
		return common.ErrValidation
	}
	_, err := s.userRepo.FindByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrInvalidToken
		}
		return err
	}
	return nil
}

func (s *RecoveryService) CompletePasswordReset(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return common.ErrValidation
	}
	if len(newPassword) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters: %w", minPasswordLength, common.ErrValidation)
	}

	hashed, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	// The repository consumes the token with a single conditional write, so
	// a concurrent duplicate sees ErrInvalidToken rather than a second reset.
	return s.userRepo.ConsumePasswordReset(ctx, token, hashed)
}

func (s *RecoveryService) RequestEmailVerification(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", common.ErrValidation
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return GenericRecoveryMessage, nil
		}
		return "", fmt.Errorf("failed to look up account: %w", err)
	}
	if user.IsVerified {
		// An already-verified account is not secret; unlike the miss case
		// this gets an explicit error.
		return "", fmt.Errorf("email is already verified: %w", common.ErrBadRequest)
	}

	token, err := security.NewRecoveryToken()
	if err != nil {
		return "", err
	}
	expires := time.Now().Add(emailVerificationExpiry)
	if err := s.userRepo.SetEmailVerificationToken(ctx, user.ID, token, expires); err != nil {
		return "", err
	}

	link := s.cfg.SiteURL + "/verify-email?token=" + token
	body := "<p>Hi " + user.Username + ",</p>" +
		"<p>Confirm your email address by opening the link below. It is valid for 24 hours:</p>" +
		"<p><a href=\"" + link + "\">" + link + "</a></p>"
	if err := s.dispatcher.Send(user.Email, "Verify your email", body); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrDispatch, err)
	}

	return GenericRecoveryMessage, nil
}

// CompleteEmailVerification consumes the token and marks the account
// verified. A consumed or unknown token fails identically, so nothing is
// leaked about whether the account was already verified through this path.
func (s *RecoveryService) CompleteEmailVerification(ctx context.Context, token string) error {
	if token == "" {
		return common.ErrValidation
	}
	return s.userRepo.ConsumeEmailVerification(ctx, token)
}
