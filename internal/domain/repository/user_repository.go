package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gamehub/internal/common"
	"gamehub/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error) // caller lowercases
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	FindByResetToken(ctx context.Context, token string) (*model.User, error)
	SetPasswordResetToken(ctx context.Context, id, token string, expires time.Time) error
	SetEmailVerificationToken(ctx context.Context, id, token string, expires time.Time) error

	// ConsumePasswordReset replaces the password hash and clears the reset
	// token pair in one conditional statement. Returns ErrInvalidToken when
	// no live token matched, which is what a second concurrent consumer sees.
	ConsumePasswordReset(ctx context.Context, token, newHashedPassword string) error
	// ConsumeEmailVerification marks the account verified and clears the
	// verification token pair, with the same at-most-once guarantee.
	ConsumeEmailVerification(ctx context.Context, token string) error

	ClearExpiredTokens(ctx context.Context) (int64, error)
	SetRoles(ctx context.Context, id string, isAdmin, isOwner bool) error
	Delete(ctx context.Context, id string) error
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

const userColumns = `id, username, email, hashed_password, is_admin, is_owner, is_verified,
	password_reset_token, password_reset_expires, email_verification_token, email_verification_expires,
	created_at, updated_at`

func scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	var hashed sql.NullString
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &hashed, &user.IsAdmin, &user.IsOwner, &user.IsVerified,
		&user.PasswordResetToken, &user.PasswordResetExpires,
		&user.EmailVerificationToken, &user.EmailVerificationExpire,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	user.HashedPassword = hashed.String
	return user, nil
}

func (r *pgUserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (id, username, email, hashed_password, is_admin, is_owner, is_verified)
	          VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Username, user.Email, user.HashedPassword, user.IsAdmin, user.IsOwner, user.IsVerified)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("user with given username or email already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgUserRepository.Create: %w", err)
	}
	return nil
}

func (r *pgUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("pgUserRepository.FindByID: %w", err)
	}
	return user, err
}

func (r *pgUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("pgUserRepository.FindByEmail: %w", err)
	}
	return user, err
}

func (r *pgUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, username))
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("pgUserRepository.FindByUsername: %w", err)
	}
	return user, err
}

func (r *pgUserRepository) FindByResetToken(ctx context.Context, token string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
	          WHERE password_reset_token = $1 AND password_reset_expires > now()`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, token))
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("pgUserRepository.FindByResetToken: %w", err)
	}
	return user, err
}

func (r *pgUserRepository) SetPasswordResetToken(ctx context.Context, id, token string, expires time.Time) error {
	query := `UPDATE users SET password_reset_token = $2, password_reset_expires = $3, updated_at = now()
	          WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, token, expires); err != nil {
		return fmt.Errorf("pgUserRepository.SetPasswordResetToken: %w", err)
	}
	return nil
}

func (r *pgUserRepository) SetEmailVerificationToken(ctx context.Context, id, token string, expires time.Time) error {
	query := `UPDATE users SET email_verification_token = $2, email_verification_expires = $3, updated_at = now()
	          WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, token, expires); err != nil {
		return fmt.Errorf("pgUserRepository.SetEmailVerificationToken: %w", err)
	}
	return nil
}

func (r *pgUserRepository) ConsumePasswordReset(ctx context.Context, token, newHashedPassword string) error {
	// Single conditional write: two racing requests with the same token can
	// never both match, so the token is consumed at most once.
	query := `UPDATE users
	          SET hashed_password = $2, password_reset_token = NULL, password_reset_expires = NULL, updated_at = now()
	          WHERE password_reset_token = $1 AND password_reset_expires > now()`
	res, err := r.db.ExecContext(ctx, query, token, newHashedPassword)
	if err != nil {
		return fmt.Errorf("pgUserRepository.ConsumePasswordReset: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgUserRepository.ConsumePasswordReset: %w", err)
	}
	if affected == 0 {
		return common.ErrInvalidToken
	}
	return nil
}

func (r *pgUserRepository) ConsumeEmailVerification(ctx context.Context, token string) error {
	query := `UPDATE users
	          SET is_verified = TRUE, email_verification_token = NULL, email_verification_expires = NULL, updated_at = now()
	          WHERE email_verification_token = $1 AND email_verification_expires > now()`
	res, err := r.db.ExecContext(ctx, query, token)
	if err != nil {
		return fmt.Errorf("pgUserRepository.ConsumeEmailVerification: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgUserRepository.ConsumeEmailVerification: %w", err)
	}
	if affected == 0 {
		return common.ErrInvalidToken
	}
	return nil
}

func (r *pgUserRepository) ClearExpiredTokens(ctx context.Context) (int64, error) {
	query := `UPDATE users SET
	            password_reset_token = CASE WHEN password_reset_expires <= now() THEN NULL ELSE password_reset_token END,
	            password_reset_expires = CASE WHEN password_reset_expires <= now() THEN NULL ELSE password_reset_expires END,
	            email_verification_token = CASE WHEN email_verification_expires <= now() THEN NULL ELSE email_verification_token END,
	            email_verification_expires = CASE WHEN email_verification_expires <= now() THEN NULL ELSE email_verification_expires END
	          WHERE password_reset_expires <= now() OR email_verification_expires <= now()`
	res, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("pgUserRepository.ClearExpiredTokens: %w", err)
	}
	return res.RowsAffected()
}

func (r *pgUserRepository) SetRoles(ctx context.Context, id string, isAdmin, isOwner bool) error {
	query := `UPDATE users SET is_admin = $2, is_owner = $3, updated_at = now() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, isAdmin, isOwner)
	if err != nil {
		return fmt.Errorf("pgUserRepository.SetRoles: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgUserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgUserRepository.Delete: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return common.ErrNotFound
	}
	return nil
}
