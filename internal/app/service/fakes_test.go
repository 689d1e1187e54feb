package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"gamehub/internal/common"
	"gamehub/internal/domain/model"
)

// memUserRepo is an in-memory UserRepository. Consumption runs under the
// same mutex as a single conditional write, matching the store-level
// at-most-once guarantee of the real repository.
type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*model.User{}}
}

func (r *memUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return common.ErrConflict
		}
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, common.ErrNotFound
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *memUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *memUserRepo) FindByResetToken(_ context.Context, token string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.PasswordResetToken != nil && *u.PasswordResetToken == token &&
			u.PasswordResetExpires != nil && u.PasswordResetExpires.After(time.Now()) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *memUserRepo) SetPasswordResetToken(_ context.Context, id, token string, expires time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.PasswordResetToken = &token
	u.PasswordResetExpires = &expires
	return nil
}

func (r *memUserRepo) SetEmailVerificationToken(_ context.Context, id, token string, expires time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.EmailVerificationToken = &token
	u.EmailVerificationExpire = &expires
	return nil
}

func (r *memUserRepo) ConsumePasswordReset(_ context.Context, token, newHashedPassword string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.PasswordResetToken != nil && *u.PasswordResetToken == token &&
			u.PasswordResetExpires != nil && u.PasswordResetExpires.After(time.Now()) {
			u.HashedPassword = newHashedPassword
			u.PasswordResetToken = nil
			u.PasswordResetExpires = nil
			return nil
		}
	}
	return common.ErrInvalidToken
}

func (r *memUserRepo) ConsumeEmailVerification(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.EmailVerificationToken != nil && *u.EmailVerificationToken == token &&
			u.EmailVerificationExpire != nil && u.EmailVerificationExpire.After(time.Now()) {
			u.IsVerified = true
			u.EmailVerificationToken = nil
			u.EmailVerificationExpire = nil
			return nil
		}
	}
	return common.ErrInvalidToken
}

func (r *memUserRepo) ClearExpiredTokens(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var cleared int64
	now := time.Now()
	for _, u := range r.users {
		touched := false
		if u.PasswordResetExpires != nil && !u.PasswordResetExpires.After(now) {
			u.PasswordResetToken = nil
			u.PasswordResetExpires = nil
			touched = true
		}
		if u.EmailVerificationExpire != nil && !u.EmailVerificationExpire.After(now) {
			u.EmailVerificationToken = nil
			u.EmailVerificationExpire = nil
			touched = true
		}
		if touched {
			cleared++
		}
	}
	return cleared, nil
}

func (r *memUserRepo) SetRoles(_ context.Context, id string, isAdmin, isOwner bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.IsAdmin = isAdmin
	u.IsOwner = isOwner
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

// fakeDispatcher records outbound mail and can be told to fail.
type fakeDispatcher struct {
	mu   sync.Mutex
	sent []fakeMail
	fail bool
}

type fakeMail struct {
	To      string
	Subject string
	Body    string
}

var errSMTPDown = errors.New("smtp connection refused")

func (d *fakeDispatcher) Send(to, subject, htmlBody string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail {
		return errSMTPDown
	}
	d.sent = append(d.sent, fakeMail{To: to, Subject: subject, Body: htmlBody})
	return nil
}
