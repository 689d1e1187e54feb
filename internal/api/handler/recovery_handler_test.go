package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gamehub/internal/app/service"
	"gamehub/internal/common"
	"gamehub/internal/domain/model"
	"gamehub/internal/domain/repository"
	"gamehub/internal/platform/config"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubUserRepo implements just the lookups the recovery flows touch; the
// embedded interface panics on anything else, which would flag an unexpected
// store call.
type stubUserRepo struct {
	repository.UserRepository
	user *model.User
}

func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	if s.user != nil && s.user.Email == email {
		cp := *s.user
		return &cp, nil
	}
	return nil, common.ErrNotFound
}

func (s *stubUserRepo) FindByResetToken(_ context.Context, token string) (*model.User, error) {
	if s.user != nil && s.user.PasswordResetToken != nil && *s.user.PasswordResetToken == token &&
		s.user.PasswordResetExpires.After(time.Now()) {
		cp := *s.user
		return &cp, nil
	}
	return nil, common.ErrNotFound
}

func (s *stubUserRepo) SetPasswordResetToken(_ context.Context, id, token string, expires time.Time) error {
	s.user.PasswordResetToken = &token
	s.user.PasswordResetExpires = &expires
	return nil
}

func (s *stubUserRepo) ConsumePasswordReset(_ context.Context, token, newHashedPassword string) error {
	if s.user != nil && s.user.PasswordResetToken != nil && *s.user.PasswordResetToken == token &&
		s.user.PasswordResetExpires.After(time.Now()) {
		s.user.HashedPassword = newHashedPassword
		s.user.PasswordResetToken = nil
		s.user.PasswordResetExpires = nil
		return nil
	}
	return common.ErrInvalidToken
}

func (s *stubUserRepo) ConsumeEmailVerification(_ context.Context, token string) error {
	if s.user != nil && s.user.EmailVerificationToken != nil && *s.user.EmailVerificationToken == token &&
		s.user.EmailVerificationExpire.After(time.Now()) {
		s.user.IsVerified = true
		s.user.EmailVerificationToken = nil
		s.user.EmailVerificationExpire = nil
		return nil
	}
	return common.ErrInvalidToken
}

type stubDispatcher struct{ sent int }

func (d *stubDispatcher) Send(to, subject, htmlBody string) error {
	d.sent++
	return nil
}

func newRecoveryTestServer(repo *stubUserRepo) http.Handler {
	cfg := &config.Config{SiteURL: "https://hub.example.com"}
	svc := service.NewRecoveryService(repo, &stubDispatcher{}, cfg)
	r := chi.NewRouter()
	r.Route("/auth", NewRecoveryHandler(svc).RegisterRoutes)
	return r
}

func TestForgotPasswordResponsesAreIndistinguishable(t *testing.T) {
	token := "aaaa"
	expires := time.Now().Add(time.Hour)
	repo := &stubUserRepo{user: &model.User{
		ID: "u-1", Username: "alice", Email: "a@b.com",
		PasswordResetToken: &token, PasswordResetExpires: &expires,
	}}
	srv := newRecoveryTestServer(repo)

	do := func(email string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/auth/forgot-password",
			strings.NewReader(`{"email":"`+email+`"}`))
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, r)
		return w
	}

	hit := do("a@b.com")
	miss := do("nobody@b.com")

	require.Equal(t, http.StatusOK, hit.Code)
	require.Equal(t, http.StatusOK, miss.Code)
	assert.Equal(t, hit.Body.String(), miss.Body.String(), "bodies must be byte-identical")
}

func TestValidateResetTokenEndpoint(t *testing.T) {
	token := "live-token"
	expires := time.Now().Add(time.Hour)
	repo := &stubUserRepo{user: &model.User{
		ID: "u-1", Username: "alice", Email: "a@b.com",
		PasswordResetToken: &token, PasswordResetExpires: &expires,
	}}
	srv := newRecoveryTestServer(repo)

	r := httptest.NewRequest(http.MethodGet, "/auth/validate-reset-token?token=live-token", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"valid":true}`, w.Body.String())

	r = httptest.NewRequest(http.MethodGet, "/auth/validate-reset-token?token=stale", nil)
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResetPasswordEndpointConsumesToken(t *testing.T) {
	token := "live-token"
	expires := time.Now().Add(time.Hour)
	repo := &stubUserRepo{user: &model.User{
		ID: "u-1", Username: "alice", Email: "a@b.com",
		PasswordResetToken: &token, PasswordResetExpires: &expires,
	}}
	srv := newRecoveryTestServer(repo)

	body := `{"token":"live-token","password":"brand-new-pass"}`
	r := httptest.NewRequest(http.MethodPost, "/auth/reset-password", strings.NewReader(body))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)

	// Replay fails now that the stored token is cleared.
	r = httptest.NewRequest(http.MethodPost, "/auth/reset-password", strings.NewReader(body))
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifyEmailEndpointAcceptsGETLink(t *testing.T) {
	token := "verify-token"
	expires := time.Now().Add(24 * time.Hour)
	repo := &stubUserRepo{user: &model.User{
		ID: "u-1", Username: "alice", Email: "a@b.com",
		EmailVerificationToken: &token, EmailVerificationExpire: &expires,
	}}
	srv := newRecoveryTestServer(repo)

	r := httptest.NewRequest(http.MethodGet, "/auth/verify-email?token=verify-token", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, repo.user.IsVerified)

	// Second submission fails like an unknown token.
	r = httptest.NewRequest(http.MethodGet, "/auth/verify-email?token=verify-token", nil)
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
