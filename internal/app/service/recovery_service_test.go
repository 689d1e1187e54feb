package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"gamehub/internal/common"
	"gamehub/internal/common/security"
	"gamehub/internal/domain/model"
	"gamehub/internal/platform/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecoveryFixture(t *testing.T) (*RecoveryService, *memUserRepo, *fakeDispatcher) {
	t.Helper()
	repo := newMemUserRepo()
	dispatcher := &fakeDispatcher{}
	cfg := &config.Config{SiteURL: "https://hub.example.com"}
	return NewRecoveryService(repo, dispatcher, cfg), repo, dispatcher
}

func seedUser(t *testing.T, repo *memUserRepo, email string, verified bool) *model.User {
	t.Helper()
	hashed, err := security.HashPassword("original-password")
	require.NoError(t, err)
	user := &model.User{
		ID:             "user-" + email,
		Username:       strings.SplitN(email, "@", 2)[0],
		Email:          email,
		HashedPassword: hashed,
		IsVerified:     verified,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestRequestPasswordResetSetsTokenAndSendsMail(t *testing.T) {
	svc, repo, dispatcher := newRecoveryFixture(t)
	seedUser(t, repo, "a@b.com", true)

	msg, err := svc.RequestPasswordReset(context.Background(), "A@B.com")
	require.NoError(t, err)
	assert.Equal(t, GenericRecoveryMessage, msg)

	stored, err := repo.FindByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	require.NotNil(t, stored.PasswordResetToken)
	assert.Len(t, *stored.PasswordResetToken, 64) // 32 random bytes hex-encoded
	require.NotNil(t, stored.PasswordResetExpires)
	assert.WithinDuration(t, time.Now().Add(time.Hour), *stored.PasswordResetExpires, time.Minute)

	require.Len(t, dispatcher.sent, 1)
	assert.Equal(t, "a@b.com", dispatcher.sent[0].To)
	assert.Contains(t, dispatcher.sent[0].Body, "https://hub.example.com/reset-password?token="+*stored.PasswordResetToken)
}

func TestRequestPasswordResetEnumerationResistance(t *testing.T) {
	svc, repo, _ := newRecoveryFixture(t)
	seedUser(t, repo, "a@b.com", true)

	hit, err := svc.RequestPasswordReset(context.Background(), "a@b.com")
	require.NoError(t, err)
	miss, err := svc.RequestPasswordReset(context.Background(), "nobody@b.com")
	require.NoError(t, err)

	// Identical bodies whether or not the account exists.
	assert.Equal(t, hit, miss)
}

func TestRequestPasswordResetDispatchFailureSurfaces(t *testing.T) {
	svc, repo, dispatcher := newRecoveryFixture(t)
	seedUser(t, repo, "a@b.com", true)
	dispatcher.fail = true

	_, err := svc.RequestPasswordReset(context.Background(), "a@b.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrDispatch)
}

func TestValidateResetTokenIsReadOnly(t *testing.T) {
	svc, repo, _ := newRecoveryFixture(t)
	user := seedUser(t, repo, "a@b.com", true)

	_, err := svc.RequestPasswordReset(context.Background(), user.Email)
	require.NoError(t, err)
	stored, err := repo.FindByEmail(context.Background(), user.Email)
	require.NoError(t, err)
	token := *stored.PasswordResetToken

	require.NoError(t, svc.ValidateResetToken(context.Background(), token))
	// Still valid afterwards: validation consumes nothing.
	require.NoError(t, svc.ValidateResetToken(context.Background(), token))

	assert.ErrorIs(t, svc.ValidateResetToken(context.Background(), "deadbeef"), common.ErrInvalidToken)
}

func TestCompletePasswordResetConsumesExactlyOnce(t *testing.T) {
	svc, repo, _ := newRecoveryFixture(t)
	user := seedUser(t, repo, "a@b.com", true)

	_, err := svc.RequestPasswordReset(context.Background(), user.Email)
	require.NoError(t, err)
	stored, err := repo.FindByEmail(context.Background(), user.Email)
	require.NoError(t, err)
	token := *stored.PasswordResetToken

	require.NoError(t, svc.CompletePasswordReset(context.Background(), token, "new-password"))

	after, err := repo.FindByEmail(context.Background(), user.Email)
	require.NoError(t, err)
	assert.Nil(t, after.PasswordResetToken)
	assert.Nil(t, after.PasswordResetExpires)
	assert.True(t, security.CheckPasswordHash("new-password", after.HashedPassword))

	// Second use of the same token fails like an unknown token.
	assert.ErrorIs(t, svc.CompletePasswordReset(context.Background(), token, "another-password"), common.ErrInvalidToken)
}

func TestCompletePasswordResetRejectsShortPassword(t *testing.T) {
	svc, repo, _ := newRecoveryFixture(t)
	user := seedUser(t, repo, "a@b.com", true)

	_, err := svc.RequestPasswordReset(context.Background(), user.Email)
	require.NoError(t, err)
	stored, err := repo.FindByEmail(context.Background(), user.Email)
	require.NoError(t, err)

	err = svc.CompletePasswordReset(context.Background(), *stored.PasswordResetToken, "short")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestConcurrentPasswordResetConsumption(t *testing.T) {
	svc, repo, _ := newRecoveryFixture(t)
	user := seedUser(t, repo, "a@b.com", true)

	_, err := svc.RequestPasswordReset(context.Background(), user.Email)
	require.NoError(t, err)
	stored, err := repo.FindByEmail(context.Background(), user.Email)
	require.NoError(t, err)
	token := *stored.PasswordResetToken

	const racers = 8
	errs := make([]error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.CompletePasswordReset(context.Background(), token, "racer-password")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, common.ErrInvalidToken)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one concurrent consumer must win")
}

func TestRequestEmailVerification(t *testing.T) {
	svc, repo, dispatcher := newRecoveryFixture(t)
	seedUser(t, repo, "new@b.com", false)

	msg, err := svc.RequestEmailVerification(context.Background(), "NEW@B.com")
	require.NoError(t, err)
	assert.Equal(t, GenericRecoveryMessage, msg)

	stored, err := repo.FindByEmail(context.Background(), "new@b.com")
	require.NoError(t, err)
	require.NotNil(t, stored.EmailVerificationToken)
	require.NotNil(t, stored.EmailVerificationExpire)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), *stored.EmailVerificationExpire, time.Minute)
	require.Len(t, dispatcher.sent, 1)
}

func TestRequestEmailVerificationMissGetsGenericMessage(t *testing.T) {
	svc, _, dispatcher := newRecoveryFixture(t)

	msg, err := svc.RequestEmailVerification(context.Background(), "nobody@b.com")
	require.NoError(t, err)
	assert.Equal(t, GenericRecoveryMessage, msg)
	assert.Empty(t, dispatcher.sent)
}

func TestRequestEmailVerificationAlreadyVerified(t *testing.T) {
	svc, repo, _ := newRecoveryFixture(t)
	seedUser(t, repo, "done@b.com", true)

	_, err := svc.RequestEmailVerification(context.Background(), "done@b.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrBadRequest)
	assert.NotEqual(t, GenericRecoveryMessage, err.Error())
}

func TestCompleteEmailVerification(t *testing.T) {
	svc, repo, _ := newRecoveryFixture(t)
	user := seedUser(t, repo, "new@b.com", false)

	_, err := svc.RequestEmailVerification(context.Background(), user.Email)
	require.NoError(t, err)
	stored, err := repo.FindByEmail(context.Background(), user.Email)
	require.NoError(t, err)
	token := *stored.EmailVerificationToken

	require.NoError(t, svc.CompleteEmailVerification(context.Background(), token))

	after, err := repo.FindByEmail(context.Background(), user.Email)
	require.NoError(t, err)
	assert.True(t, after.IsVerified)
	assert.Nil(t, after.EmailVerificationToken)

	// Re-submission fails the same way as an unknown token.
	assert.ErrorIs(t, svc.CompleteEmailVerification(context.Background(), token), common.ErrInvalidToken)
}
