package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gamehub/internal/common"
	"gamehub/internal/common/security"
	"gamehub/internal/domain/model"
	"gamehub/internal/domain/repository"
	"gamehub/internal/platform/config"

	"github.com/google/uuid"
)

// SessionCookieName is the scoped cookie carrying the session token.
const SessionCookieName = "auth-token"

type AuthService struct {
	userRepo repository.UserRepository
	codec    *security.TokenCodec
	cfg      *config.Config
}

func NewAuthService(userRepo repository.UserRepository, codec *security.TokenCodec, cfg *config.Config) *AuthService {
	return &AuthService{userRepo: userRepo, codec: codec, cfg: cfg}
}

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	LoginField string `json:"login_field"` // Can be username or email
	Password   string `json:"password"`
}

type AuthResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, common.ErrValidation
	}
	if len(req.Password) < 6 {
		return nil, fmt.Errorf("password must be at least 6 characters: %w", common.ErrValidation)
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.NewString(),
		Username:       req.Username,
		Email:          strings.ToLower(req.Email),
		HashedPassword: hashedPassword,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	user.HashedPassword = "" // Clear password before returning
	return &AuthResponse{User: user, Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if req.LoginField == "" || req.Password == "" {
		return nil, common.ErrValidation
	}

	var user *model.User
	var err error

	// Try finding by email first, then by username
	user, err = s.userRepo.FindByEmail(ctx, strings.ToLower(req.LoginField))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			user, err = s.userRepo.FindByUsername(ctx, req.LoginField)
		}
	}

	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized // Generic message for security
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user.HashedPassword == "" || !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		return nil, common.ErrUnauthorized
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	user.HashedPassword = ""
	return &AuthResponse{User: user, Token: token}, nil
}

func (s *AuthService) issueToken(user *model.User) (string, error) {
	token, err := s.codec.Generate(security.SessionClaims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		IsAdmin:  user.IsAdmin,
		IsOwner:  user.IsOwner,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

// SessionCookie wraps a freshly issued token in the scoped session cookie.
// Secure follows the forwarded protocol when a proxy supplies one, otherwise
// the configured site URL's scheme.
func (s *AuthService) SessionCookie(r *http.Request, token string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.codec.TTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.cookieSecure(r),
	}
}

// ClearSessionCookie expires the session cookie client-side. Safe to call
// with no prior session. MaxAge -1 serializes as Max-Age=0 on the wire;
// a zero field would omit the attribute and leave a session cookie behind.
func (s *AuthService) ClearSessionCookie(r *http.Request) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.cookieSecure(r),
	}
}

func (s *AuthService) cookieSecure(r *http.Request) bool {
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		return proto == "https"
	}
	return s.cfg.SiteScheme() == "https"
}

// Resolve is the authoritative session check. It extracts a token (cookie
// preferred, bearer header fallback), verifies it, then re-fetches the user
// by id. The re-fetch is mandatory: role flags or account existence may have
// changed since issuance, so claims are trusted only as the lookup key.
// Returns (nil, nil) when no valid session is present.
func (s *AuthService) Resolve(r *http.Request) (*model.AuthSnapshot, error) {
	tokenString := extractToken(r)
	if tokenString == "" {
		return nil, nil
	}

	claims, err := s.codec.Verify(tokenString)
	if err != nil {
		return nil, nil
	}

	user, err := s.userRepo.FindByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve session user: %w", err)
	}
	return user.Snapshot(), nil
}

func (s *AuthService) Require(r *http.Request) (*model.AuthSnapshot, error) {
	snap, err := s.Resolve(r)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, common.ErrUnauthorized
	}
	return snap, nil
}

func (s *AuthService) RequireAdmin(r *http.Request) (*model.AuthSnapshot, error) {
	snap, err := s.Require(r)
	if err != nil {
		return nil, err
	}
	if !snap.IsAdmin && !snap.IsOwner {
		return nil, common.ErrAdminRequired
	}
	return snap, nil
}

func (s *AuthService) RequireOwner(r *http.Request) (*model.AuthSnapshot, error) {
	snap, err := s.Require(r)
	if err != nil {
		return nil, err
	}
	if !snap.IsOwner {
		return nil, common.ErrOwnerRequired
	}
	return snap, nil
}

func extractToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
