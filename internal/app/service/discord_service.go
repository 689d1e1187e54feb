package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gamehub/internal/common"
	"gamehub/internal/domain/model"
	"gamehub/internal/domain/repository"
	"gamehub/internal/platform/config"

	"github.com/google/uuid"
)

// DiscordService signs users in through Discord OAuth. Accounts created this
// way carry no local password; they can still set one later through the
// password-reset flow.
type DiscordService struct {
	userRepo repository.UserRepository
	auth     *AuthService
	cfg      *config.Config
	client   *http.Client

	tokenURL string
	userURL  string
}

func NewDiscordService(userRepo repository.UserRepository, auth *AuthService, cfg *config.Config) *DiscordService {
	return &DiscordService{
		userRepo: userRepo,
		auth:     auth,
		cfg:      cfg,
		client:   &http.Client{Timeout: 10 * time.Second},
		tokenURL: "https://discord.com/api/oauth2/token",
		userURL:  "https://discord.com/api/users/@me",
	}
}

type discordTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type discordUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
}

func (s *DiscordService) Callback(ctx context.Context, code string) (*AuthResponse, error) {
	if code == "" {
		return nil, common.ErrValidation
	}
	if s.cfg.DiscordClientID == "" || s.cfg.DiscordClientSecret == "" {
		return nil, fmt.Errorf("discord login is not configured: %w", common.ErrBadRequest)
	}

	accessToken, err := s.exchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}
	dUser, err := s.fetchUser(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if dUser.Email == "" || !dUser.Verified {
		return nil, fmt.Errorf("discord account has no verified email: %w", common.ErrBadRequest)
	}

	user, err := s.findOrCreate(ctx, dUser)
	if err != nil {
		return nil, err
	}

	token, err := s.auth.issueToken(user)
	if err != nil {
		return nil, err
	}
	user.HashedPassword = ""
	return &AuthResponse{User: user, Token: token}, nil
}

func (s *DiscordService) exchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{
		"client_id":     {s.cfg.DiscordClientID},
		"client_secret": {s.cfg.DiscordClientSecret},
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {s.cfg.DiscordRedirectURI},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("discord token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("discord token exchange failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("discord token exchange returned status %d: %w", resp.StatusCode, common.ErrBadRequest)
	}

	var tr discordTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("discord token decode: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("discord returned empty access token: %w", common.ErrBadRequest)
	}
	return tr.AccessToken, nil
}

func (s *DiscordService) fetchUser(ctx context.Context, accessToken string) (*discordUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userURL, nil)
	if err != nil {
		return nil, fmt.Errorf("discord user request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("discord user fetch failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discord user fetch returned status %d: %w", resp.StatusCode, common.ErrBadRequest)
	}

	dUser := &discordUser{}
	if err := json.NewDecoder(resp.Body).Decode(dUser); err != nil {
		return nil, fmt.Errorf("discord user decode: %w", err)
	}
	return dUser, nil
}

func (s *DiscordService) findOrCreate(ctx context.Context, dUser *discordUser) (*model.User, error) {
	email := strings.ToLower(dUser.Email)
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	user = &model.User{
		ID:         uuid.NewString(),
		Username:   dUser.Username,
		Email:      email,
		IsVerified: true, // Discord already verified the address
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Username collision with an unrelated account: retry once with a
		// suffixed name before giving up.
		if errors.Is(err, common.ErrConflict) {
			user.Username = dUser.Username + "-" + dUser.ID
			if retryErr := s.userRepo.Create(ctx, user); retryErr != nil {
				return nil, fmt.Errorf("failed to create account: %w", retryErr)
			}
			return user, nil
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return user, nil
}
