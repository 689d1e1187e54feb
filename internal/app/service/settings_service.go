package service

import (
	"context"

	"gamehub/internal/common"
	"gamehub/internal/domain/model"
	"gamehub/internal/domain/repository"
)

type SettingsService struct {
	settingsRepo repository.SettingsRepository
}

func NewSettingsService(settingsRepo repository.SettingsRepository) *SettingsService {
	return &SettingsService{settingsRepo: settingsRepo}
}

func (s *SettingsService) List(ctx context.Context) ([]*model.Setting, error) {
	return s.settingsRepo.List(ctx)
}

func (s *SettingsService) Get(ctx context.Context, key string) (*model.Setting, error) {
	if key == "" {
		return nil, common.ErrValidation
	}
	return s.settingsRepo.Get(ctx, key)
}

func (s *SettingsService) Set(ctx context.Context, key, value string) (*model.Setting, error) {
	if key == "" {
		return nil, common.ErrValidation
	}
	return s.settingsRepo.Upsert(ctx, key, value)
}
