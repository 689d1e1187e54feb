package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gamehub/internal/common"
	"gamehub/internal/domain/model"
)

type SettingsRepository interface {
	List(ctx context.Context) ([]*model.Setting, error)
	Get(ctx context.Context, key string) (*model.Setting, error)
	Upsert(ctx context.Context, key, value string) (*model.Setting, error)
}

type pgSettingsRepository struct {
	db *sql.DB
}

func NewPgSettingsRepository(db *sql.DB) SettingsRepository {
	return &pgSettingsRepository{db: db}
}

func (r *pgSettingsRepository) List(ctx context.Context) ([]*model.Setting, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value, updated_at FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("pgSettingsRepository.List: %w", err)
	}
	defer rows.Close()

	settings := []*model.Setting{}
	for rows.Next() {
		s := &model.Setting{}
		if err := rows.Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pgSettingsRepository.List scan: %w", err)
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

func (r *pgSettingsRepository) Get(ctx context.Context, key string) (*model.Setting, error) {
	s := &model.Setting{}
	err := r.db.QueryRowContext(ctx,
		`SELECT key, value, updated_at FROM settings WHERE key = $1`, key,
	).Scan(&s.Key, &s.Value, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgSettingsRepository.Get: %w", err)
	}
	return s, nil
}

func (r *pgSettingsRepository) Upsert(ctx context.Context, key, value string) (*model.Setting, error) {
	s := &model.Setting{}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
		 RETURNING key, value, updated_at`, key, value,
	).Scan(&s.Key, &s.Value, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("pgSettingsRepository.Upsert: %w", err)
	}
	return s, nil
}
