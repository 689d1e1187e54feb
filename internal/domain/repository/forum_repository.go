package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gamehub/internal/common"
	"gamehub/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type ForumRepository interface {
	CreateThread(ctx context.Context, thread *model.Thread) error
	FindThreadBySlug(ctx context.Context, slug string) (*model.Thread, error)
	ListThreads(ctx context.Context, limit, offset int) ([]*model.Thread, error)
	DeleteThread(ctx context.Context, id string) error

	CreatePost(ctx context.Context, post *model.Post) error
	ListPostsByThread(ctx context.Context, threadID string) ([]*model.Post, error)
	DeletePost(ctx context.Context, id string) error
}

type pgForumRepository struct {
	db *sql.DB
}

func NewPgForumRepository(db *sql.DB) ForumRepository {
	return &pgForumRepository{db: db}
}

func (r *pgForumRepository) CreateThread(ctx context.Context, thread *model.Thread) error {
	query := `INSERT INTO threads (id, slug, title, body, author_id)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, thread.ID, thread.Slug, thread.Title, thread.Body, thread.AuthorID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("thread with this title already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgForumRepository.CreateThread: %w", err)
	}
	return nil
}

func (r *pgForumRepository) FindThreadBySlug(ctx context.Context, slug string) (*model.Thread, error) {
	query := `SELECT t.id, t.slug, t.title, t.body, t.author_id, u.username,
	                 (SELECT COUNT(*) FROM posts p WHERE p.thread_id = t.id),
	                 t.created_at, t.updated_at
	          FROM threads t JOIN users u ON u.id = t.author_id
	          WHERE t.slug = $1`
	thread := &model.Thread{}
	err := r.db.QueryRowContext(ctx, query, slug).Scan(
		&thread.ID, &thread.Slug, &thread.Title, &thread.Body, &thread.AuthorID, &thread.AuthorName,
		&thread.PostCount, &thread.CreatedAt, &thread.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgForumRepository.FindThreadBySlug: %w", err)
	}
	return thread, nil
}

func (r *pgForumRepository) ListThreads(ctx context.Context, limit, offset int) ([]*model.Thread, error) {
	query := `SELECT t.id, t.slug, t.title, t.body, t.author_id, u.username,
	                 (SELECT COUNT(*) FROM posts p WHERE p.thread_id = t.id),
	                 t.created_at, t.updated_at
	          FROM threads t JOIN users u ON u.id = t.author_id
	          ORDER BY t.updated_at DESC
	          LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("pgForumRepository.ListThreads: %w", err)
	}
	defer rows.Close()

	threads := []*model.Thread{}
	for rows.Next() {
		thread := &model.Thread{}
		if err := rows.Scan(
			&thread.ID, &thread.Slug, &thread.Title, &thread.Body, &thread.AuthorID, &thread.AuthorName,
			&thread.PostCount, &thread.CreatedAt, &thread.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("pgForumRepository.ListThreads scan: %w", err)
		}
		threads = append(threads, thread)
	}
	return threads, rows.Err()
}

func (r *pgForumRepository) DeleteThread(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM threads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgForumRepository.DeleteThread: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgForumRepository) CreatePost(ctx context.Context, post *model.Post) error {
	query := `INSERT INTO posts (id, thread_id, body, author_id) VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, query, post.ID, post.ThreadID, post.Body, post.AuthorID)
	if err != nil {
		return fmt.Errorf("pgForumRepository.CreatePost: %w", err)
	}
	return nil
}

func (r *pgForumRepository) ListPostsByThread(ctx context.Context, threadID string) ([]*model.Post, error) {
	query := `SELECT p.id, p.thread_id, p.body, p.author_id, u.username, p.created_at
	          FROM posts p JOIN users u ON u.id = p.author_id
	          WHERE p.thread_id = $1
	          ORDER BY p.created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, threadID)
	if err != nil {
		return nil, fmt.Errorf("pgForumRepository.ListPostsByThread: %w", err)
	}
	defer rows.Close()

	posts := []*model.Post{}
	for rows.Next() {
		post := &model.Post{}
		if err := rows.Scan(&post.ID, &post.ThreadID, &post.Body, &post.AuthorID, &post.AuthorName, &post.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgForumRepository.ListPostsByThread scan: %w", err)
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (r *pgForumRepository) DeletePost(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgForumRepository.DeletePost: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return common.ErrNotFound
	}
	return nil
}
