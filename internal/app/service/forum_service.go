package service

import (
	"context"
	"fmt"

	"gamehub/internal/common"
	"gamehub/internal/domain/model"
	"gamehub/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type ForumService struct {
	forumRepo repository.ForumRepository
}

func NewForumService(forumRepo repository.ForumRepository) *ForumService {
	return &ForumService{forumRepo: forumRepo}
}

type CreateThreadRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type CreatePostRequest struct {
	Body string `json:"body"`
}

type ThreadView struct {
	Thread *model.Thread `json:"thread"`
	Posts  []*model.Post `json:"posts"`
}

func (s *ForumService) CreateThread(ctx context.Context, author *model.AuthSnapshot, req CreateThreadRequest) (*model.Thread, error) {
	if req.Title == "" || req.Body == "" {
		return nil, common.ErrValidation
	}

	thread := &model.Thread{
		ID:         uuid.NewString(),
		Slug:       slug.Make(req.Title),
		Title:      req.Title,
		Body:       req.Body,
		AuthorID:   author.ID,
		AuthorName: author.Username,
	}
	if err := s.forumRepo.CreateThread(ctx, thread); err != nil {
		return nil, fmt.Errorf("failed to create thread: %w", err)
	}
	return thread, nil
}

func (s *ForumService) ListThreads(ctx context.Context, limit, offset int) ([]*model.Thread, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}
	return s.forumRepo.ListThreads(ctx, limit, offset)
}

func (s *ForumService) GetThread(ctx context.Context, threadSlug string) (*ThreadView, error) {
	thread, err := s.forumRepo.FindThreadBySlug(ctx, threadSlug)
	if err != nil {
		return nil, err
	}
	posts, err := s.forumRepo.ListPostsByThread(ctx, thread.ID)
	if err != nil {
		return nil, err
	}
	return &ThreadView{Thread: thread, Posts: posts}, nil
}

func (s *ForumService) CreatePost(ctx context.Context, author *model.AuthSnapshot, threadSlug string, req CreatePostRequest) (*model.Post, error) {
	if req.Body == "" {
		return nil, common.ErrValidation
	}
	thread, err := s.forumRepo.FindThreadBySlug(ctx, threadSlug)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		ID:         uuid.NewString(),
		ThreadID:   thread.ID,
		Body:       req.Body,
		AuthorID:   author.ID,
		AuthorName: author.Username,
	}
	if err := s.forumRepo.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return post, nil
}

func (s *ForumService) DeleteThread(ctx context.Context, threadSlug string) error {
	thread, err := s.forumRepo.FindThreadBySlug(ctx, threadSlug)
	if err != nil {
		return err
	}
	return s.forumRepo.DeleteThread(ctx, thread.ID)
}

func (s *ForumService) DeletePost(ctx context.Context, postID string) error {
	if postID == "" {
		return common.ErrValidation
	}
	return s.forumRepo.DeletePost(ctx, postID)
}
