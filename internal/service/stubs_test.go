package service

import (
	"context"
	"testing"
	"time"

	"potluck/internal/models"
	"potluck/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn            func(context.Context, *models.Post) error
	existsFn            func(context.Context, uint) (bool, error)
	getByIDFn           func(context.Context, uint, uint) (*models.Post, error)
	getWithEngagementFn func(context.Context, uint, uint) (*models.Post, error)
	listFn              func(context.Context, repository.PostFilter) ([]*models.Post, int64, error)
	updateFn            func(context.Context, uint, repository.PostCheck, map[string]any) error
	deleteCascadeFn     func(context.Context, uint, repository.PostCheck) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) Exists(ctx context.Context, id uint) (bool, error) {
	return s.existsFn(ctx, id)
}
func (s *postRepoStub) GetByID(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id, viewerID)
}
func (s *postRepoStub) GetWithEngagement(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	return s.getWithEngagementFn(ctx, id, viewerID)
}
func (s *postRepoStub) List(ctx context.Context, f repository.PostFilter) ([]*models.Post, int64, error) {
	return s.listFn(ctx, f)
}
func (s *postRepoStub) Update(ctx context.Context, id uint, check repository.PostCheck, updates map[string]any) error {
	return s.updateFn(ctx, id, check, updates)
}
func (s *postRepoStub) DeleteCascade(ctx context.Context, id uint, check repository.PostCheck) error {
	return s.deleteCascadeFn(ctx, id, check)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, p *models.Post) error { p.ID = 1; return nil },
		existsFn: func(_ context.Context, _ uint) (bool, error) { return true, nil },
		getByIDFn: func(_ context.Context, id, _ uint) (*models.Post, error) {
			return &models.Post{ID: id}, nil
		},
		getWithEngagementFn: func(_ context.Context, id, _ uint) (*models.Post, error) {
			return &models.Post{ID: id}, nil
		},
		listFn: func(_ context.Context, _ repository.PostFilter) ([]*models.Post, int64, error) {
			return []*models.Post{}, 0, nil
		},
		updateFn:        func(_ context.Context, _ uint, _ repository.PostCheck, _ map[string]any) error { return nil },
		deleteCascadeFn: func(_ context.Context, _ uint, _ repository.PostCheck) error { return nil },
	}
}

// likeRepoStub is a stub for repository.LikeRepository.
type likeRepoStub struct {
	toggleFn func(context.Context, uint, uint) (*models.LikeResult, error)
}

func (s *likeRepoStub) Toggle(ctx context.Context, postID, userID uint) (*models.LikeResult, error) {
	return s.toggleFn(ctx, postID, userID)
}
func (s *likeRepoStub) Count(_ context.Context, _ uint) (int64, error) { return 0, nil }

// revokerStub records revocations in memory.
type revokerStub struct {
	revoked map[string]time.Duration
	err     error
}

func (s *revokerStub) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if s.err != nil {
		return s.err
	}
	if s.revoked == nil {
		s.revoked = map[string]time.Duration{}
	}
	s.revoked[jti] = ttl
	return nil
}

func (s *revokerStub) IsRevoked(_ context.Context, jti string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	_, ok := s.revoked[jti]
	return ok, nil
}

// assertCode asserts that err is an AppError carrying code.
func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr, "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func strPtr(s string) *string { return &s }
