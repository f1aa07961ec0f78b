package service

import (
	"context"

	"potluck/internal/models"
	"potluck/internal/repository"
)

type ShareService struct {
	shareRepo repository.ShareRepository
	postRepo  repository.PostRepository
}

type SharePostInput struct {
	PostID   uint
	UserID   uint
	SharedTo *string
}

func NewShareService(shareRepo repository.ShareRepository, postRepo repository.PostRepository) *ShareService {
	return &ShareService{shareRepo: shareRepo, postRepo: postRepo}
}

// SharePost records a share. Every call inserts a new row.
func (s *ShareService) SharePost(ctx context.Context, in SharePostInput) (*models.Share, error) {
	fe := models.FieldErrors{}
	sharedTo := optionalText(fe, "shared_to", in.SharedTo, maxSharedToLen)
	if err := fe.Err(); err != nil {
		return nil, err
	}

	ok, err := s.postRepo.Exists(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.NewNotFoundError("Post", in.PostID)
	}

	share := &models.Share{PostID: in.PostID, UserID: in.UserID, SharedTo: sharedTo}
	if err := s.shareRepo.Create(ctx, share); err != nil {
		return nil, err
	}
	return share, nil
}
