package repository

import (
	"context"
	"log/slog"

	"potluck/internal/models"
	"potluck/internal/observability"

	"gorm.io/gorm"
)

// ShareRepository defines share persistence operations. Shares are append-only.
type ShareRepository interface {
	Create(ctx context.Context, share *models.Share) error
}

type shareRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewShareRepository creates a new share repository.
func NewShareRepository(db *gorm.DB) ShareRepository {
	return &shareRepository{db: db, log: observability.NewRepoLogger("shares")}
}

// Create inserts share and loads its author and the shared post with its author.
func (r *shareRepository) Create(ctx context.Context, share *models.Share) error {
	defer observability.TrackQuery("create", "shares")()

	db := r.db.WithContext(ctx)
	if err := db.Create(share).Error; err != nil {
		if missingPost(err, fkSharePost) {
			return models.NewNotFoundError("Post", share.PostID)
		}
		r.log.LogError(ctx, err, "create")
		return wrapErr(err)
	}
	if err := db.Preload("User").Preload("Post").Preload("Post.User").Take(share, share.ID).Error; err != nil {
		return wrapErr(err)
	}

	r.log.LogCreate(ctx, slog.Uint64("share_id", uint64(share.ID)), slog.Uint64("post_id", uint64(share.PostID)))
	return nil
}
