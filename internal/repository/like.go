package repository

import (
	"context"
	"log/slog"

	"potluck/internal/models"
	"potluck/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository defines like persistence operations.
type LikeRepository interface {
	Toggle(ctx context.Context, postID, userID uint) (*models.LikeResult, error)
	Count(ctx context.Context, postID uint) (int64, error)
}

type likeRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewLikeRepository creates a new like repository.
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db, log: observability.NewRepoLogger("likes")}
}

// Toggle flips the (postID, userID) like in one transaction: the post row is
// locked, an existing like is deleted, otherwise one is inserted, and the
// count is read before commit. The unique index on (post_id, user_id) backs
// the insert.
func (r *likeRepository) Toggle(ctx context.Context, postID, userID uint) (*models.LikeResult, error) {
	defer observability.TrackQuery("toggle", "likes")()

	result := &models.LikeResult{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockPost(tx, postID); err != nil {
			return err
		}

		del := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Like{})
		if del.Error != nil {
			return del.Error
		}

		if del.RowsAffected == 0 {
			like := &models.Like{PostID: postID, UserID: userID}
			ins := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "post_id"}, {Name: "user_id"}},
				DoNothing: true,
			}).Create(like)
			if ins.Error != nil {
				return ins.Error
			}
			result.Liked = true
		}

		return tx.Model(&models.Like{}).Where("post_id = ?", postID).Count(&result.LikesCount).Error
	})
	if err != nil {
		return nil, wrapErr(err)
	}

	r.log.LogUpdate(ctx,
		slog.Uint64("post_id", uint64(postID)),
		slog.Bool("liked", result.Liked),
		slog.Int64("likes_count", result.LikesCount),
	)
	return result, nil
}

func (r *likeRepository) Count(ctx context.Context, postID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ?", postID).Count(&n).Error; err != nil {
		return 0, wrapErr(err)
	}
	return n, nil
}
