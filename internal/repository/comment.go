package repository

import (
	"context"
	"log/slog"

	"potluck/internal/models"
	"potluck/internal/observability"

	"gorm.io/gorm"
)

// CommentRepository defines comment persistence operations.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error)
	Delete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewCommentRepository creates a new comment repository.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db, log: observability.NewRepoLogger("comments")}
}

// Create inserts comment and loads its author. A post deleted concurrently
// surfaces as NotFound through the foreign key.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	defer observability.TrackQuery("create", "comments")()

	db := r.db.WithContext(ctx)
	if err := db.Create(comment).Error; err != nil {
		if missingPost(err, fkCommentPost) {
			return models.NewNotFoundError("Post", comment.PostID)
		}
		r.log.LogError(ctx, err, "create")
		return wrapErr(err)
	}
	if err := db.Preload("User").Take(comment, comment.ID).Error; err != nil {
		return wrapErr(err)
	}

	r.log.LogCreate(ctx, slog.Uint64("comment_id", uint64(comment.ID)), slog.Uint64("post_id", uint64(comment.PostID)))
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("User").Take(&comment, id).Error; err != nil {
		return nil, notFoundOr(err, "Comment", id)
	}
	return &comment, nil
}

// ListByPost returns the comments of a post, newest first.
func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	defer observability.TrackQuery("list", "comments")()

	comments := []*models.Comment{}
	err := readDB(r.db).WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	return comments, nil
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "delete")
		return wrapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	r.log.LogDelete(ctx, slog.Uint64("comment_id", uint64(id)))
	return nil
}
