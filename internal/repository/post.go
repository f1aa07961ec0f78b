// Package repository provides the data access layer. Each aggregate has an
// interface and a GORM-backed implementation.
package repository

import (
	"context"
	"log/slog"

	"potluck/internal/models"
	"potluck/internal/observability"

	"gorm.io/gorm"
)

// PostFilter selects one page of the feed.
type PostFilter struct {
	Category models.Category
	ViewerID uint
	Limit    int
	Offset   int
}

// PostCheck inspects a locked post before a write proceeds. Returning an
// error aborts the write and rolls back the transaction.
type PostCheck func(post *models.Post) error

// PostRepository defines post persistence operations.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	Exists(ctx context.Context, id uint) (bool, error)
	GetByID(ctx context.Context, id, viewerID uint) (*models.Post, error)
	GetWithEngagement(ctx context.Context, id, viewerID uint) (*models.Post, error)
	List(ctx context.Context, filter PostFilter) ([]*models.Post, int64, error)
	Update(ctx context.Context, id uint, check PostCheck, updates map[string]any) error
	DeleteCascade(ctx context.Context, id uint, check PostCheck) error
}

type postRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, log: observability.NewRepoLogger("posts")}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("create", "posts")()

	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return wrapErr(err)
	}
	r.log.LogCreate(ctx, slog.Uint64("post_id", uint64(post.ID)))
	return nil
}

func (r *postRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Limit(1).Count(&n).Error; err != nil {
		return false, wrapErr(err)
	}
	return n > 0, nil
}

// GetByID loads a post with its author and engagement counts, read from the primary.
func (r *postRepository) GetByID(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	defer observability.TrackQuery("get", "posts")()

	var post models.Post
	err := withEngagement(r.db.WithContext(ctx), viewerID).
		Preload("User").
		Where("posts.id = ?", id).
		Take(&post).Error
	if err != nil {
		return nil, notFoundOr(err, "Post", id)
	}
	return &post, nil
}

// GetWithEngagement loads a post with its author, counts, and every comment,
// like and share with their authors. Comments are newest first.
func (r *postRepository) GetWithEngagement(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	defer observability.TrackQuery("get_engagement", "posts")()

	newestFirst := func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at DESC").Order("id DESC")
	}

	var post models.Post
	err := withEngagement(readDB(r.db).WithContext(ctx), viewerID).
		Preload("User").
		Preload("Comments", newestFirst).
		Preload("Comments.User").
		Preload("Likes", newestFirst).
		Preload("Likes.User").
		Preload("Shares", newestFirst).
		Preload("Shares.User").
		Where("posts.id = ?", id).
		Take(&post).Error
	if err != nil {
		return nil, notFoundOr(err, "Post", id)
	}
	return &post, nil
}

// List returns one page of posts, newest first with ties broken by id, and
// the total number of posts matching the filter.
func (r *postRepository) List(ctx context.Context, filter PostFilter) ([]*models.Post, int64, error) {
	defer observability.TrackQuery("list", "posts")()

	db := readDB(r.db).WithContext(ctx)
	scope := func(q *gorm.DB) *gorm.DB {
		if filter.Category != "" {
			return q.Where("posts.category = ?", filter.Category)
		}
		return q
	}

	var total int64
	if err := scope(db.Model(&models.Post{})).Count(&total).Error; err != nil {
		return nil, 0, wrapErr(err)
	}

	posts := make([]*models.Post, 0, filter.Limit)
	if total == 0 || filter.Offset >= int(total) {
		return posts, total, nil
	}

	err := scope(withEngagement(db, filter.ViewerID)).
		Preload("User").
		Order("posts.created_at DESC").
		Order("posts.id DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&posts).Error
	if err != nil {
		return nil, 0, wrapErr(err)
	}
	return posts, total, nil
}

// Update applies updates to a post after check accepts the locked row.
func (r *postRepository) Update(ctx context.Context, id uint, check PostCheck, updates map[string]any) error {
	defer observability.TrackQuery("update", "posts")()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := lockPost(tx, id)
		if err != nil {
			return err
		}
		if check != nil {
			if err := check(post); err != nil {
				return err
			}
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(post).Updates(updates).Error
	})
	if err != nil {
		return wrapErr(err)
	}
	r.log.LogUpdate(ctx, slog.Uint64("post_id", uint64(id)))
	return nil
}

// DeleteCascade removes a post and all of its comments, likes and shares in
// one transaction, holding the post row lock throughout.
func (r *postRepository) DeleteCascade(ctx context.Context, id uint, check PostCheck) error {
	defer observability.TrackQuery("delete_cascade", "posts")()

	var removed [3]int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := lockPost(tx, id)
		if err != nil {
			return err
		}
		if check != nil {
			if err := check(post); err != nil {
				return err
			}
		}

		for i, dependent := range []any{&models.Comment{}, &models.Like{}, &models.Share{}} {
			res := tx.Where("post_id = ?", id).Delete(dependent)
			if res.Error != nil {
				return res.Error
			}
			removed[i] = res.RowsAffected
		}

		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", id)
		}
		return nil
	})
	if err != nil {
		if models.ErrorCode(err) == models.CodeInternal {
			r.log.LogError(ctx, err, "delete_cascade")
		}
		return wrapErr(err)
	}

	r.log.LogDelete(ctx,
		slog.Uint64("post_id", uint64(id)),
		slog.Int64("comments", removed[0]),
		slog.Int64("likes", removed[1]),
		slog.Int64("shares", removed[2]),
	)
	return nil
}
