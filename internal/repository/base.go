package repository

import (
	"errors"

	"potluck/internal/database"
	"potluck/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// readDB returns the replica when one is connected, otherwise primary.
func readDB(primary *gorm.DB) *gorm.DB {
	if db := database.GetReadDB(); db != nil {
		return db
	}
	return primary
}

// wrapErr passes AppErrors through and wraps everything else as internal.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return models.NewInternalError(err)
}

// notFoundOr maps gorm.ErrRecordNotFound to a NotFound AppError.
func notFoundOr(err error, resource string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return wrapErr(err)
}

// Foreign keys from engagement rows to their post, as named by the SQL
// migrations and by GORM's AutoMigrate.
const (
	fkCommentPost = "fk_posts_comments"
	fkSharePost   = "fk_posts_shares"
)

// missingPost reports whether err is a violation of the post foreign key
// named constraint. SQLite does not report constraint names, so any foreign
// key violation there counts.
func missingPost(err error, constraint string) bool {
	if !database.IsForeignKeyViolation(err) {
		return false
	}
	name := database.ConstraintName(err)
	return name == "" || name == constraint
}

// lockPost loads the owner columns of a post inside tx. On Postgres the row is
// locked FOR UPDATE until tx ends, which serializes writers on the same post.
func lockPost(tx *gorm.DB, id uint) (*models.Post, error) {
	q := tx
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var post models.Post
	if err := q.Select("id", "user_id").Where("id = ?", id).Take(&post).Error; err != nil {
		return nil, notFoundOr(err, "Post", id)
	}
	return &post, nil
}

// withEngagement selects the computed engagement columns alongside posts.*.
func withEngagement(db *gorm.DB, viewerID uint) *gorm.DB {
	sel := "posts.*, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes_count, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comments_count, " +
		"(SELECT COUNT(*) FROM shares WHERE shares.post_id = posts.id) AS shares_count"

	if viewerID != 0 {
		return db.Select(sel+", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) AS liked", viewerID)
	}
	return db.Select(sel + ", false AS liked")
}
