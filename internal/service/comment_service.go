package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"potluck/internal/models"
	"potluck/internal/observability"
	"potluck/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

type CreateCommentInput struct {
	PostID uint
	UserID uint
	Body   string
}

type DeleteCommentInput struct {
	CommentID uint
	UserID    uint
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo, postRepo: postRepo}
}

// CreateComment adds a comment to a post and returns it with its author.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (comment *models.Comment, err error) {
	ctx, span := observability.StartSpan(ctx, "comment_service", "create",
		attribute.Int64("post.id", int64(in.PostID)))
	defer func() { observability.EndSpan(span, err) }()

	body := strings.TrimSpace(in.Body)
	if body == "" {
		return nil, models.NewFieldValidationError(map[string][]string{
			"comment": {"The comment field is required."},
		})
	}
	if utf8.RuneCountInString(body) > models.MaxCommentLength {
		return nil, models.NewFieldValidationError(map[string][]string{
			"comment": {fmt.Sprintf("The comment may not be greater than %d characters.", models.MaxCommentLength)},
		})
	}

	if err := s.requirePost(ctx, in.PostID); err != nil {
		return nil, err
	}

	comment = &models.Comment{PostID: in.PostID, UserID: in.UserID, Body: body}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListComments returns a post's comments, newest first.
func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByPost(ctx, postID)
}

func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) error {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return err
	}
	if err := ensureOwner(comment.UserID, in.UserID, "comments"); err != nil {
		return err
	}
	return s.commentRepo.Delete(ctx, in.CommentID)
}

func (s *CommentService) requirePost(ctx context.Context, postID uint) error {
	ok, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewNotFoundError("Post", postID)
	}
	return nil
}
