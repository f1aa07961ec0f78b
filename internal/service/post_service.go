package service

import (
	"context"
	"iter"
	"math"

	"potluck/internal/models"
	"potluck/internal/observability"
	"potluck/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type PostService struct {
	postRepo repository.PostRepository
	likeRepo repository.LikeRepository
}

type CreatePostInput struct {
	UserID   uint
	Title    string
	Category string
	Content  string
	Location *string
	Tags     *string
	ImageURL *string
}

type ListPostsInput struct {
	Page     int
	PageSize int
	ViewerID uint
	Category string
}

// PostPage is one page of the feed.
type PostPage struct {
	Posts    []*models.Post `json:"posts"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	Total    int64          `json:"total"`
	HasMore  bool           `json:"has_more"`
}

// UpdatePostInput carries a partial update. Nil fields are left unchanged;
// a blank optional field clears it.
type UpdatePostInput struct {
	PostID   uint
	UserID   uint
	Title    *string
	Category *string
	Content  *string
	Location *string
	Tags     *string
	ImageURL *string
}

type DeletePostInput struct {
	PostID uint
	UserID uint
}

func NewPostService(postRepo repository.PostRepository, likeRepo repository.LikeRepository) *PostService {
	return &PostService{postRepo: postRepo, likeRepo: likeRepo}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (post *models.Post, err error) {
	ctx, span := observability.StartSpan(ctx, "post_service", "create")
	defer func() { observability.EndSpan(span, err) }()

	fe := models.FieldErrors{}
	post = &models.Post{
		UserID:   in.UserID,
		Title:    requireText(fe, "title", in.Title, maxTitleLen),
		Category: checkCategory(fe, in.Category),
		Content:  requireText(fe, "content", in.Content, 0),
		Location: optionalText(fe, "location", in.Location, maxLocationLen),
		Tags:     optionalText(fe, "tags", in.Tags, 0),
		ImageURL: optionalText(fe, "image_url", in.ImageURL, 0),
	}
	if err := fe.Err(); err != nil {
		return nil, err
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

// GetPost returns the post with its author, counts and all engagement.
func (s *PostService) GetPost(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	return s.postRepo.GetWithEngagement(ctx, id, viewerID)
}

func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) (*PostPage, error) {
	page, size := in.Page, in.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	// Keep (page-1)*size from wrapping; such pages are past any real feed.
	if page > math.MaxInt/size {
		page = math.MaxInt / size
	}

	var category models.Category
	if in.Category != "" {
		fe := models.FieldErrors{}
		category = checkCategory(fe, in.Category)
		if err := fe.Err(); err != nil {
			return nil, err
		}
	}

	offset := (page - 1) * size
	posts, total, err := s.postRepo.List(ctx, repository.PostFilter{
		Category: category,
		ViewerID: in.ViewerID,
		Limit:    size,
		Offset:   offset,
	})
	if err != nil {
		return nil, err
	}

	return &PostPage{
		Posts:    posts,
		Page:     page,
		PageSize: size,
		Total:    total,
		HasMore:  int64(offset+len(posts)) < total,
	}, nil
}

// Pages walks the whole feed page by page from page 1. Every range starts over.
// The sequence ends after the page with HasMore false, or after yielding the
// first error.
func (s *PostService) Pages(ctx context.Context, pageSize int, viewerID uint) iter.Seq2[*PostPage, error] {
	return func(yield func(*PostPage, error) bool) {
		for n := 1; ; n++ {
			page, err := s.ListPosts(ctx, ListPostsInput{Page: n, PageSize: pageSize, ViewerID: viewerID})
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(page, nil) || !page.HasMore {
				return
			}
		}
	}
}

// UpdatePost applies the supplied fields. Existence and ownership are checked
// before field validation, so a stranger gets Forbidden even for bad input.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (post *models.Post, err error) {
	ctx, span := observability.StartSpan(ctx, "post_service", "update",
		attribute.Int64("post.id", int64(in.PostID)))
	defer func() { observability.EndSpan(span, err) }()

	fe := models.FieldErrors{}
	updates := map[string]any{}
	if in.Title != nil {
		updates["title"] = requireText(fe, "title", *in.Title, maxTitleLen)
	}
	if in.Category != nil {
		updates["category"] = checkCategory(fe, *in.Category)
	}
	if in.Content != nil {
		updates["content"] = requireText(fe, "content", *in.Content, 0)
	}
	if in.Location != nil {
		updates["location"] = optionalText(fe, "location", in.Location, maxLocationLen)
	}
	if in.Tags != nil {
		updates["tags"] = optionalText(fe, "tags", in.Tags, 0)
	}
	if in.ImageURL != nil {
		updates["image_url"] = optionalText(fe, "image_url", in.ImageURL, 0)
	}

	check := func(p *models.Post) error {
		if err := ensureOwner(p.UserID, in.UserID, "posts"); err != nil {
			return err
		}
		return fe.Err()
	}
	if err := s.postRepo.Update(ctx, in.PostID, check, updates); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, in.PostID, in.UserID)
}

// DeletePost removes the post together with its comments, likes and shares.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) (err error) {
	ctx, span := observability.StartSpan(ctx, "post_service", "delete",
		attribute.Int64("post.id", int64(in.PostID)))
	defer func() { observability.EndSpan(span, err) }()

	check := func(p *models.Post) error {
		return ensureOwner(p.UserID, in.UserID, "posts")
	}
	if err := s.postRepo.DeleteCascade(ctx, in.PostID, check); err != nil {
		return err
	}
	observability.PostsDeleted.Inc()
	return nil
}

// ToggleLike flips the user's like on the post and reports the new state.
func (s *PostService) ToggleLike(ctx context.Context, postID, userID uint) (res *models.LikeResult, err error) {
	ctx, span := observability.StartSpan(ctx, "post_service", "toggle_like",
		attribute.Int64("post.id", int64(postID)))
	defer func() { observability.EndSpan(span, err) }()

	res, err = s.likeRepo.Toggle(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	observability.RecordLikeToggle(res.Liked)
	span.SetAttributes(attribute.Bool("like.liked", res.Liked))
	return res, nil
}
