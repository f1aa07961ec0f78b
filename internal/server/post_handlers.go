package server

import (
	"potluck/internal/models"
	"potluck/internal/service"

	"github.com/gofiber/fiber/v2"
)

type postRequest struct {
	Title    *string `json:"title"`
	Category *string `json:"category"`
	Content  *string `json:"content"`
	Location *string `json:"location"`
	Tags     *string `json:"tags"`
	ImageURL *string `json:"image_url"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// GetPosts handles GET /api/posts
// @Summary List posts
// @Description Newest first, paginated, optionally filtered by category
// @Tags posts
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size (max 100)" default(10)
// @Param category query string false "Recipes, Organizations, Offers or Weekly Menu"
// @Success 200 {object} models.Response{data=object{posts=[]models.Post,pagination=object}}
// @Failure 422 {object} models.Response
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	p := parsePagination(c)
	page, err := s.postService.ListPosts(c.UserContext(), service.ListPostsInput{
		Page:     p.Page,
		PageSize: p.PageSize,
		ViewerID: s.optionalUserID(c),
		Category: c.Query("category"),
	})
	if err != nil {
		return respondError(c, err)
	}

	return models.Respond(c, fiber.StatusOK, "", fiber.Map{
		"posts": page.Posts,
		"pagination": fiber.Map{
			"page":      page.Page,
			"page_size": page.PageSize,
			"total":     page.Total,
			"has_more":  page.HasMore,
		},
	})
}

// CreatePost handles POST /api/posts
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body postRequest true "Post"
// @Success 201 {object} models.Response{data=models.Post}
// @Failure 401 {object} models.Response
// @Failure 422 {object} models.Response
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req postRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:   currentUserID(c),
		Title:    deref(req.Title),
		Category: deref(req.Category),
		Content:  deref(req.Content),
		Location: req.Location,
		Tags:     req.Tags,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusCreated, "Post created successfully", post)
}

// GetPost handles GET /api/posts/:id
// @Summary Get a post with its comments, likes and shares
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Response{data=models.Post}
// @Failure 404 {object} models.Response
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "Post")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), id, s.optionalUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "", post)
}

// UpdatePost handles PUT and PATCH /api/posts/:id
// @Summary Update a post
// @Description Only supplied fields change
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body postRequest true "Fields to change"
// @Success 200 {object} models.Response{data=models.Post}
// @Failure 403 {object} models.Response
// @Failure 404 {object} models.Response
// @Failure 422 {object} models.Response
// @Router /posts/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "Post")
	if err != nil {
		return nil
	}
	var req postRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		PostID:   id,
		UserID:   currentUserID(c),
		Title:    req.Title,
		Category: req.Category,
		Content:  req.Content,
		Location: req.Location,
		Tags:     req.Tags,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Post updated successfully", post)
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete a post and its engagement
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} models.Response
// @Failure 403 {object} models.Response
// @Failure 404 {object} models.Response
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "Post")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), service.DeletePostInput{
		PostID: id,
		UserID: currentUserID(c),
	}); err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Post deleted successfully", nil)
}
