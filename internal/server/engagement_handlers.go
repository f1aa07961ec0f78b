package server

import (
	"potluck/internal/models"
	"potluck/internal/service"

	"github.com/gofiber/fiber/v2"
)

// postIDField validates the post_id member of an engagement request body.
func postIDField(id uint) error {
	if id == 0 {
		return models.NewFieldValidationError(map[string][]string{
			"post_id": {"The post_id field is required."},
		})
	}
	return nil
}

// ToggleLike handles POST /api/likes
// @Summary Like or unlike a post
// @Tags likes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{post_id=int} true "Post to toggle"
// @Success 200 {object} models.Response{data=models.LikeResult}
// @Failure 404 {object} models.Response
// @Failure 422 {object} models.Response
// @Router /likes [post]
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	var req struct {
		PostID uint `json:"post_id"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if err := postIDField(req.PostID); err != nil {
		return respondError(c, err)
	}

	res, err := s.postService.ToggleLike(c.UserContext(), req.PostID, currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}

	msg := "Post unliked"
	if res.Liked {
		msg = "Post liked"
	}
	return models.Respond(c, fiber.StatusOK, msg, res)
}

// GetComments handles GET /api/posts/:id/comments
// @Summary List a post's comments
// @Tags comments
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Response{data=[]models.Comment}
// @Failure 404 {object} models.Response
// @Router /posts/{id}/comments [get]
func (s *Server) GetComments(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "Post")
	if err != nil {
		return nil
	}

	comments, err := s.commentService.ListComments(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "", comments)
}

// CreateComment handles POST /api/comments
// @Summary Comment on a post
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{post_id=int,comment=string} true "Comment"
// @Success 201 {object} models.Response{data=models.Comment}
// @Failure 404 {object} models.Response
// @Failure 422 {object} models.Response
// @Router /comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req struct {
		PostID  uint   `json:"post_id"`
		Comment string `json:"comment"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if err := postIDField(req.PostID); err != nil {
		return respondError(c, err)
	}

	comment, err := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		PostID: req.PostID,
		UserID: currentUserID(c),
		Body:   req.Comment,
	})
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusCreated, "Comment added successfully", comment)
}

// DeleteComment handles DELETE /api/comments/:id
// @Summary Delete one of your comments
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 200 {object} models.Response
// @Failure 403 {object} models.Response
// @Failure 404 {object} models.Response
// @Router /comments/{id} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "Comment")
	if err != nil {
		return nil
	}

	if err := s.commentService.DeleteComment(c.UserContext(), service.DeleteCommentInput{
		CommentID: id,
		UserID:    currentUserID(c),
	}); err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Comment deleted successfully", nil)
}

// SharePost handles POST /api/shares
// @Summary Record a share of a post
// @Tags shares
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{post_id=int,shared_to=string} true "Share"
// @Success 201 {object} models.Response{data=models.Share}
// @Failure 404 {object} models.Response
// @Failure 422 {object} models.Response
// @Router /shares [post]
func (s *Server) SharePost(c *fiber.Ctx) error {
	var req struct {
		PostID   uint    `json:"post_id"`
		SharedTo *string `json:"shared_to"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if err := postIDField(req.PostID); err != nil {
		return respondError(c, err)
	}

	share, err := s.shareService.SharePost(c.UserContext(), service.SharePostInput{
		PostID:   req.PostID,
		UserID:   currentUserID(c),
		SharedTo: req.SharedTo,
	})
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusCreated, "Post shared successfully", share)
}
