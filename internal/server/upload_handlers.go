package server

import (
	"io"

	"potluck/internal/models"
	"potluck/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UploadImage handles POST /api/uploads/images
// @Summary Upload a post image
// @Description jpeg, png, gif or webp, decoded to verify the content
// @Tags uploads
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image file"
// @Success 200 {object} models.Response{data=service.UploadResult}
// @Failure 422 {object} models.Response
// @Router /uploads/images [post]
func (s *Server) UploadImage(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return respondError(c, models.NewFieldValidationError(map[string][]string{
			"file": {"The file field is required."},
		}))
	}

	f, err := fh.Open()
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	defer f.Close()

	// Read one byte past the limit so oversize files are still detected.
	limit := int64(s.config.UploadMaxSizeKB)*1024 + 1
	if s.config.UploadMaxSizeKB <= 0 {
		limit = int64(service.DefaultUploadMaxSizeKB)*1024 + 1
	}
	content, err := io.ReadAll(io.LimitReader(f, limit))
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	res, err := s.uploadService.UploadImage(c.UserContext(), service.UploadImageInput{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Content:     content,
	})
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Image uploaded successfully", res)
}

// DeleteImage handles DELETE /api/uploads/images
// @Summary Delete an uploaded post image
// @Tags uploads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{path=string} true "Stored path"
// @Success 200 {object} models.Response
// @Failure 422 {object} models.Response
// @Router /uploads/images [delete]
func (s *Server) DeleteImage(c *fiber.Ctx) error {
	var req struct {
		Path string `json:"path"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	if err := s.uploadService.DeleteImage(c.UserContext(), req.Path); err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Image deleted successfully", nil)
}
