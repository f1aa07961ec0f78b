package models

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Response is the envelope wrapping every API response body.
type Response struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    any                 `json:"data,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// Respond writes a successful envelope with the given status.
func Respond(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// RespondWithError writes a failure envelope. Internal errors never expose
// the wrapped cause to the client.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	response := Response{Success: false}

	var appErr *AppError
	if errors.As(err, &appErr) {
		response.Message = appErr.Message
		response.Errors = appErr.Fields
	} else {
		response.Message = "Internal server error"
	}

	return c.Status(status).JSON(response)
}
