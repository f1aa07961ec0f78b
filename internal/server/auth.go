package server

import (
	"strings"

	"potluck/internal/middleware"
	"potluck/internal/models"
	"potluck/internal/service"

	"github.com/gofiber/fiber/v2"
)

const claimsLocal = "claims"

func bearerToken(c *fiber.Ctx) string {
	scheme, token, ok := strings.Cut(c.Get(fiber.HeaderAuthorization), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// AuthRequired rejects requests without a valid, unrevoked bearer token and
// stores the acting user id in c.Locals("userID").
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return respondError(c, models.NewUnauthorizedError("Authorization required"))
		}

		claims, err := s.authService.Authenticate(c.UserContext(), token)
		if err != nil {
			return respondError(c, err)
		}
		userID, _ := claims.UserID()

		c.Locals("userID", userID)
		c.Locals(claimsLocal, claims)
		c.SetUserContext(middleware.WithUserID(c.UserContext(), userID))
		return c.Next()
	}
}

// optionalUserID returns the viewer id when a valid token is present, without
// rejecting anonymous requests.
func (s *Server) optionalUserID(c *fiber.Ctx) uint {
	token := bearerToken(c)
	if token == "" {
		return 0
	}
	claims, err := s.authService.Authenticate(c.UserContext(), token)
	if err != nil {
		return 0
	}
	id, _ := claims.UserID()
	return id
}

func currentClaims(c *fiber.Ctx) *service.TokenClaims {
	claims, _ := c.Locals(claimsLocal).(*service.TokenClaims)
	return claims
}
