package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	contextUserIDKey = "user_id"
	accessTokenQuery = "access_token"
)

// AuthRequired accepts a bearer token in the Authorization header or, for
// EventSource clients that cannot set headers, in the access_token query.
func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	rawToken := bearerToken(c.Get(fiber.HeaderAuthorization))
	if rawToken == "" {
		rawToken = strings.TrimSpace(c.Query(accessTokenQuery))
	}
	if rawToken == "" {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	userID, err := handler.tokens.Parse(rawToken)
	if err != nil {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	c.Locals(contextUserIDKey, userID)
	return c.Next()
}

func currentUserID(c *fiber.Ctx) (string, bool) {
	userID, ok := c.Locals(contextUserIDKey).(string)
	return userID, ok && userID != ""
}

func bearerToken(header string) string {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
