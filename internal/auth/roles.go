package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/domain"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

// RequireRole ensures the caller's role is one of the allowed set. It must
// run after AuthMiddleware.Handle; a missing principal means the route was
// wired without authentication and is rejected outright.
func RequireRole(allowed ...domain.UserRole) fiber.Handler {
	allowedSet := make(map[domain.UserRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.User == nil {
			return apperrors.NewUnauthorized(apperrors.MsgUserNotAuthenticated)
		}
		if _, exists := allowedSet[principal.User.Role]; !exists {
			return apperrors.NewForbidden(apperrors.MsgPermissionDenied)
		}
		return c.Next()
	}
}

// RequireAnyRole ensures the caller is authenticated, regardless of role.
func RequireAnyRole() fiber.Handler {
	return RequireRole(domain.RoleAdmin, domain.RoleUser)
}
