package middleware

import (
	"github.com/gofiber/fiber/v2"

	"filevault/internal/auth"
	"filevault/internal/model"
)

// Authenticator verifies an Authorization header value.
type Authenticator interface {
	Authenticate(header string) (model.Principal, error)
}

// Auth rejects requests without a valid bearer token. The principal is stored in
// the request's user context; the *auth.Error is left to the ErrorHandler.
func Auth(authn Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := authn.Authenticate(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return err
		}
		c.SetUserContext(auth.WithPrincipal(c.UserContext(), p))
		return c.Next()
	}
}
