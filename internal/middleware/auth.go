package middleware

import (
	"errors"

	"sitestock-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const userLocal = "user"

// ErrNoIdentity means the session carries no usable user/org identity.
var ErrNoIdentity = errors.New("no identity in session")

// RequireAuth ensures a user is in the session. Returns 401 with standard error format if not.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := c.Locals(userLocal)
		if user == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		return c.Next()
	}
}

// GetUser returns the session user from Locals (nil if not logged in).
func GetUser(c *fiber.Ctx) interface{} {
	return c.Locals(userLocal)
}

// Identity is the tenant + actor pair every ledger operation is scoped by.
type Identity struct {
	OrgID  uuid.UUID
	UserID uuid.UUID
}

// SessionIdentity extracts the acting user and organization from the session.
// Every catalog/registry/ledger/reservation operation takes these as explicit
// parameters; there is no process-wide current organization.
func SessionIdentity(c *fiber.Ctx) (Identity, error) {
	m, ok := GetUser(c).(map[string]interface{})
	if !ok {
		return Identity{}, ErrNoIdentity
	}
	userIDStr, _ := m["user_id"].(string)
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return Identity{}, ErrNoIdentity
	}
	orgIDStr, _ := m["org_id"].(string)
	orgID, err := uuid.Parse(orgIDStr)
	if err != nil {
		return Identity{}, ErrNoIdentity
	}
	return Identity{OrgID: orgID, UserID: userID}, nil
}
