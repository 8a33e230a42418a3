package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/delivery-dispatch/internal/core/domain"
)

// AgentResolver maps an authenticated user to their agent record id.
type AgentResolver interface {
	AgentIDForUser(ctx context.Context, userID string) (string, error)
}

// AgentIdentity sets "agent_id" for agent tokens whose user has registered as
// an agent. Other roles pass through untouched. Must run after Auth.
func AgentIdentity(resolver AgentResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			userID, _ := c.Get("user_id").(string)
			if role != domain.RoleAgent || userID == "" {
				return next(c)
			}

			agentID, err := resolver.AgentIDForUser(c.Request().Context(), userID)
			switch {
			case err == nil:
				c.Set("agent_id", agentID)
			case errors.Is(err, domain.ErrAgentNotFound):
				// not onboarded yet; only /agent/register is usable
			default:
				return echo.NewHTTPError(http.StatusInternalServerError, "could not resolve agent identity").SetInternal(err)
			}
			return next(c)
		}
	}
}
