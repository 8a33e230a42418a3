package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/delivery-dispatch/internal/core/domain"
)

// ctxActor extracts the caller injected by the Auth and AgentIdentity
// middleware and performs a fast-fail check before any service call:
//   - role and user_id must be present (presence proves Auth ran).
//   - agent role requires an onboarded agent record; the actor id is the
//     agent id rather than the user id.
func ctxActor(c echo.Context) (domain.Actor, error) {
	role, _ := c.Get("role").(string)
	userID, _ := c.Get("user_id").(string)
	if role == "" || userID == "" {
		return domain.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	if role == domain.RoleAgent {
		agentID, _ := c.Get("agent_id").(string)
		if agentID == "" {
			return domain.Actor{}, echo.NewHTTPError(http.StatusForbidden, "agent profile not registered")
		}
		return domain.Actor{Role: role, ID: agentID}, nil
	}
	return domain.Actor{Role: role, ID: userID}, nil
}

// ctxUserID returns the authenticated user id.
func ctxUserID(c echo.Context) (string, error) {
	userID, _ := c.Get("user_id").(string)
	if userID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return userID, nil
}

// bindAndValidate decodes the request body into req and runs struct validation.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(req)
}
