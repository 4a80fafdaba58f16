package dev

import (
	"errors"

	gamelinkAPIHelper "gamelink-suite/utils/api"
	gamelinkLogger "gamelink-suite/utils/logger"
	gamelinkOAuth "gamelink-suite/utils/oauth"

	"github.com/gofiber/fiber/v2"
)

func projectScopesData(scopes gamelinkOAuth.ScopeSet) *ProjectScopesData {
	return &ProjectScopesData{
		Scopes:    scopes.Clone(),
		Available: gamelinkOAuth.AllScopes,
	}
}

// GET /api/dev/projects/:id/oauth-scopes
func handleGetProjectScopes(apiHelper *gamelinkAPIHelper.GameLinkRouterHelpers) fiber.Handler {
	return func(c *fiber.Ctx) error {
		developerID := gamelinkAPIHelper.UserIDFromLocals(c)
		scopes, err := apiHelper.Projects.GetProjectScopes(c.UserContext(), c.Params("id"), developerID)
		if errors.Is(err, gamelinkOAuth.ErrProjectNotFound) {
			return gamelinkAPIHelper.ErrorNotFound(c, "project not found")
		}
		if err != nil {
			gamelinkLogger.Errorf("failed to load oauth scopes of project %s: %v", c.Params("id"), err)
			return gamelinkAPIHelper.ErrorInternal(c, "failed to load oauth scopes")
		}
		return gamelinkAPIHelper.SuccessResponse(c, "ok", projectScopesData(scopes))
	}
}

// POST /api/dev/projects/:id/oauth-scopes {scopes}
func handleUpdateProjectScopes(apiHelper *gamelinkAPIHelper.GameLinkRouterHelpers) fiber.Handler {
	return func(c *fiber.Ctx) error {
		developerID := gamelinkAPIHelper.UserIDFromLocals(c)
		var req UpdateScopesPayload
		if err := c.BodyParser(&req); err != nil {
			return gamelinkAPIHelper.ErrorBadRequest(c, "invalid request body")
		}
		scopes, err := gamelinkOAuth.ValidateCatalogScopes(req.Scopes)
		if err != nil {
			return gamelinkAPIHelper.ErrorBadRequest(c, err.Error())
		}
		err = apiHelper.Projects.SetProjectScopes(c.UserContext(), c.Params("id"), developerID, scopes)
		if errors.Is(err, gamelinkOAuth.ErrProjectNotFound) {
			return gamelinkAPIHelper.ErrorNotFound(c, "project not found")
		}
		if err != nil {
			gamelinkLogger.Errorf("failed to update oauth scopes of project %s: %v", c.Params("id"), err)
			return gamelinkAPIHelper.ErrorInternal(c, "failed to update oauth scopes")
		}
		gamelinkLogger.Infof("developer %s set oauth scopes of project %s to [%s]", developerID, c.Params("id"), scopes)
		return gamelinkAPIHelper.SuccessResponse(c, "oauth scopes updated", projectScopesData(scopes))
	}
}
