package dev

import (
	gamelinkAPIHelper "gamelink-suite/utils/api"
)

func RegisterDevRoutes(apiHelper *gamelinkAPIHelper.GameLinkRouterHelpers) {
	r := apiHelper.Router.Group("/api/dev", apiHelper.SessionHandler.VerifySessionToken)

	r.Get("/projects/:id/oauth-scopes", handleGetProjectScopes(apiHelper))
	r.Post("/projects/:id/oauth-scopes", handleUpdateProjectScopes(apiHelper))
	r.Get("/projects/:id/grant-events", handleListGrantEvents(apiHelper))
}
