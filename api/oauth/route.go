package oauth

import (
	gamelinkAPIHelper "gamelink-suite/utils/api"
	gamelinkOAuth "gamelink-suite/utils/oauth"
)

func RegisterOAuthRoutes(apiHelper *gamelinkAPIHelper.GameLinkRouterHelpers) {
	r := apiHelper.Router.Group("/api/oauth")

	// Game facing
	r.Post("/request", handleRequest(apiHelper))
	r.Post("/token", handleToken(apiHelper))
	r.Get("/gameinfo", handleGameInfo(apiHelper))
	r.Get("/check", handleCheck(apiHelper))
	r.Get("/userdata", gamelinkOAuth.ExtractAccessToken(), handleUserData(apiHelper))

	// Consent screen
	r.Get("/requestinfo", handleRequestInfo(apiHelper))
	r.Post("/authorize", apiHelper.SessionHandler.VerifySessionToken, handleAuthorize(apiHelper))
}
