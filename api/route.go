package api

import (
	"gamelink-suite/api/dev"
	"gamelink-suite/api/misc"
	"gamelink-suite/api/oauth"
	gamelinkAPIHelper "gamelink-suite/utils/api"
)

func RegisterRoutes(apiHelper *gamelinkAPIHelper.GameLinkRouterHelpers) {
	misc.RegisterMiscRoutes(apiHelper)
	oauth.RegisterOAuthRoutes(apiHelper)
	dev.RegisterDevRoutes(apiHelper)
}
