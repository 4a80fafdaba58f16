package misc

import (
	gamelinkAPIHelper "gamelink-suite/utils/api"
)

func RegisterMiscRoutes(apiHelper *gamelinkAPIHelper.GameLinkRouterHelpers) {
	registerHealthRoutes(apiHelper)
}
