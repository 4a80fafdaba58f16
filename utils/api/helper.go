package api

import (
	"gamelink-suite/utils/database"
	"gamelink-suite/utils/oauth"

	"github.com/gofiber/fiber/v2"
)

type GameLinkRouterHelpers struct {
	Router         fiber.Router
	DBManager      *database.GameLinkDBManager
	SessionHandler *SessionHandler
	Flow           *oauth.Flow
	Projects       oauth.ProjectDirectory
	// GrantEvents is nil when the grant log is not configured.
	GrantEvents oauth.GrantEventLister
}

func NewGameLinkRouterHelpers(
	router fiber.Router,
	dbManager *database.GameLinkDBManager,
	sessionHandler *SessionHandler,
	flow *oauth.Flow,
	projects oauth.ProjectDirectory,
) *GameLinkRouterHelpers {
	return &GameLinkRouterHelpers{
		Router:         router,
		DBManager:      dbManager,
		SessionHandler: sessionHandler,
		Flow:           flow,
		Projects:       projects,
	}
}
