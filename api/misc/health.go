package misc

import (
	"context"
	"time"

	gamelinkAPIHelper "gamelink-suite/utils/api"
	"gamelink-suite/version"

	"github.com/gofiber/fiber/v2"
)

const healthPingTimeout = 2 * time.Second

func handleHealth(apiHelper *gamelinkAPIHelper.GameLinkRouterHelpers) fiber.Handler {
	return func(c *fiber.Ctx) error {
		resp := fiber.Map{
			"status":  "ok",
			"time":    time.Now().Unix(),
			"version": version.Version,
		}
		if apiHelper.DBManager == nil {
			return c.JSON(resp)
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), healthPingTimeout)
		defer cancel()
		backends := fiber.Map{}
		for name, err := range apiHelper.DBManager.Ping(ctx) {
			if err != nil {
				backends[name] = err.Error()
				resp["status"] = "degraded"
				continue
			}
			backends[name] = "ok"
		}
		resp["backends"] = backends
		if resp["status"] != "ok" {
			return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
		}
		return c.JSON(resp)
	}
}

func registerHealthRoutes(apiHelper *gamelinkAPIHelper.GameLinkRouterHelpers) {
	apiHelper.Router.Get("/health", handleHealth(apiHelper))
}
