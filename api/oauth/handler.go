package oauth

import (
	gamelinkAPIHelper "gamelink-suite/utils/api"
	gamelinkLogger "gamelink-suite/utils/logger"
	gamelinkOAuth "gamelink-suite/utils/oauth"

	"github.com/gofiber/fiber/v2"
)

// handleRequest issues a request token for a game.
// POST /api/oauth/request {apiKey, scopes?}
func handleRequest(apiHelper *gamelinkAPIHelper.GameLinkRouterHelpers) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req RequestTokenPayload
		if err := parseBody(c, &req); err != nil {
			return gamelinkAPIHelper.ErrorJSON(c, fiber.StatusBadRequest, "Invalid request body")
		}
		issued, err := apiHelper.Flow.Request(c.UserContext(), req.APIKey, req.Scopes)
		if err != nil {
			return gamelinkAPIHelper.FlowErrorResponse(c, err)
		}
		return c.JSON(RequestTokenResponse{
			RequestToken: issued.RequestToken,
			ExpiresIn:    issued.ExpiresIn,
		})
	}
}

// handleAuthorize binds a request token to the signed-in user.
// POST /api/oauth/authorize {request_token}
func handleAuthorize(apiHelper *gamelinkAPIHelper.GameLinkRouterHelpers) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := gamelinkAPIHelper.UserIDFromLocals(c)
		var req RequestTokenBody
		if err := parseBody(c, &req); err != nil {
			return gamelinkAPIHelper.ErrorJSON(c, fiber.StatusBadRequest, "Invalid request body")
		}
		if err := apiHelper.Flow.Authorize(c.UserContext(), req.RequestToken, userID); err != nil {
			return gamelinkAPIHelper.FlowErrorResponse(c, err)
		}
		gamelinkLogger.Infof("user %s authorized request token %s", userID, gamelinkLogger.TokenPrefix(req.RequestToken))
		return c.JSON(AuthorizeResponse{Success: true})
	}
}

// handleToken exchanges an authorized request token for an access token.
// POST /api/oauth/token {request_token}
func handleToken(apiHelper *gamelinkAPIHelper.GameLinkRouterHelpers) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req RequestTokenBody
		if err := parseBody(c, &req); err != nil {
			return gamelinkAPIHelper.ErrorJSON(c, fiber.StatusBadRequest, "Invalid request body")
		}
		at, err := apiHelper.Flow.Exchange(c.UserContext(), req.RequestToken)
		if err != nil {
			return gamelinkAPIHelper.FlowErrorResponse(c, err)
		}
		return c.JSON(AccessTokenResponse{AccessToken: at.Token})
	}
}

// GET /api/oauth/gameinfo?apiKey=
func handleGameInfo(apiHelper *gamelinkAPIHelper.GameLinkRouterHelpers) fiber.Handler {
	return func(c *fiber.Ctx) error {
		info, err := apiHelper.Flow.GameInfo(c.UserContext(), c.Query("apiKey"))
		if err != nil {
			return gamelinkAPIHelper.FlowErrorResponse(c, err)
		}
		return c.JSON(GameInfoResponse{
			Name:   info.Name,
			Logo:   info.Logo,
			Scopes: info.AllowedScopes.Clone(),
		})
	}
}

// GET /api/oauth/check?apiKey=&userId=
func handleCheck(apiHelper *gamelinkAPIHelper.GameLinkRouterHelpers) fiber.Handler {
	return func(c *fiber.Ctx) error {
		at, err := apiHelper.Flow.CheckGrant(c.UserContext(), c.Query("apiKey"), c.Query("userId"))
		if err != nil {
			return gamelinkAPIHelper.FlowErrorResponse(c, err)
		}
		return c.JSON(CheckResponse{
			AccessToken:   at.Token,
			AllowedScopes: at.Scopes.Clone(),
			CreatedAt:     at.CreatedAt.UnixMilli(),
		})
	}
}

// GET /api/oauth/userdata?access_token= (or Authorization: Bearer)
func handleUserData(apiHelper *gamelinkAPIHelper.GameLinkRouterHelpers) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := apiHelper.Flow.UserData(c.UserContext(), gamelinkOAuth.AccessTokenFromLocals(c))
		if err != nil {
			return gamelinkAPIHelper.FlowErrorResponse(c, err)
		}
		return c.JSON(UserDataResponse{User: user})
	}
}

// GET /api/oauth/requestinfo?request_token=
func handleRequestInfo(apiHelper *gamelinkAPIHelper.GameLinkRouterHelpers) fiber.Handler {
	return func(c *fiber.Ctx) error {
		info, err := apiHelper.Flow.RequestInfo(c.UserContext(), c.Query("request_token"))
		if err != nil {
			return gamelinkAPIHelper.FlowErrorResponse(c, err)
		}
		return c.JSON(RequestInfoResponse{
			Game:              RequestInfoGame{Name: info.Game.Name, Logo: info.Game.Logo},
			Scopes:            info.Scopes.Clone(),
			ScopeDescriptions: info.Descriptions,
			ExpiresIn:         info.ExpiresIn,
		})
	}
}

// parseBody leaves out unchanged for an empty body so missing fields surface as
// validation errors rather than decode errors.
func parseBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	return c.BodyParser(out)
}
