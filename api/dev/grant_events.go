package dev

import (
	"cmp"
	"errors"
	"slices"

	gamelinkAPIHelper "gamelink-suite/utils/api"
	gamelinkLogger "gamelink-suite/utils/logger"
	gamelinkOAuth "gamelink-suite/utils/oauth"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultGrantEventLimit = 50
	maxGrantEventLimit     = 200
)

// GET /api/dev/projects/:id/grant-events?user_id=&limit=
func handleListGrantEvents(apiHelper *gamelinkAPIHelper.GameLinkRouterHelpers) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if apiHelper.GrantEvents == nil {
			return gamelinkAPIHelper.ErrorUnavailable(c, "grant event log is disabled")
		}
		limit := c.QueryInt("limit", defaultGrantEventLimit)
		if limit <= 0 || limit > maxGrantEventLimit {
			return gamelinkAPIHelper.ErrorBadRequest(c, "limit must be between 1 and 200")
		}
		developerID := gamelinkAPIHelper.UserIDFromLocals(c)
		keys, err := apiHelper.Projects.ProjectAPIKeys(c.UserContext(), c.Params("id"), developerID)
		if errors.Is(err, gamelinkOAuth.ErrProjectNotFound) {
			return gamelinkAPIHelper.ErrorNotFound(c, "project not found")
		}
		if err != nil {
			gamelinkLogger.Errorf("failed to load api keys of project %s: %v", c.Params("id"), err)
			return gamelinkAPIHelper.ErrorInternal(c, "failed to load grant events")
		}

		var events []gamelinkOAuth.GrantEvent
		for _, key := range keys {
			found, err := apiHelper.GrantEvents.ListGrantEvents(c.UserContext(), key, c.Query("user_id"), int64(limit))
			if err != nil {
				gamelinkLogger.Errorf("failed to list grant events of %s: %v", key, err)
				return gamelinkAPIHelper.ErrorInternal(c, "failed to load grant events")
			}
			events = append(events, found...)
		}
		slices.SortStableFunc(events, func(a, b gamelinkOAuth.GrantEvent) int {
			return cmp.Compare(b.At.UnixNano(), a.At.UnixNano())
		})
		if len(events) > limit {
			events = events[:limit]
		}

		data := &GrantEventsData{Events: make([]GrantEventItem, 0, len(events))}
		for _, e := range events {
			data.Events = append(data.Events, GrantEventItem{
				Type:   string(e.Type),
				APIKey: e.APIKey,
				UserID: e.UserID,
				Scopes: e.Scopes.Clone(),
				At:     e.At.Unix(),
			})
		}
		return gamelinkAPIHelper.SuccessResponse(c, "ok", data)
	}
}
