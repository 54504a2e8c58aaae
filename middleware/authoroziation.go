package middleware

import (
	"errors"

	"solar-proposal-backend/config"
	"solar-proposal-backend/token"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func unauthorized(c *fiber.Ctx, reason string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": "Unauthorized",
		"data":    nil,
		"error":   reason,
	})
}

func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Something went wrong",
		"data":    nil,
		"error":   "An internal server error occurred.",
	})
}

// CurrentUser returns the payload stored by ProtectedRoute.
func CurrentUser(c *fiber.Ctx) *token.Payload {
	payload, _ := c.Locals("user").(*token.Payload)
	return payload
}

// ProtectedRoute accepts a valid access token, or rotates a valid refresh
// token into a fresh pair.
func ProtectedRoute(ctx *AppContext) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := c.Cookies(AccessCookie)
		refreshToken := c.Cookies(RefreshCookie)

		if accessToken != "" {
			payload, err := ctx.PasetoMaker.VerifyToken(accessToken)
			if err == nil {
				c.Locals("user", payload)
				return c.Next()
			}
			config.Logger.Debug("Invalid access token encountered", zap.Error(err))
		}

		if refreshToken == "" {
			config.Logger.Debug("No refresh token provided in request")
			return unauthorized(c, "Authentication required")
		}

		refreshPayload, err := ctx.PasetoMaker.VerifyToken(refreshToken)
		if err != nil {
			config.Logger.Warn("Refresh token verification failed", zap.Error(err))
			return unauthorized(c, "Session expired or invalid. Please log in again.")
		}

		userID, err := ctx.Sessions.Lookup(ctx.Ctx, refreshToken)
		if errors.Is(err, token.ErrSessionNotFound) {
			config.Logger.Warn("Refresh token not found in session store",
				zap.String("payload_id", refreshPayload.ID.String()),
				zap.String("username", refreshPayload.Username),
			)
			return unauthorized(c, "Session invalid. Please log in again.")
		} else if err != nil {
			config.Logger.Error("Error accessing session store for refresh token validation",
				zap.String("payload_id", refreshPayload.ID.String()),
				zap.Error(err),
			)
			return internalError(c)
		}

		if err := ctx.Sessions.Delete(ctx.Ctx, refreshToken); err != nil {
			config.Logger.Warn("Error deleting old refresh token", zap.String("user_id", userID), zap.Error(err))
		}

		newAccess, newRefresh, payload, err := IssueSession(ctx, refreshPayload.UserID, refreshPayload.Username)
		if err != nil {
			config.Logger.Error("Could not rotate session", zap.String("user_id", userID), zap.Error(err))
			return internalError(c)
		}
		SetSessionCookies(c, newAccess, newRefresh)

		c.Locals("user", payload)
		return c.Next()
	}
}

// IssueSession creates an access/refresh pair and records the refresh token.
func IssueSession(ctx *AppContext, userID uuid.UUID, username string) (string, string, *token.Payload, error) {
	accessToken, payload, err := ctx.PasetoMaker.CreateToken(userID, username, AccessTokenDuration)
	if err != nil {
		return "", "", nil, err
	}
	refreshToken, _, err := ctx.PasetoMaker.CreateToken(userID, username, RefreshTokenDuration)
	if err != nil {
		return "", "", nil, err
	}
	if err := ctx.Sessions.Save(ctx.Ctx, refreshToken, userID.String(), RefreshTokenDuration); err != nil {
		return "", "", nil, err
	}
	return accessToken, refreshToken, payload, nil
}
