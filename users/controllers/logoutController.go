package controllers

import (
	"solar-proposal-backend/config"
	"solar-proposal-backend/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func (ac *AuthController) LogoutUser(c *fiber.Ctx) error {
	if refreshToken := c.Cookies(middleware.RefreshCookie); refreshToken != "" {
		if err := ac.App.Sessions.Delete(ac.App.Ctx, refreshToken); err != nil {
			config.Logger.Error("Failed to delete refresh token during logout", zap.Error(err))
		}
	} else {
		config.Logger.Debug("No refresh token found in cookies during logout attempt")
	}

	middleware.ClearSessionCookies(c)

	config.Logger.Info("User logged out successfully", zap.String("client_ip", c.IP()))

	return c.JSON(fiber.Map{
		"message": "Logged out successfully",
		"data":    nil,
		"error":   nil,
	})
}
