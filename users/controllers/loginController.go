package controllers

import (
	"errors"
	"strings"
	"time"

	"solar-proposal-backend/config"
	"solar-proposal-backend/internal/metrics"
	"solar-proposal-backend/middleware"
	"solar-proposal-backend/users/repositories"
	"solar-proposal-backend/users/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AuthController struct {
	UserRepo repositories.UserRepository
	App      *middleware.AppContext
}

func NewAuthController(userRepo repositories.UserRepository, app *middleware.AppContext) *AuthController {
	return &AuthController{UserRepo: userRepo, App: app}
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	TOTPCode string `json:"totp_code"`
}

func (ac *AuthController) LoginUser(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		config.Logger.Error("Error parsing login request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request",
			"data":    nil,
			"error":   "Invalid request format.",
		})
	}
	req.Username = strings.TrimSpace(req.Username)

	user, err := ac.UserRepo.GetUserByUsername(req.Username)
	if err != nil || !user.Active || !services.CheckPasswordHash(req.Password, user.Password) {
		if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
			config.Logger.Error("Login attempt: database error", zap.String("username", req.Username), zap.Error(err))
		} else {
			config.Logger.Warn("Login attempt: invalid credentials", zap.String("username", req.Username))
		}
		metrics.IncLogin(metrics.ResultError)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication failed",
			"data":    nil,
			"error":   "Invalid username or password.",
		})
	}

	if user.TOTPEnabled() && !services.ValidateTOTPCode(user.TOTPSecret, req.TOTPCode) {
		config.Logger.Warn("Login attempt: TOTP code missing or invalid", zap.String("username", user.Username))
		metrics.IncLogin(metrics.ResultError)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "TOTP verification required",
			"data":    fiber.Map{"requires_totp": true},
			"error":   "Invalid or missing authenticator code.",
		})
	}

	accessToken, refreshToken, _, err := middleware.IssueSession(ac.App, user.ID, user.Username)
	if err != nil {
		config.Logger.Error("Could not issue session", zap.String("username", user.Username), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Something went wrong",
			"data":    nil,
			"error":   "An internal server error occurred.",
		})
	}
	middleware.SetSessionCookies(c, accessToken, refreshToken)

	if err := ac.UserRepo.UpdateLastLogin(user.ID, time.Now()); err != nil {
		config.Logger.Warn("Failed to record last login", zap.String("username", user.Username), zap.Error(err))
	}

	metrics.IncLogin(metrics.ResultSuccess)
	config.Logger.Info("User logged in", zap.String("username", user.Username), zap.String("client_ip", c.IP()))

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"data": fiber.Map{
			"user": user,
		},
		"error": nil,
	})
}

// AuthStatus never fails; it reports whether the access cookie is valid.
func (ac *AuthController) AuthStatus(c *fiber.Ctx) error {
	data := fiber.Map{"authenticated": false, "username": nil}
	if accessToken := c.Cookies(middleware.AccessCookie); accessToken != "" {
		if payload, err := ac.App.PasetoMaker.VerifyToken(accessToken); err == nil {
			data["authenticated"] = true
			data["username"] = payload.Username
		}
	}
	return c.JSON(fiber.Map{
		"message": "Authentication status",
		"data":    data,
		"error":   nil,
	})
}
