package middleware

import (
	"time"

	"solar-proposal-backend/config"

	"github.com/gofiber/fiber/v2"
)

const (
	AccessTokenDuration  = 15 * time.Minute
	RefreshTokenDuration = 7 * 24 * time.Hour

	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"
)

func sessionCookie(name, value string, expires time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Expires:  expires,
		HTTPOnly: true,
		Secure:   config.GetEnvBool("COOKIE_SECURE", false),
		SameSite: "Lax",
		Path:     "/",
		Domain:   config.GetEnv("COOKIE_DOMAIN"),
	}
}

// SetSessionCookies writes the access and refresh cookies.
func SetSessionCookies(c *fiber.Ctx, accessToken, refreshToken string) {
	now := time.Now()
	c.Cookie(sessionCookie(AccessCookie, accessToken, now.Add(AccessTokenDuration)))
	c.Cookie(sessionCookie(RefreshCookie, refreshToken, now.Add(RefreshTokenDuration)))
}

// ClearSessionCookies expires both cookies immediately.
func ClearSessionCookies(c *fiber.Ctx) {
	past := time.Now().Add(-time.Hour)
	c.Cookie(sessionCookie(AccessCookie, "", past))
	c.Cookie(sessionCookie(RefreshCookie, "", past))
}
