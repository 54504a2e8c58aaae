package middleware

import (
	"context"

	"solar-proposal-backend/token"
)

// AppContext bundles all dependencies
type AppContext struct {
	PasetoMaker token.Maker
	Sessions    token.SessionStore
	Ctx         context.Context
}
