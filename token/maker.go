package token

import (
	"time"

	"github.com/google/uuid"
)

// Maker creates and verifies session tokens.
type Maker interface {
	CreateToken(userID uuid.UUID, username string, duration time.Duration) (string, *Payload, error)
	VerifyToken(token string) (*Payload, error)
}
