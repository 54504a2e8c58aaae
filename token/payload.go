package token

import (
	"errors"
	"fmt"
	"time"

	"solar-proposal-backend/utils/dates"

	"github.com/google/uuid"
)

var (
	ErrExpired      = errors.New("token has expired")
	ErrInvalidToken = errors.New("token is invalid")
)

type Payload struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiredAt time.Time `json:"expired_at"`
}

func NewPayload(userID uuid.UUID, username string, duration time.Duration) (*Payload, error) {
	if username == "" {
		return nil, errors.New("username cannot be empty")
	}
	if duration <= 0 {
		return nil, errors.New("duration must be positive")
	}

	tokenID, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}

	issuedAt := time.Now().In(dates.Location)
	return &Payload{
		ID:        tokenID,
		UserID:    userID,
		Username:  username,
		IssuedAt:  issuedAt,
		ExpiredAt: issuedAt.Add(duration),
	}, nil
}

func (p *Payload) Valid() error {
	if time.Now().After(p.ExpiredAt) {
		return ErrExpired
	}
	return nil
}

func (p *Payload) String() string {
	return fmt.Sprintf("ID: %s, User: %s, IssuedAt: %s, ExpiredAt: %s", p.ID, p.Username, p.IssuedAt, p.ExpiredAt)
}
