package config

import (
	"errors"
	"fmt"

	"solar-proposal-backend/db/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedInitialUser creates the sales account configured by ADMIN_USERNAME and
// ADMIN_PASSWORD when no user with that name exists yet.
func SeedInitialUser(db *gorm.DB) error {
	username := GetEnv("ADMIN_USERNAME")
	password := GetEnv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		Logger.Warn("ADMIN_USERNAME or ADMIN_PASSWORD not set, skipping initial user seed")
		return nil
	}

	var existing models.User
	err := db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		Logger.Info("Initial user already exists", zap.String("username", existing.Username))
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("error checking for existing user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:         uuid.New(),
		Username:   username,
		Email:      GetEnv("ADMIN_EMAIL"),
		Password:   string(hashed),
		TOTPSecret: GetEnv("ADMIN_TOTP_SECRET"),
		Active:     true,
		CreatedBy:  "system",
	}
	if err := db.Create(&user).Error; err != nil {
		return fmt.Errorf("failed to create initial user: %w", err)
	}

	Logger.Info("Initial user created", zap.String("username", user.Username))
	return nil
}
