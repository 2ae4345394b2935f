package database

import (
	"errors"

	"github.com/Shubharvey/brickbook-sub001/config"
	"github.com/Shubharvey/brickbook-sub001/internal/models"
	"github.com/Shubharvey/brickbook-sub001/internal/utils"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// SeedOwner creates the default owner account from config if it does not
// exist yet. Skipped entirely when OWNER_EMAIL is unset.
func SeedOwner() {
	email := config.AppConfig.Defaults.OwnerEmail
	if email == "" {
		return
	}

	var owner models.User
	err := DB.Where("email = ?", email).First(&owner).Error
	if err == nil {
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Error().Err(err).Msg("Failed to look up owner account")
		return
	}

	hashedPassword, err := utils.HashPassword(config.AppConfig.Defaults.OwnerPassword)
	if err != nil {
		log.Error().Err(err).Msg("Failed to hash owner password")
		return
	}

	owner = models.User{
		Name:         "Owner",
		Email:        email,
		BusinessName: config.AppConfig.Defaults.BusinessName,
		PasswordHash: hashedPassword,
		IsActive:     true,
	}
	if err := DB.Create(&owner).Error; err != nil {
		log.Error().Err(err).Msg("Failed to seed owner account")
		return
	}
	log.Info().Str("email", email).Msg("Owner account seeded")
}
