package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/amirphl/radio-contracts/app/services"
	"github.com/amirphl/radio-contracts/config"
	"github.com/amirphl/radio-contracts/models"
	"github.com/amirphl/radio-contracts/repository"
	"github.com/amirphl/radio-contracts/utils"
	"github.com/rs/zerolog/log"
)

// ensureBootstrapAdmin creates the configured admin when no user holds its username
func ensureBootstrapAdmin(ctx context.Context, userRepo repository.UserRepository, hasher services.PasswordHasher, cfg config.BootstrapConfig) error {
	username := strings.TrimSpace(cfg.AdminUsername)

	existing, err := userRepo.ByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hash, err := hasher.Hash(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash bootstrap password: %w", err)
	}

	fullName := strings.TrimSpace(cfg.AdminFullName)
	if fullName == "" {
		fullName = "Administrator"
	}

	admin := &models.User{
		Username:     username,
		Email:        strings.ToLower(strings.TrimSpace(cfg.AdminEmail)),
		PasswordHash: hash,
		FullName:     fullName,
		Role:         models.RoleAdmin,
		IsActive:     utils.ToPtr(true),
		CreatedAt:    utils.UTCNow(),
		UpdatedAt:    utils.UTCNow(),
	}
	if err := userRepo.Save(ctx, admin); err != nil {
		return err
	}

	log.Info().Uint("user_id", admin.ID).Str("username", username).Msg("Bootstrap admin created")
	return nil
}
