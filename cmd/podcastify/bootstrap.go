package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"podcastify/internal/store"
	"podcastify/shared/go/auth"
)

const (
	demoUsername = "demo"
	demoPassword = "demo123"
	demoTokenTTL = 24 * time.Hour
)

// bootstrapDemoUser makes sure the demo account exists and logs a token for it
// at debug level.
func bootstrapDemoUser(ctx context.Context, dataStore *store.Store, tokens *auth.TokenManager) error {
	userID, err := dataStore.CreateUser(ctx, demoUsername, demoPassword)
	if errors.Is(err, store.ErrUserExists) {
		userID, err = dataStore.UserIDByUsername(ctx, demoUsername)
	}
	if err != nil {
		return fmt.Errorf("bootstrap demo user: %w", err)
	}

	token, err := tokens.GenerateToken(userID, demoTokenTTL)
	if err != nil {
		return fmt.Errorf("sign demo token: %w", err)
	}

	log.Info().
		Int64("user_id", userID).
		Str("username", demoUsername).
		Msg("demo user ready")
	// The token is only logged with LOG_LEVEL=debug.
	log.Debug().
		Int64("user_id", userID).
		Str("token", token).
		Msg("demo token")
	return nil
}
