package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/fleetops/rider-dispatch/internal/core/domain"
	"github.com/fleetops/rider-dispatch/internal/infrastructure/db/mongo"
	"github.com/fleetops/rider-dispatch/internal/pkg/config"
	"github.com/fleetops/rider-dispatch/pkg/logger"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the bootstrap prime admin if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context())
		},
	}
}

func runSeed(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Seed.Password == "" {
		return errors.New("SEED_ADMIN_PASSWORD is required")
	}

	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.Env == "development"})

	client, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	users := mongo.NewUserRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	existing, err := users.FindByUsername(ctx, cfg.Seed.Username)
	if err == nil {
		log.Info().Str("username", existing.Username).Msg("prime admin already exists")
		return nil
	}
	if !errors.Is(err, domain.ErrTargetNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Seed.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	admin := &domain.User{
		Username:     cfg.Seed.Username,
		PasswordHash: string(hash),
		Name:         cfg.Seed.Name,
		Role:         domain.RolePrimeAdmin,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}
	created, err := users.Create(ctx, admin)
	if err != nil {
		return err
	}

	log.Info().Str("id", created.ID).Str("username", created.Username).Msg("prime admin created")
	return nil
}
