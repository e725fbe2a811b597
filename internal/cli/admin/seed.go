package admin

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/kraft-solutions/kraftchat/internal/config"
	"github.com/kraft-solutions/kraftchat/internal/repository"
	"github.com/kraft-solutions/kraftchat/internal/seed"
	"github.com/kraft-solutions/kraftchat/internal/service"
)

// SeedCmd returns the seed command
func SeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Populate the knowledge base with sample FAQ entries",
		Long:  "Insert a starter set of public FAQ entries into the knowledge base of a fresh database",
		RunE:  runSeed,
	}
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	svc := service.NewKnowledgeService(repository.NewKnowledgeRepository(pool))
	count, err := seed.SampleFAQs(ctx, svc)
	if err != nil {
		return err
	}

	log.Printf("seeded %d knowledge entries", count)
	return nil
}
