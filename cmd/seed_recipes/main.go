package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pageza/recepti/backend/config"
	"github.com/pageza/recepti/backend/internal/cache"
	"github.com/pageza/recepti/backend/internal/database"
	"github.com/pageza/recepti/backend/internal/logging"
	"github.com/pageza/recepti/backend/internal/service"
	"github.com/pageza/recepti/backend/internal/storage"
)

var seedFile string

var rootCmd = &cobra.Command{
	Use:   "seed_recipes",
	Short: "Load the sample recipes into the catalog",
	Long: `Creates the sample recipes, or updates them in place when a recipe with
the same slug already exists. Pass --file to load a different YAML list.`,
	SilenceUsage: true,
	RunE:         runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel, cfg.Env.IsDevelopment())
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	data := sampleRecipes
	if seedFile != "" {
		if data, err = os.ReadFile(seedFile); err != nil {
			return fmt.Errorf("failed to read %s: %w", seedFile, err)
		}
	}
	samples, err := parseSeed(data)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	db, err := database.Open(cfg, log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.RunMigrations(ctx, db, log); err != nil {
		return err
	}

	root, err := storage.NewRoot(cfg.AssetRoot)
	if err != nil {
		return err
	}
	normalizer := service.NewImageNormalizer(root, cache.NewMemoryCache(cfg.CacheMaxEntries, time.Minute), cfg.AssetURLPrefix)

	res, err := seed(ctx, service.NewRecipeService(db, normalizer, log), samples, log)
	if err != nil {
		return err
	}
	log.Info("seeding finished", zap.Int("created", res.Created), zap.Int("updated", res.Updated))
	return nil
}

func init() {
	rootCmd.Flags().StringVar(&seedFile, "file", "", "YAML file with recipes to seed instead of the built-in samples")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
