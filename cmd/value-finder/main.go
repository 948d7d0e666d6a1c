// Package main provides the value-finder command line tool.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/value-finder/internal/config"
	"github.com/yourusername/value-finder/internal/database"
	"github.com/yourusername/value-finder/internal/datasource"
	"github.com/yourusername/value-finder/internal/logger"
	"github.com/yourusername/value-finder/internal/metrics"
	"github.com/yourusername/value-finder/internal/normalize"
	"github.com/yourusername/value-finder/internal/publisher"
	"github.com/yourusername/value-finder/internal/repository"
	"github.com/yourusername/value-finder/internal/service"
	"github.com/yourusername/value-finder/internal/storage"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile string
	appLog     *logrus.Logger
	cfg        *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.AddCommand(findCmd(), scanCmd(), fetchOddsCmd(), fetchHistoryCmd(), scheduleCmd())
}

var rootCmd = &cobra.Command{
	Use:           "value-finder",
	Short:         "Find football value bets",
	Long:          `Compares bookmaker odds against probabilities estimated from historical results and reports the selections priced above their real chance.`,
	Version:       fmt.Sprintf("%s (%s)", Version, GitCommit),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		appLog = logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
		metrics.InitRegistry()
		return nil
	},
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig(ctx context.Context) error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(ctx, cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	return config.Validate(cfg)
}

// app holds the dependencies shared by the pipeline commands
type app struct {
	names      *normalize.Normalizer
	db         *database.DB
	redis      *redis.Client
	repos      *repository.Repositories
	service    *service.ValueBetService
	dispatcher *service.Dispatcher
}

// setup builds the pipeline. perProfile writes one output file per profile.
func setup(ctx context.Context, output string, perProfile bool) (*app, error) {
	a := &app{}

	names, err := normalize.NewNormalizer(appLog, normalize.DefaultAliases(), normalize.AliasesFromConfig(cfg.Teams))
	if err != nil {
		return nil, fmt.Errorf("failed to build team aliases: %w", err)
	}
	a.names = names

	audit := logger.NewAuditLogger(appLog)

	if cfg.Database.Enabled {
		a.db, err = database.Initialize(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.repos, err = repository.NewRepositories(a.db, cfg.History.League, cfg.History.Season, audit)
		if err != nil {
			a.close()
			return nil, err
		}
		appLog.Info("Database connection established")
	}

	factory := datasource.NewFactory(cfg, appLog)
	odds, err := factory.NewOddsSource()
	if err != nil {
		a.close()
		return nil, err
	}
	var store datasource.HistorySource
	if a.repos != nil {
		store = a.repos.MatchResults
	}
	history, err := factory.NewHistorySource(store)
	if err != nil {
		a.close()
		return nil, err
	}

	a.service = service.NewValueBetService(cfg, names, odds, history, appLog)

	if output == "" {
		output = cfg.Output.Path
	}
	a.dispatcher = service.NewDispatcher(appLog, storage.NewFileSink(output, cfg.Output.Format, perProfile, audit))
	if cfg.Redis.Enabled {
		a.redis = publisher.NewRedisClient(cfg.Redis)
		a.dispatcher.Add(publisher.NewStreamPublisher(a.redis, cfg.Redis.Stream, audit))
	}
	if a.repos != nil {
		a.dispatcher.Add(a.repos.ValueBets)
	}

	return a, nil
}

func (a *app) close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			appLog.WithError(err).Warn("Failed to close redis client")
		}
	}
	if a.db != nil {
		a.db.Close()
	}
}

// writeMetrics dumps the registry for the node exporter textfile collector
func writeMetrics() {
	if !cfg.Metrics.Enabled || cfg.Metrics.TextfilePath == "" {
		return
	}
	if err := metrics.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
		appLog.WithError(err).Warn("Failed to write metrics textfile")
	}
}
