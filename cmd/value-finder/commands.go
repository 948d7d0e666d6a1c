package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/value-finder/internal/database"
	"github.com/yourusername/value-finder/internal/datasource"
	"github.com/yourusername/value-finder/internal/health"
	"github.com/yourusername/value-finder/internal/metrics"
	"github.com/yourusername/value-finder/internal/models"
	"github.com/yourusername/value-finder/internal/repository"
	"github.com/yourusername/value-finder/internal/scheduler"
	"github.com/yourusername/value-finder/internal/strategy"
)

func findCmd() *cobra.Command {
	var (
		profile  string
		order    string
		output   string
		bankroll float64
	)

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Run one detection pass and write the ranked value bets",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := setup(ctx, output, false)
			if err != nil {
				return err
			}
			defer a.close()
			defer writeMetrics()

			input, err := a.service.Collect(ctx)
			if err != nil {
				return err
			}
			input.Profile = profile
			input.Order = order

			report, err := a.service.Run(ctx, input)
			if err != nil {
				return err
			}
			if err := a.dispatcher.Deliver(ctx, report); err != nil {
				return err
			}
			printReport(report, a.stakes(bankroll))
			return nil
		},
	}

	cmd.Flags().StringVarP(&profile, "profile", "p", "", "Filter profile (conservative, balanced, aggressive); defaults to detection.profile")
	cmd.Flags().StringVar(&order, "order", "edge", "Ranking order (edge, confidence)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file; defaults to output.path")
	cmd.Flags().Float64Var(&bankroll, "bankroll", 0, "Print half-Kelly stakes for this bankroll")
	return cmd
}

func scanCmd() *cobra.Command {
	var (
		order       string
		output      string
		stopAtFirst bool
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run every filter profile from conservative to aggressive",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := setup(ctx, output, true)
			if err != nil {
				return err
			}
			defer a.close()
			defer writeMetrics()

			input, err := a.service.Collect(ctx)
			if err != nil {
				return err
			}
			input.Order = order

			reports, err := a.service.RunProfiles(ctx, input, strategy.ProfileTiers(), stopAtFirst)
			if err != nil {
				return err
			}
			var deliverErrs []error
			for _, report := range reports {
				if err := a.dispatcher.Deliver(ctx, report); err != nil {
					deliverErrs = append(deliverErrs, err)
				}
				printReport(report, nil)
			}
			return errors.Join(deliverErrs...)
		},
	}

	cmd.Flags().StringVar(&order, "order", "edge", "Ranking order (edge, confidence)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file; the profile name is appended per report")
	cmd.Flags().BoolVar(&stopAtFirst, "stop-at-first", false, "Stop at the first profile that reports a value bet")
	return cmd
}

func fetchOddsCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "fetch-odds",
		Short: "Download the current odds from the odds API into a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Odds.APIKey == "" {
				return fmt.Errorf("odds.api_key is required")
			}
			httpCfg := datasource.DefaultHTTPClientConfig().WithOverrides(cfg.Odds.TimeoutSeconds, cfg.Odds.RateLimit, cfg.Odds.MaxRetries)
			httpClient := datasource.NewRateLimitedHTTPClient(httpCfg, appLog)
			defer httpClient.Close()

			client := datasource.NewOddsAPIClient(httpClient, datasource.OddsAPIConfig{
				BaseURL:    cfg.Odds.APIURL,
				APIKey:     cfg.Odds.APIKey,
				Sport:      cfg.Odds.Sport,
				Regions:    cfg.Odds.Regions,
				Markets:    cfg.Odds.Markets,
				Bookmakers: cfg.Detection.Bookmakers,
			}, appLog)

			events, err := client.FetchEvents(cmd.Context())
			if err != nil {
				return err
			}
			if err := datasource.WriteOddsFile(output, events); err != nil {
				return err
			}
			appLog.WithFields(logrus.Fields{"events": len(events), "path": output}).Info("Odds saved")
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "odds.json", "Destination file")
	return cmd
}

func fetchHistoryCmd() *cobra.Command {
	var (
		source string
		output string
		store  bool
	)

	cmd := &cobra.Command{
		Use:   "fetch-history",
		Short: "Download historical results to CSV and optionally store them in PostgreSQL",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if source == datasource.HistorySourcePostgres {
				return fmt.Errorf("fetch-history reads from an external source, not postgres")
			}
			if output == "" && !store {
				return fmt.Errorf("nothing to do: set --output or --store")
			}

			hcfg := *cfg
			hcfg.History.Source = source
			hcfg.History.CacheTTLMinutes = 0
			hist, err := datasource.NewFactory(&hcfg, appLog).NewHistorySource(nil)
			if err != nil {
				return err
			}

			results, err := hist.FetchResults(ctx)
			if err != nil {
				return err
			}

			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				if err := datasource.WriteResultsCSV(f, results); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
			}

			stored := 0
			if store {
				if !cfg.Database.Enabled {
					return fmt.Errorf("--store requires database.enabled")
				}
				a, err := setupStore(ctx)
				if err != nil {
					return err
				}
				defer a.close()
				if stored, err = a.repos.MatchResults.UpsertBatch(ctx, results); err != nil {
					return err
				}
			}

			appLog.WithFields(logrus.Fields{
				"source":  hist.Name(),
				"results": len(results),
				"stored":  stored,
				"path":    output,
			}).Info("History fetched")
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "football_data", "History source (football_data, csv)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "CSV destination file")
	cmd.Flags().BoolVar(&store, "store", false, "Upsert the results into PostgreSQL")
	return cmd
}

func scheduleCmd() *cobra.Command {
	var (
		cronExpr    string
		scan        bool
		stopAtFirst bool
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run detection on a cron schedule and serve health and metrics endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a, err := setup(ctx, "", scan)
			if err != nil {
				return err
			}
			defer a.close()

			hcfg := health.Config{
				ServiceName: cfg.App.Name,
				Version:     Version,
				Port:        cfg.Schedule.HealthPort,
				Logger:      appLog,
				Metrics:     metrics.Handler(),
			}
			if a.db != nil {
				hcfg.DB = a.db
			}
			server := health.NewServer(hcfg)
			if err := server.Start(ctx); err != nil {
				return err
			}

			if cronExpr == "" {
				cronExpr = cfg.Schedule.Cron
			}
			timeout := time.Duration(cfg.Schedule.TimeoutMinutes) * time.Minute
			if timeout <= 0 {
				timeout = 10 * time.Minute
			}

			sched := scheduler.NewScheduler(appLog)
			job := func(ctx context.Context) error {
				status, err := a.runOnce(ctx, scan, stopAtFirst)
				if err != nil {
					status.Error = err.Error()
				}
				status.FinishedAt = time.Now().UTC()
				server.RecordRun(status)
				writeMetrics()
				return err
			}
			if err := sched.Schedule("value-bets", cronExpr, timeout, job); err != nil {
				return err
			}
			if err := sched.Start(); err != nil {
				return err
			}
			server.SetReady(true)

			appLog.WithFields(logrus.Fields{"cron": cronExpr, "scan": scan}).Info("Scheduler running")
			<-ctx.Done()

			appLog.Info("Shutdown signal received")
			server.SetReady(false)
			return sched.Stop()
		},
	}

	cmd.Flags().StringVar(&cronExpr, "cron", "", "Cron expression; defaults to schedule.cron")
	cmd.Flags().BoolVar(&scan, "scan", false, "Run every profile instead of detection.profile")
	cmd.Flags().BoolVar(&stopAtFirst, "stop-at-first", false, "With --scan, stop at the first profile that reports a value bet")
	return cmd
}

// runOnce collects fresh inputs, runs the pipeline and delivers every report
func (a *app) runOnce(ctx context.Context, scan, stopAtFirst bool) (health.RunStatus, error) {
	var status health.RunStatus

	input, err := a.service.Collect(ctx)
	if err != nil {
		return status, err
	}

	var reports []*models.ValueBetReport
	if scan {
		reports, err = a.service.RunProfiles(ctx, input, strategy.ProfileTiers(), stopAtFirst)
	} else {
		var report *models.ValueBetReport
		report, err = a.service.Run(ctx, input)
		if report != nil {
			reports = append(reports, report)
		}
	}
	if err != nil {
		return status, err
	}

	var deliverErrs []error
	for _, report := range reports {
		status.RunID = report.RunID.String()
		status.ValueBets += len(report.Bets)
		if err := a.dispatcher.Deliver(ctx, report); err != nil {
			deliverErrs = append(deliverErrs, err)
		}
	}
	return status, errors.Join(deliverErrs...)
}

// setupStore connects only the database for commands that skip the pipeline
func setupStore(ctx context.Context) (*app, error) {
	a := &app{}
	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.db = db
	a.repos, err = repository.NewRepositories(db, cfg.History.League, cfg.History.Season, nil)
	if err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

// stakes returns a half-Kelly stake per bet, or nil without a bankroll
func (a *app) stakes(bankroll float64) func(models.ValueBetCandidate) float64 {
	if bankroll <= 0 {
		return nil
	}
	kelly := strategy.NewValueDetector(strategy.DetectorConfig{}, a.names)
	return func(c models.ValueBetCandidate) float64 {
		return kelly.SuggestStake(c, bankroll)
	}
}

func printReport(report *models.ValueBetReport, stake func(models.ValueBetCandidate) float64) {
	s := report.Stats
	fmt.Printf("\nProfile %s: %d value bets from %d matches (%d skipped, %d quotes evaluated)\n",
		report.Profile, len(report.Bets), s.MatchesSeen, s.MatchesSkipped, s.QuotesEvaluated)
	if len(s.UnmappedTeams) > 0 {
		fmt.Printf("Unmapped teams: %v\n", s.UnmappedTeams)
	}
	if len(report.Bets) == 0 {
		return
	}

	fmt.Printf("%-3s %-34s %-7s %-22s %-12s %6s %6s %6s %6s\n", "#", "Match", "Market", "Selection", "Bookmaker", "Odds", "Prob", "Edge", "Conf")
	for i, b := range report.Bets {
		fmt.Printf("%-3d %-34.34s %-7s %-22.22s %-12.12s %6.2f %6.3f %6.3f %6.3f",
			i+1, b.Match, b.MarketKey, b.Selection, b.Bookmaker, b.Odds, b.RealProbability, b.Edge, b.Confidence)
		if stake != nil {
			fmt.Printf("  stake %.2f", stake(b))
		}
		fmt.Println()
	}
	fmt.Printf("Average odds %.2f, edge %.3f, confidence %.3f\n", s.AverageOdds, s.AverageEdge, s.AverageConfidence)
}
