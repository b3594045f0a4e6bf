package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-router/internal/config"
	"github.com/spigell/job-router/internal/filtering"
	"github.com/spigell/job-router/internal/logger"
	"github.com/spigell/job-router/internal/pipeline"
	"github.com/spigell/job-router/internal/routing"
	"github.com/spigell/job-router/internal/signals"
	"github.com/spigell/job-router/internal/sink"
)

const (
	PromptYes          = "Yes"
	PromptNo           = "No"
	PromptReportByDest = "Report by category"
	PromptStagedToFile = "Dump staged rows to file"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "Write staged rows?",
	Items: []string{PromptYes, PromptNo, PromptReportByDest, PromptStagedToFile},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Collect, route and store new job postings",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation before writing staged rows")
	runCmd.Flags().Bool("dry-run", false, "stage and report without writing to the sink")
	runCmd.Flags().Int("limit", 0, "keep at most N rows per category (0 keeps all)")
	runCmd.Flags().String("sink", "", "sink kind: sheets, sqlite, postgres, csv or memory")

	viper.BindPFlag("pipeline.per-category-limit", runCmd.Flags().Lookup("limit"))
	viper.BindPFlag("sink.kind", runCmd.Flags().Lookup("sink"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	cfg, err := getConfig(logger)
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the job-router", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(cfg, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	lock, err := pipeline.AcquireLock(ctx, cfg.LockFile, cfg.LockWait)
	if err != nil {
		logger.Fatal("acquiring run lock", zap.Error(err), zap.String("lock file", cfg.LockFile))
	}
	defer lock.Release()

	if err := execute(ctx, cmd, cfg, logger); err != nil {
		if errors.Is(err, errExit) {
			return
		}
		lock.Release()
		logger.Fatal("exiting", zap.Error(err))
	}
}

func execute(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *zap.Logger) error {
	adapters, err := newSources(cfg, logger)
	if err != nil {
		return fmt.Errorf("building sources: %w", err)
	}

	scorer, err := newScorer(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("building scorer: %w", err)
	}

	opts := cfg.Pipeline
	opts.Filters = &cfg.Filters
	opts.Signals = signals.New(cfg.Signals)
	opts.Logger = logger

	if scorer != nil {
		text, err := resolveProfile(ctx, cfg, logger)
		if err != nil {
			// Scoring without a profile still ranks on the prompt criteria.
			logger.Warn("no candidate profile, scoring without it", zap.Error(err))
		}
		opts.Profile = text
	}

	port, err := newSink(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("%w: %w", pipeline.ErrSinkUnavailable, err)
	}
	defer sink.Close(port)

	logger.Info("starting the run",
		zap.Int("sources", len(adapters)),
		zap.String("sink", cfg.Sink.Kind),
		zap.String("scorer", cfg.AI.Provider),
	)

	batch, err := pipeline.Stage(ctx, adapters, scorer, port, opts)
	if err != nil {
		return fmt.Errorf("staging: %w", err)
	}

	logReport(logger, "staged", batch.Report())

	if cfg.DumpStaged {
		if err := dump(logger, batch); err != nil {
			return err
		}
	}

	if batch.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "nothing new to write"))
		return nil
	}

	if dry, _ := cmd.Flags().GetBool("dry-run"); dry {
		logger.Info("exiting", zap.String("reason", "dry run"), zap.Int("staged", batch.Len()))
		return nil
	}

	autoApprove, _ := cmd.Flags().GetBool("auto-approve")
	for !autoApprove {
		_, action, err := prompt.Run()
		if err != nil {
			return fmt.Errorf("prompt: %w", err)
		}

		proceed, err := handleAction(action, logger, batch)
		if err != nil {
			return err
		}
		if proceed {
			break
		}
	}

	report := batch.Emit(ctx, port)
	logReport(logger, "emitted", report)

	if cfg.Filters.AppendAccepted {
		n, err := filtering.AppendExcludeFile(cfg.Filters.ExcludeFile, batch.Emitted(), time.Now())
		if err != nil {
			return fmt.Errorf("appending to exclude file: %w", err)
		}
		logger.Info("appended to exclude file",
			zap.String("filename", cfg.Filters.ExcludeFile),
			zap.Int("count", n),
		)
	}

	if report.Total.Failed > 0 {
		logger.Warn("some rows were not written", zap.Int("failed", report.Total.Failed))
	}

	return nil
}

// handleAction reports whether the batch should be emitted.
func handleAction(action string, logger *zap.Logger, batch *pipeline.Batch) (bool, error) {
	switch action {
	case PromptYes:
		return true, nil
	case PromptNo:
		logger.Info("exiting", zap.String("reason", "got no from prompt"))
		return false, errExit
	case PromptReportByDest:
		for _, c := range routing.Categories() {
			staged := batch.Staged(c)
			titles := make([]string, 0, len(staged))
			for _, s := range staged {
				titles = append(titles, fmt.Sprintf("%s / %s", s.Job.Title, s.Job.Company))
			}
			logger.Info("staged category",
				zap.String("category", string(c)),
				zap.Int("count", len(staged)),
				zap.Strings("jobs", titles),
			)
		}
		return false, nil
	case PromptStagedToFile:
		return false, dump(logger, batch)
	default:
		return false, fmt.Errorf("invalid action: %s", action)
	}
}

func dump(logger *zap.Logger, batch *pipeline.Batch) error {
	filename, err := batch.Dump()
	if err != nil {
		return fmt.Errorf("dump staged rows to file: %w", err)
	}
	logger.Info("dumping staged rows to file", zap.String("filename", filename))
	return nil
}

func logReport(logger *zap.Logger, step string, r *pipeline.RunReport) {
	fields := []zap.Field{
		zap.String("run_id", r.RunID),
		zap.Int("fetched", r.Fetched),
		zap.Int("malformed", r.Malformed),
		zap.Int("filtered", r.Filtered),
		zap.Int("accepted", r.Total.Accepted),
		zap.Int("duplicate", r.Total.Duplicate),
		zap.Int("failed", r.Total.Failed),
		zap.Int("truncated", r.Total.Truncated),
		zap.Int("high_priority", r.HighPriority),
		zap.Int("scored", r.Scored),
		zap.Int("fallbacks", r.Fallbacks),
	}
	for _, c := range routing.Categories() {
		fields = append(fields, zap.Any(string(c), r.Categories[c]))
	}
	for _, f := range r.AdapterFailures {
		logger.Warn("source failed",
			zap.String("source", f.Source),
			zap.Int("attempts", f.Attempts),
			zap.String("error", f.Err),
		)
	}

	logger.Info(step, fields...)
}
