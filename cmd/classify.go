package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-router/internal/job"
	"github.com/spigell/job-router/internal/logger"
	"github.com/spigell/job-router/internal/routing"
	"github.com/spigell/job-router/internal/signals"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [file]",
	Short: "Print the signals and category of a JSON posting read from a file or stdin",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lists := signals.Lists{}
		if err := viper.UnmarshalKey("signals", &lists); err != nil {
			return fmt.Errorf("unmarshalling signals: %w", err)
		}

		in := cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}

		l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
		if err != nil {
			return fmt.Errorf("creating a logger: %w", err)
		}

		source, _ := cmd.Flags().GetString("source")
		return classify(in, cmd.OutOrStdout(), source, signals.New(lists), l)
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().String("source", "", "source label used when the posting has none")
}

type classification struct {
	Job      job.Job          `json:"job"`
	Signals  signals.Signals  `json:"signals"`
	Category routing.Category `json:"category"`
	Rule     string           `json:"rule"`
}

// classify accepts one posting object or an array of them.
func classify(r io.Reader, w io.Writer, source string, extractor *signals.Extractor, l *zap.Logger) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing input: %w", err)
	}

	items, ok := raw.([]any)
	if !ok {
		items = []any{raw}
	}

	out := make([]classification, 0, len(items))
	var errs []error
	for i, item := range items {
		j, err := job.Normalize(item, source)
		if err != nil {
			l.Warn("skipping posting", zap.Int("index", i), zap.Error(err))
			errs = append(errs, fmt.Errorf("posting %d: %w", i, err))
			continue
		}

		s := extractor.Derive(j)
		category, rule := routing.Explain(j, s)
		out = append(out, classification{Job: j, Signals: s, Category: category, Rule: rule})
	}

	if len(out) == 0 && len(errs) > 0 {
		return errors.Join(errs...)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if _, isList := raw.([]any); isList {
		return enc.Encode(out)
	}
	return enc.Encode(out[0])
}
