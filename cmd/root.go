package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-router/internal/config"
)

const (
	app = "job-router"
)

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "job-router collects job postings, routes them into categories and stores the new ones",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// .env is optional. Values already in the environment win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("loading .env: %v", err)
	}

	viper.SetEnvPrefix("JOB_ROUTER")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	for key, env := range map[string]string{
		"hh-token.file":          "HH_TOKEN_FILE",
		"ai.gemini.api-key.file": "GEMINI_API_KEY_FILE",
		"sink.dsn.value":         "JOB_ROUTER_PG_DSN",
	} {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is job-router.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Only run reads the config file. classify works on defaults when it is absent.
	if runCmd.CalledAs() == "" && classifyCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	err := viper.ReadInConfig()
	if err == nil {
		return
	}

	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) && cfgFile == "" {
		// Defaults are enough for a first run.
		return
	}

	// We can't proceed if the config file parsed with error.
	log.Fatal(err)
}

// getConfig unmarshals, defaults and validates the configuration.
func getConfig(logger *zap.Logger) (*config.Config, error) {
	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	cfg.ApplyDefaults()

	if cfg.CompaniesFile != "" {
		companies, err := config.LoadCompanies(cfg.CompaniesFile)
		if err != nil {
			return nil, err
		}
		cfg.ApplyCompanies(companies)
	}

	report := config.Validate(&cfg)
	for _, w := range report.Warnings {
		logger.Warn("config", zap.String("warning", w))
	}
	if err := report.Err(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
