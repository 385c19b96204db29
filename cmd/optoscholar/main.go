// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the optoscholar CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/optoscholar/internal/observability"
	"github.com/pdiddy/optoscholar/internal/secrets"
	"github.com/pdiddy/optoscholar/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// loadedSecrets holds credentials loaded from .secrets/ at startup.
	loadedSecrets secrets.Secrets

	logger   = zap.NewNop()
	registry = prometheus.NewRegistry()
	metrics  = observability.NewMetrics(registry)
)

// rootCmd is the base command for the optoscholar CLI.
var rootCmd = &cobra.Command{
	Use:   "optoscholar",
	Short: "Search and curate ophthalmic and optometric literature",
	Long: `optoscholar searches PubMed through the NCBI E-utilities, restricted to
a configurable list of ophthalmology and optometry journals. Results can be
paged, saved to a local library, exported as CSV, JSON or CSL-YAML, and cited
in AMA, APA or MLA style.

Credentials are read from .secrets/ (pubmed-api-key, pubmed-email,
s3-access-key, s3-secret-key, agent-url), from OPTOSCHOLAR_* environment
variables, or from optoscholar.yaml.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := observability.NewLogger(types.LoggingConfig{
			Level:  viper.GetString("logging.level"),
			Format: viper.GetString("logging.format"),
		})
		if err != nil {
			return err
		}
		logger = l

		s, err := secrets.Load(".secrets/", logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug("loaded secrets", zap.Strings("keys", keys))
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync() //nolint:errcheck
		path, _ := cmd.Flags().GetString("metrics-file")
		if path == "" {
			return nil
		}
		return observability.WriteTextfile(path, registry)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./optoscholar.yaml or ~/.config/optoscholar/optoscholar.yaml)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "console", "log format: console or json")
	rootCmd.PersistentFlags().String("metrics-file", "", "write Prometheus metrics to this file on exit")

	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
	setDefaults(viper.GetViper())
}

func initConfig() {
	// A missing .env is normal.
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("optoscholar")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "optoscholar"))
		}
	}

	viper.SetEnvPrefix("OPTOSCHOLAR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key so that AutomaticEnv can supply
// values for keys absent from the config file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("gateway.base_url", "")
	v.SetDefault("gateway.api_key", "")
	v.SetDefault("gateway.tool", "optoscholar")
	v.SetDefault("gateway.email", "")
	v.SetDefault("gateway.journals", defaultJournals)
	v.SetDefault("gateway.page_size", 10)
	v.SetDefault("gateway.rate_limit", 0)
	v.SetDefault("gateway.max_retries", 3)
	v.SetDefault("gateway.timeout", "30s")
	v.SetDefault("gateway.user_agent", "optoscholar/"+version)

	v.SetDefault("library.backend", string(types.SlotFile))
	v.SetDefault("library.path", "")
	v.SetDefault("library.key", "")
	v.SetDefault("library.s3_bucket", "")
	v.SetDefault("library.s3_endpoint", "")
	v.SetDefault("library.s3_region", "")
	v.SetDefault("library.s3_access_key", "")
	v.SetDefault("library.s3_secret_key", "")

	v.SetDefault("agent.base_url", "")
	v.SetDefault("agent.poll_interval", "1s")
	v.SetDefault("agent.max_attempts", 60)
	v.SetDefault("agent.timeout", "30s")
	v.SetDefault("agent.user_agent", "optoscholar/"+version)

	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "console")
}

// defaultJournals is the ophthalmology and optometry journal list searches
// are restricted to unless configured otherwise.
var defaultJournals = []string{
	"Ophthalmology",
	"JAMA Ophthalmology",
	"American Journal of Ophthalmology",
	"British Journal of Ophthalmology",
	"Investigative Ophthalmology & Visual Science",
	"Optometry and Vision Science",
	"Ophthalmic & Physiological Optics",
	"Clinical & Experimental Optometry",
	"Contact Lens & Anterior Eye",
	"Journal of Optometry",
	"Eye (London, England)",
	"Cornea",
	"Retina (Philadelphia, Pa.)",
	"Journal of Cataract and Refractive Surgery",
	"Journal of Glaucoma",
	"The Ocular Surface",
	"Progress in Retinal and Eye Research",
	"Survey of Ophthalmology",
	"Acta Ophthalmologica",
	"Graefe's Archive for Clinical and Experimental Ophthalmology",
}

// loadConfig decodes v into a Config and fills credentials from s where the
// config leaves them empty.
func loadConfig(v *viper.Viper, s secrets.Secrets) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Gateway.APIKey = s.Or(secrets.PubMedAPIKey, cfg.Gateway.APIKey)
	cfg.Gateway.Email = s.Or(secrets.PubMedEmail, cfg.Gateway.Email)
	cfg.Library.S3AccessKey = s.Or(secrets.S3AccessKey, cfg.Library.S3AccessKey)
	cfg.Library.S3SecretKey = s.Or(secrets.S3SecretKey, cfg.Library.S3SecretKey)
	cfg.Agent.BaseURL = s.Or(secrets.AgentURL, cfg.Agent.BaseURL)
	return cfg, nil
}

// config is loadConfig over the global viper instance and loaded secrets.
func config() (types.Config, error) {
	return loadConfig(viper.GetViper(), loadedSecrets)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
