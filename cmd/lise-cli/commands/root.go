package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"liseplanning/internal/components/chrono"
	"liseplanning/internal/components/telemetry"
	"liseplanning/internal/planning"
	"liseplanning/internal/scrapers/lise"
	"liseplanning/internal/service"
	"liseplanning/lib/configutil"
	libtelemetry "liseplanning/lib/telemetry"

	"github.com/spf13/cobra"
)

const passwordEnv = "LISE_PASSWORD"

// Config is read from config.json5, the credentials usually live in config.local.json5.
type Config struct {
	Username            string  `json:"username"`
	Password            string  `json:"password"`
	BaseUrl             string  `json:"base_url"`
	RequestsPerSecond   float64 `json:"requests_per_second"`
	DescriptionLanguage string  `json:"description_language"`
}

var (
	verbose           bool
	configPath        string
	usernameFlag      string
	formatDescription bool
	language          string
)

var rootCmd = &cobra.Command{
	Use:   "lise-cli",
	Short: "lise-cli scrapes a planning from the Lise portal without running the server.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		libtelemetry.InitSlog(verbose)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging.")
	flags.StringVar(&configPath, "config", "config.json5", "The configuration file.")
	flags.StringVar(&usernameFlag, "username", "", "The portal username, overrides the config. The password is read from $"+passwordEnv+".")
	flags.BoolVar(&formatDescription, "formatted", false, "Wrap the description headings in <b></b>.")
	flags.StringVar(&language, "language", "", "The language of the description headings (fr or en), overrides the config.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func readConfig() (Config, error) {
	cfg, err := configutil.ReadConfig[Config](configPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}
	if usernameFlag != "" {
		cfg.Username = usernameFlag
	}
	if password := os.Getenv(passwordEnv); password != "" {
		cfg.Password = password
	}
	if language != "" {
		cfg.DescriptionLanguage = language
	}
	if cfg.Username == "" || cfg.Password == "" {
		return Config{}, fmt.Errorf("no credentials, set username and password in %s or use --username with $%s", configPath, passwordEnv)
	}
	return cfg, nil
}

func newOrchestrator(cfg Config) (service.Orchestrator, error) {
	lang, err := planning.ParseLanguage(cfg.DescriptionLanguage)
	if err != nil {
		return service.Orchestrator{}, err
	}
	clock, err := chrono.NewStandardImpl()
	if err != nil {
		return service.Orchestrator{}, err
	}
	return service.NewOrchestrator(lise.SessionOptions{
		BaseUrl:           cfg.BaseUrl,
		Timeout:           30 * time.Second,
		RequestsPerSecond: cfg.RequestsPerSecond,
	}, lang, clock, telemetry.SlogAPI{}), nil
}
