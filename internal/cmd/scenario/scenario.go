// Package scenario wires the scenario CLI to the Lua runner.
package scenario

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"time"

	platformcmd "github.com/louisbranch/backgammon/internal/platform/cmd"
	"github.com/louisbranch/backgammon/internal/platform/i18n/catalog"
	"github.com/louisbranch/backgammon/internal/random"
	"github.com/louisbranch/backgammon/internal/tools/scenario"
)

// Config holds scenario command configuration.
type Config struct {
	Scenario   string        `env:"BACKGAMMON_SCENARIO_FILE"`
	Assertions bool          `env:"BACKGAMMON_SCENARIO_ASSERT"   envDefault:"true"`
	Verbose    bool          `env:"BACKGAMMON_SCENARIO_VERBOSE"`
	Timeout    time.Duration `env:"BACKGAMMON_SCENARIO_TIMEOUT"  envDefault:"10s"`
	// Seed drives unscripted rolls; zero picks a fresh one.
	Seed   int64  `env:"BACKGAMMON_SCENARIO_SEED"     envDefault:"1"`
	Locale string `env:"BACKGAMMON_LOCALE"            envDefault:"en-US"`
}

// ParseConfig parses env defaults and then flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Scenario, "scenario", cfg.Scenario, "path to scenario lua file")
	fs.BoolVar(&cfg.Assertions, "assert", cfg.Assertions, "enable assertions (disable to log expectations)")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "enable verbose logging")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "timeout per step")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "dice seed for unscripted rolls (0 for random)")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "message locale")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the scenario command.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if cfg.Scenario == "" {
		return errors.New("scenario path is required")
	}

	mode := scenario.AssertionStrict
	if !cfg.Assertions {
		mode = scenario.AssertionLogOnly
	}
	seed, err := random.ResolveSeed(cfg.Seed)
	if err != nil {
		return err
	}
	locale := cfg.Locale
	if locale == "" {
		locale = catalog.BaseLocale
	}

	logger := log.New(errOut, "", 0)
	if cfg.Verbose {
		logger.Printf("seed %d", seed)
	}
	return scenario.RunFile(ctx, scenario.Config{
		Timeout:    cfg.Timeout,
		Assertions: mode,
		Verbose:    cfg.Verbose,
		Logger:     logger,
		Seed:       seed,
		Locale:     locale,
	}, cfg.Scenario)
}
