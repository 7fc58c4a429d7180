// Package selfplay parses self-play flags and plays random games through the
// game registry.
package selfplay

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"

	entrypoint "github.com/louisbranch/backgammon/internal/platform/cmd"
	errori18n "github.com/louisbranch/backgammon/internal/platform/errors/i18n"
	"github.com/louisbranch/backgammon/internal/platform/i18n/catalog"
	"github.com/louisbranch/backgammon/internal/random"
	"github.com/louisbranch/backgammon/internal/services/game/domain/dice"
	"github.com/louisbranch/backgammon/internal/services/game/domain/match"
	"github.com/louisbranch/backgammon/internal/services/game/domain/turn"
	"github.com/louisbranch/backgammon/internal/services/game/registry"
)

// Config holds self-play command configuration.
type Config struct {
	Games  int   `env:"BACKGAMMON_SELFPLAY_GAMES"      envDefault:"10"`
	Length int   `env:"BACKGAMMON_SELFPLAY_LENGTH"     envDefault:"0"`
	Seed   int64 `env:"BACKGAMMON_SELFPLAY_SEED"`
	// DoubleRate is the chance a player on roll offers the cube.
	DoubleRate float64 `env:"BACKGAMMON_SELFPLAY_DOUBLE_RATE" envDefault:"0.05"`
	MaxPlies   int     `env:"BACKGAMMON_SELFPLAY_MAX_PLIES"   envDefault:"5000"`
	Crawford   bool    `env:"BACKGAMMON_SELFPLAY_CRAWFORD"    envDefault:"true"`
	Jacoby     bool    `env:"BACKGAMMON_SELFPLAY_JACOBY"`
	Beaver     bool    `env:"BACKGAMMON_SELFPLAY_BEAVER"`
	Raccoon    bool    `env:"BACKGAMMON_SELFPLAY_RACCOON"`
	Verbose    bool    `env:"BACKGAMMON_SELFPLAY_VERBOSE"`
	Locale     string  `env:"BACKGAMMON_LOCALE"               envDefault:"en-US"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Games, "games", cfg.Games, "number of games to play")
	fs.IntVar(&cfg.Length, "length", cfg.Length, "match length (0 for money games)")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed for reproducibility (0 = random)")
	fs.Float64Var(&cfg.DoubleRate, "double-rate", cfg.DoubleRate, "chance of offering the cube before a roll is played")
	fs.IntVar(&cfg.MaxPlies, "max-plies", cfg.MaxPlies, "abandon a game after this many actions")
	fs.BoolVar(&cfg.Crawford, "crawford", cfg.Crawford, "apply the Crawford rule")
	fs.BoolVar(&cfg.Jacoby, "jacoby", cfg.Jacoby, "apply the Jacoby rule in money games")
	fs.BoolVar(&cfg.Beaver, "beaver", cfg.Beaver, "allow beavers")
	fs.BoolVar(&cfg.Raccoon, "raccoon", cfg.Raccoon, "allow raccoons")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "log every game")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "message locale")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run plays cfg.Games games under telemetry and logs a summary to errOut.
func Run(ctx context.Context, cfg Config, errOut io.Writer) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceSelfPlay, func(ctx context.Context) error {
		_, err := Play(ctx, cfg, errOut)
		return err
	})
}

// Play runs the games without telemetry setup.
func Play(ctx context.Context, cfg Config, errOut io.Writer) (Summary, error) {
	if errOut == nil {
		errOut = io.Discard
	}
	if cfg.Games < 1 {
		return Summary{}, errors.New("games must be positive")
	}
	if cfg.Length < 0 {
		return Summary{}, errors.New("length must not be negative")
	}
	seed, err := random.ResolveSeed(cfg.Seed)
	if err != nil {
		return Summary{}, err
	}
	locale := cfg.Locale
	if locale == "" {
		locale = catalog.BaseLocale
	}

	logger := log.New(errOut, "[SELFPLAY] ", 0)
	logger.Printf("seed %d", seed)
	reg := registry.New(turn.New(dice.NewSeeded(seed)), registry.WithLogger(logger))
	p := newPlayer(reg, seed, cfg, logger, catalog.Printer(locale))
	rules := match.Rules{
		Crawford: cfg.Crawford,
		Jacoby:   cfg.Jacoby,
		Beaver:   cfg.Beaver,
		Raccoon:  cfg.Raccoon,
	}
	summary, err := p.run(ctx, cfg.Games, cfg.Length, rules)
	if err != nil {
		code, message := errori18n.Describe(err, locale)
		logger.Print(p.printer.Sprintf("core.selfplay.failed", code, message))
	}
	return summary, err
}
