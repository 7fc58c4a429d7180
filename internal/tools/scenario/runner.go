// Package scenario runs Lua-scripted backgammon games against an in-process
// registry and checks the outcome of every step.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"golang.org/x/text/message"

	errori18n "github.com/louisbranch/backgammon/internal/platform/errors/i18n"
	"github.com/louisbranch/backgammon/internal/platform/i18n/catalog"
	"github.com/louisbranch/backgammon/internal/platform/timeouts"
	"github.com/louisbranch/backgammon/internal/services/game/domain/dice"
	"github.com/louisbranch/backgammon/internal/services/game/domain/turn"
	"github.com/louisbranch/backgammon/internal/services/game/registry"
)

// Config controls scenario execution.
type Config struct {
	Timeout    time.Duration
	Assertions AssertionMode
	Verbose    bool
	Logger     *log.Logger
	// Seed drives every roll the script does not queue itself.
	Seed   int64
	Locale string
}

// DefaultConfig returns default runner configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:    timeouts.ScenarioStep,
		Assertions: AssertionStrict,
		Seed:       1,
		Locale:     catalog.BaseLocale,
	}
}

// Runner executes scenarios.
type Runner struct {
	registry   *registry.Registry
	script     *dice.Script
	assertions *Assertions
	logger     *log.Logger
	printer    *message.Printer
	errors     *errori18n.Catalog
	locale     string
	verbose    bool
	timeout    time.Duration
}

// NewRunner prepares a runner with its own registry and dice.
func NewRunner(cfg Config) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = timeouts.ScenarioStep
	}
	locale := cfg.Locale
	if locale == "" {
		locale = catalog.BaseLocale
	}

	script := dice.NewScript(dice.NewSeeded(cfg.Seed))
	return &Runner{
		registry:   registry.New(turn.New(script), registry.WithLogger(logger)),
		script:     script,
		assertions: &Assertions{Mode: cfg.Assertions, Logger: logger},
		logger:     logger,
		printer:    catalog.Printer(locale),
		errors:     errori18n.GetCatalog(locale),
		locale:     locale,
		verbose:    cfg.Verbose,
		timeout:    timeout,
	}
}

// RunFile loads and executes a scenario file.
func RunFile(ctx context.Context, cfg Config, path string) error {
	scenario, err := LoadScenarioFromFile(path)
	if err != nil {
		return err
	}
	return NewRunner(cfg).RunScenario(ctx, scenario)
}

// RunScenario executes the steps in order.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) error {
	if scenario == nil {
		return errors.New("scenario is required")
	}
	r.logf("%s", r.printer.Sprintf("core.scenario.start", scenario.Name, len(scenario.Steps)))
	state := &scenarioState{}

	for index, step := range scenario.Steps {
		stepNumber := index + 1
		r.logf("step %d/%d start: %s", stepNumber, len(scenario.Steps), step.Kind)
		stepStart := time.Now()
		state.stepNumber = stepNumber
		if err := r.execStep(ctx, state, step); err != nil {
			return err
		}
		r.logf("step %d/%d done: %s (%s)", stepNumber, len(scenario.Steps), step.Kind, time.Since(stepStart))
	}
	if r.assertions.Failures > 0 {
		r.logger.Printf("scenario %s: %d expectation(s) failed", scenario.Name, r.assertions.Failures)
		return nil
	}
	r.logger.Print(r.printer.Sprintf("core.scenario.done", scenario.Name))
	return nil
}

// execStep runs one step under the step timeout. Failures are logged with
// their gRPC code and localized message.
func (r *Runner) execStep(ctx context.Context, state *scenarioState, step Step) error {
	stepCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	err := r.runStep(stepCtx, state, step)
	if err == nil {
		return nil
	}
	code, message := errori18n.Describe(err, r.locale)
	r.logger.Print(r.printer.Sprintf("core.scenario.failed", state.stepNumber, code, message))
	return fmt.Errorf("step %d (%s): %w", state.stepNumber, step.Kind, err)
}

func (r *Runner) logf(format string, args ...any) {
	if !r.verbose || r.logger == nil {
		return
	}
	r.logger.Printf(format, args...)
}
