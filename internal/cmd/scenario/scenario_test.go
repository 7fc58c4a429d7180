package scenario

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("scenario", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if !cfg.Assertions {
		t.Fatal("expected assertions to default to true")
	}
	if cfg.Timeout != 10*time.Second {
		t.Fatalf("expected 10s timeout, got %s", cfg.Timeout)
	}
	if cfg.Seed != 1 || cfg.Locale != "en-US" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestParseConfigFlagsOverrideEnv(t *testing.T) {
	t.Setenv("BACKGAMMON_SCENARIO_FILE", "env.lua")
	t.Setenv("BACKGAMMON_SCENARIO_SEED", "9")
	fs := flag.NewFlagSet("scenario", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, []string{"-seed", "11", "-assert=false"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Scenario != "env.lua" {
		t.Fatalf("expected env scenario, got %q", cfg.Scenario)
	}
	if cfg.Seed != 11 || cfg.Assertions {
		t.Fatalf("expected flag overrides, got %+v", cfg)
	}
}

func TestRunRequiresScenario(t *testing.T) {
	if err := Run(context.Background(), Config{}, nil, nil); err == nil {
		t.Fatal("expected error without scenario path")
	}
}

func TestRunExecutesScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pass.lua")
	script := `local scene = Scenario.new("quick pass")
scene:match({length = 3})
scene:start({player = "black", dice = {4, 1}})
scene:double():pass()
scene:expect_score({black = 2})
return scene
`
	if err := os.WriteFile(path, []byte(script), 0o600); err != nil {
		t.Fatalf("write scenario: %v", err)
	}

	var errOut bytes.Buffer
	cfg := Config{Scenario: path, Assertions: true, Timeout: time.Second, Seed: 3, Locale: "fr-FR"}
	if err := Run(context.Background(), cfg, nil, &errOut); err != nil {
		t.Fatalf("run: %v\n%s", err, errOut.String())
	}
	if !strings.Contains(errOut.String(), "scénario quick pass réussi") {
		t.Fatalf("expected localized pass message, got %q", errOut.String())
	}
}
