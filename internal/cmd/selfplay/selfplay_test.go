package selfplay

import (
	"bytes"
	"context"
	"flag"
	"reflect"
	"strings"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("selfplay", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Games != 10 || cfg.Length != 0 || cfg.MaxPlies != 5000 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if !cfg.Crawford || cfg.Jacoby {
		t.Fatalf("expected crawford on and jacoby off, got %+v", cfg)
	}
}

func TestParseConfigReadsEnvAndFlags(t *testing.T) {
	t.Setenv("BACKGAMMON_SELFPLAY_GAMES", "4")
	t.Setenv("BACKGAMMON_SELFPLAY_BEAVER", "true")
	fs := flag.NewFlagSet("selfplay", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, []string{"-length", "5", "-seed", "12"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Games != 4 || !cfg.Beaver {
		t.Fatalf("expected env values, got %+v", cfg)
	}
	if cfg.Length != 5 || cfg.Seed != 12 {
		t.Fatalf("expected flag values, got %+v", cfg)
	}
}

func TestPlayRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "no games", cfg: Config{Games: 0, Seed: 1}},
		{name: "negative length", cfg: Config{Games: 1, Length: -1, Seed: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Play(context.Background(), tt.cfg, nil); err == nil {
				t.Fatal("expected config error")
			}
		})
	}
}

func TestPlayMoneyGames(t *testing.T) {
	var logs bytes.Buffer
	cfg := Config{Games: 3, Seed: 7, DoubleRate: 0.3, MaxPlies: 5000, Jacoby: true, Beaver: true, Raccoon: true}

	summary, err := Play(context.Background(), cfg, &logs)
	if err != nil {
		t.Fatalf("play: %v\n%s", err, logs.String())
	}
	if summary.Games != 3 || summary.WhiteWins+summary.BlackWins != 3 {
		t.Fatalf("expected 3 decided games, got %+v", summary)
	}
	if summary.WhitePoints+summary.BlackPoints < 3 {
		t.Fatalf("expected at least one point per game, got %+v", summary)
	}
	if !strings.Contains(logs.String(), "3 games played") {
		t.Fatalf("expected summary log, got %q", logs.String())
	}
}

func TestPlayMatchStartsNewMatchWhenFinished(t *testing.T) {
	var logs bytes.Buffer
	cfg := Config{Games: 6, Length: 1, Seed: 3, Crawford: true, Verbose: true}

	summary, err := Play(context.Background(), cfg, &logs)
	if err != nil {
		t.Fatalf("play: %v\n%s", err, logs.String())
	}
	if summary.Games != 6 {
		t.Fatalf("expected 6 games, got %d", summary.Games)
	}
	if !strings.Contains(logs.String(), "match ") {
		t.Fatalf("expected finished match log, got %q", logs.String())
	}
}

func TestPlayIsReproducible(t *testing.T) {
	cfg := Config{Games: 2, Length: 5, Seed: 99, DoubleRate: 0.2, Crawford: true}

	first, err := Play(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	second, err := Play(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical summaries, got %+v and %+v", first, second)
	}
}

func TestPlayStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	if _, err := Play(ctx, Config{Games: 1, Seed: 1}, &out); err == nil {
		t.Fatal("expected canceled context error")
	}
	if !strings.Contains(out.String(), "run failed (Canceled): context canceled") {
		t.Fatalf("expected logged status code, got %q", out.String())
	}
}
