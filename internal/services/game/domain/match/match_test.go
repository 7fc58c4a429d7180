package match

import (
	"reflect"
	"testing"
	"time"

	"github.com/louisbranch/backgammon/internal/services/game/domain/board"
)

func TestEvaluateCrawford(t *testing.T) {
	crawford := Rules{Crawford: true}
	tests := []struct {
		name        string
		rules       Rules
		length      int
		scores      Scores
		used        bool
		active      bool
		triggeredBy board.Color
	}{
		{name: "white one away", rules: crawford, length: 7, scores: Scores{White: 6}, active: true, triggeredBy: board.White},
		{name: "black one away", rules: crawford, length: 5, scores: Scores{White: 2, Black: 4}, active: true, triggeredBy: board.Black},
		{name: "both one away", rules: crawford, length: 7, scores: Scores{White: 6, Black: 6}},
		{name: "already used", rules: crawford, length: 7, scores: Scores{White: 6}, used: true, triggeredBy: board.White},
		{name: "disabled", rules: Rules{}, length: 7, scores: Scores{White: 6}},
		{name: "money game", rules: crawford, length: 0, scores: Scores{White: 6}},
		{name: "not one away", rules: crawford, length: 7, scores: Scores{White: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := NewRecord(tt.length, tt.rules)
			record.CrawfordUsed = tt.used
			state := EvaluateCrawford(tt.rules, tt.length, tt.scores, record)
			if state.Active != tt.active {
				t.Fatalf("expected active=%v, got %+v", tt.active, state)
			}
			if state.TriggeredBy != tt.triggeredBy {
				t.Fatalf("expected triggeredBy %q, got %q", tt.triggeredBy, state.TriggeredBy)
			}
			if state.Enabled != tt.rules.Crawford {
				t.Fatalf("expected enabled=%v", tt.rules.Crawford)
			}
		})
	}
}

func TestCrawfordConsumedOnceAndNeverReactivates(t *testing.T) {
	record := NewRecord(7, DefaultRules())
	scores := Scores{White: 6}

	state := EvaluateCrawford(record.Rules, record.Length, scores, record)
	if !state.Active || state.OneAwayScore != 6 {
		t.Fatalf("expected active crawford at 6, got %+v", state)
	}

	// Black wins the Crawford game.
	update := ApplyPointResult(record, scores, PointResult{Winner: board.Black, Points: 1})
	if !update.Record.CrawfordUsed {
		t.Fatal("expected crawford consumed")
	}
	if update.Crawford.Active {
		t.Fatal("expected post-crawford game to allow doubling")
	}

	// Black climbs to 6 as well, then white drops back conceptually to one away again.
	update = ApplyPointResult(update.Record, update.Scores, PointResult{Winner: board.Black, Points: 5})
	if update.Scores.Black != 6 {
		t.Fatalf("expected black at 6, got %d", update.Scores.Black)
	}
	if update.Crawford.Active {
		t.Fatal("expected crawford to stay inactive")
	}

	reevaluated := EvaluateCrawford(update.Record.Rules, 7, Scores{White: 6, Black: 2}, update.Record)
	if reevaluated.Active {
		t.Fatal("expected used crawford never to reactivate")
	}
}

func TestApplyPointResultFinishesMatch(t *testing.T) {
	record := NewRecord(3, DefaultRules())
	update := ApplyPointResult(record, Scores{White: 1}, PointResult{Winner: board.White, Points: 2})
	if !update.MatchFinished || update.Record.State != StateFinished {
		t.Fatalf("expected finished match, got %+v", update.Record)
	}
	if update.Record.Winner != board.White {
		t.Fatalf("expected white match winner, got %q", update.Record.Winner)
	}
	if !update.ClearPending {
		t.Fatal("expected pending cube to be cleared")
	}
}

func TestApplyPointResultMarksCrawfordWhenScoreFirstReachesOneAway(t *testing.T) {
	record := NewRecord(5, DefaultRules())
	update := ApplyPointResult(record, Scores{}, PointResult{Winner: board.White, Points: 4})
	if update.Record.CrawfordUsed {
		t.Fatal("expected crawford not yet used")
	}
	if !update.Crawford.Active {
		t.Fatal("expected next game to be the crawford game")
	}
	next := ApplyPointResult(update.Record, update.Scores, PointResult{Winner: board.Black, Points: 2})
	if !next.Record.CrawfordUsed || next.Crawford.Active {
		t.Fatalf("expected crawford consumed, got %+v", next.Crawford)
	}
}

func TestMoneyGameNeverFinishes(t *testing.T) {
	update := ApplyPointResult(NewRecord(0, Rules{}), Scores{}, PointResult{Winner: board.Black, Points: 64})
	if update.MatchFinished {
		t.Fatal("expected money session to continue")
	}
}

func TestApplyPointResultIsDeterministic(t *testing.T) {
	record := NewRecord(7, DefaultRules()).AppendCube(CubeHistoryEntry{
		Actor:     board.White,
		Action:    "double",
		Level:     2,
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	})
	scores := Scores{White: 6, Black: 3}
	result := PointResult{Winner: board.Black, Points: 2}

	first := ApplyPointResult(record, scores, result)
	second := ApplyPointResult(record, scores, result)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical updates, got %+v and %+v", first, second)
	}
	if record.CrawfordUsed {
		t.Fatal("expected input record untouched")
	}
}

func TestClassifyResult(t *testing.T) {
	var single board.Board
	single.WhiteOff = 15
	single.BlackOff = 3
	single.Points[0] = -12

	var gammon board.Board
	gammon.WhiteOff = 15
	gammon.Points[10] = -15

	var backgammonBar board.Board
	backgammonBar.WhiteOff = 15
	backgammonBar.Points[10] = -14
	backgammonBar.BlackBar = 1

	var backgammonHome board.Board
	backgammonHome.WhiteOff = 15
	backgammonHome.Points[10] = -14
	backgammonHome.Points[20] = -1

	tests := []struct {
		name string
		b    board.Board
		want ResultKind
	}{
		{name: "single", b: single, want: ResultSingle},
		{name: "gammon", b: gammon, want: ResultGammon},
		{name: "backgammon bar", b: backgammonBar, want: ResultBackgammon},
		{name: "backgammon home", b: backgammonHome, want: ResultBackgammon},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.b, board.White); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestGameResultJacoby(t *testing.T) {
	money := NewRecord(0, Rules{Jacoby: true})
	result, kind := GameResult(ResultGammon, board.White, 1, false, money)
	if kind != ResultSingle || result.Points != 1 {
		t.Fatalf("expected jacoby single, got %s for %d", kind, result.Points)
	}
	result, kind = GameResult(ResultGammon, board.White, 2, true, money)
	if kind != ResultGammon || result.Points != 4 {
		t.Fatalf("expected turned-cube gammon for 4, got %s for %d", kind, result.Points)
	}
	matchRecord := NewRecord(7, Rules{Jacoby: true})
	result, _ = GameResult(ResultBackgammon, board.Black, 1, false, matchRecord)
	if result.Points != 3 || result.Winner != board.Black {
		t.Fatalf("expected match play backgammon for 3, got %+v", result)
	}
}
