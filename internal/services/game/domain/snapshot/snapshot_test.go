package snapshot

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/backgammon/internal/services/game/domain/board"
	"github.com/louisbranch/backgammon/internal/services/game/domain/cube"
	"github.com/louisbranch/backgammon/internal/services/game/domain/dice"
	"github.com/louisbranch/backgammon/internal/services/game/domain/match"
)

func fixedRoller(first, second int) dice.Roller {
	return dice.RollFunc(func() (int, int) { return first, second })
}

func playingSnapshot() Snapshot {
	s := New(7, match.Rules{Crawford: true, Beaver: true})
	s.Status = StatusPlaying
	s.CurrentPlayer = board.Black
	s.Dice = board.NewDice(5, 5).Use(5)
	s.Board.Points[0] = 1
	s.Board.Points[1] = 1
	s.Cube = cube.State{
		Cube:    cube.Cube{Level: 4, Owner: board.White},
		Pending: &cube.Offer{OfferedBy: board.Black, Kind: cube.ActionRedouble, OriginalOfferer: board.Black},
	}
	s.Scores = match.Scores{White: 3, Black: 6}
	s.Match = s.Match.AppendCube(match.CubeHistoryEntry{
		Actor:     board.Black,
		Action:    "redouble",
		Level:     4,
		Timestamp: time.Date(2026, 5, 6, 7, 8, 9, 10, time.UTC),
		Note:      "redouble offered",
	})
	s.Match.CrawfordUsed = true
	s.GameNumber = 4
	s.Meta = Meta{
		MatchLength: 7,
		Crawford:    match.EvaluateCrawford(s.Match.Rules, 7, s.Scores, s.Match),
		Timers: &Timers{
			Active:      board.Black,
			WhiteTimeMs: 120000,
			BlackTimeMs: 45500,
			UpdatedAt:   time.Date(2026, 5, 6, 7, 8, 10, 0, time.UTC),
		},
	}
	return s
}

func TestRoundTripIsLossless(t *testing.T) {
	for name, s := range map[string]Snapshot{
		"new match":   New(5, match.DefaultRules()),
		"money game":  New(0, match.Rules{Jacoby: true}),
		"mid playing": playingSnapshot(),
	} {
		t.Run(name, func(t *testing.T) {
			data, err := Serialize(s)
			if err != nil {
				t.Fatalf("serialize: %v", err)
			}
			restored, fallback := Deserialize(data, fixedRoller(1, 2))
			if fallback != FallbackNone {
				t.Fatalf("expected clean restore, got %q", fallback)
			}
			again, err := Serialize(restored)
			if err != nil {
				t.Fatalf("serialize restored: %v", err)
			}
			if !bytes.Equal(data, again) {
				t.Fatalf("expected identical bytes\nfirst:  %s\nsecond: %s", data, again)
			}
		})
	}
}

func TestTimersRoundTripInUTC(t *testing.T) {
	local := time.Date(2026, 5, 6, 8, 8, 10, 0, time.FixedZone("CET", 3600))
	s := playingSnapshot()
	s.Meta.Timers.UpdatedAt = local

	data, err := Serialize(s)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if s.Meta.Timers.UpdatedAt.Location() != local.Location() {
		t.Fatal("expected caller timers left untouched")
	}
	restored, fallback := Deserialize(data, fixedRoller(1, 2))
	if fallback != FallbackNone {
		t.Fatalf("expected clean restore, got %q", fallback)
	}
	want := s.Meta.Timers.UTC()
	if !reflect.DeepEqual(*restored.Meta.Timers, want) {
		t.Fatalf("expected %+v, got %+v", want, *restored.Meta.Timers)
	}
	if !restored.Meta.Timers.UpdatedAt.Equal(local) {
		t.Fatalf("expected same instant, got %s", restored.Meta.Timers.UpdatedAt)
	}
}

func TestSerializeIsCanonical(t *testing.T) {
	data, err := Serialize(New(3, match.DefaultRules()))
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if !strings.HasPrefix(string(data), `{"board":`) {
		t.Fatalf("expected sorted keys, got %s", data)
	}
	if Hash(data) != Hash(append([]byte(nil), data...)) {
		t.Fatal("expected stable hash")
	}
}

func TestDeserializeFallbacks(t *testing.T) {
	valid, err := Serialize(playingSnapshot())
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	mutate := func(fn func(map[string]any)) []byte {
		var raw map[string]any
		if err := json.Unmarshal(valid, &raw); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		fn(raw)
		out, err := json.Marshal(raw)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		return out
	}

	tests := []struct {
		name string
		data []byte
		want Fallback
	}{
		{name: "garbage", data: []byte("{not json"), want: FallbackUndecodable},
		{name: "empty", data: nil, want: FallbackUndecodable},
		{name: "missing meta", data: mutate(func(m map[string]any) { delete(m, "meta") }), want: FallbackMissingMeta},
		{name: "null meta", data: mutate(func(m map[string]any) { m["meta"] = nil }), want: FallbackMissingMeta},
		{name: "meta wrong type", data: mutate(func(m map[string]any) { m["meta"] = "seven" }), want: FallbackMalformedMeta},
		{name: "meta length mismatch", data: mutate(func(m map[string]any) { m["meta"].(map[string]any)["matchLength"] = 9 }), want: FallbackMalformedMeta},
		{name: "meta unknown field", data: mutate(func(m map[string]any) { m["meta"].(map[string]any)["clock"] = 1 }), want: FallbackMalformedMeta},
		{name: "negative timer", data: mutate(func(m map[string]any) {
			m["meta"].(map[string]any)["timers"].(map[string]any)["whiteTimeMs"] = -1
		}), want: FallbackMalformedMeta},
		{name: "corrupt board", data: mutate(func(m map[string]any) { m["board"].(map[string]any)["whiteOff"] = 3 }), want: FallbackCorruptBoard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, fallback := Deserialize(tt.data, fixedRoller(6, 3))
			if fallback != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, fallback)
			}
			if s.Board != board.Initial() {
				t.Fatal("expected initial board")
			}
			if s.Dice.Rolled != [2]int{6, 3} || len(s.Dice.Remaining) != 2 {
				t.Fatalf("expected fresh dice 6-3, got %+v", s.Dice)
			}
			if s.Meta.Crawford.Enabled || s.Meta.Crawford.Active {
				t.Fatalf("expected disabled crawford, got %+v", s.Meta.Crawford)
			}
		})
	}
}

func TestDeserializeKeepsGameStateOnMetaFallback(t *testing.T) {
	valid, err := Serialize(playingSnapshot())
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(valid, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	delete(raw, "meta")
	data, err := json.Marshal(raw)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	s, _ := Deserialize(data, fixedRoller(2, 1))
	if s.Scores != (match.Scores{White: 3, Black: 6}) {
		t.Fatalf("expected scores kept, got %+v", s.Scores)
	}
	if s.CurrentPlayer != board.Black || s.Status != StatusPlaying {
		t.Fatalf("expected black playing, got %s %s", s.CurrentPlayer, s.Status)
	}
	if s.Meta.MatchLength != 7 {
		t.Fatalf("expected match length from record, got %d", s.Meta.MatchLength)
	}
	if s.Meta.Timers != nil {
		t.Fatal("expected timers dropped with the meta block")
	}
}

func TestDeserializeRerollsInconsistentDice(t *testing.T) {
	s := playingSnapshot()
	s.Dice.Remaining = []int{6}
	data, err := Serialize(s)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	restored, fallback := Deserialize(data, fixedRoller(4, 2))
	if fallback != FallbackCorruptDice {
		t.Fatalf("expected dice fallback, got %q", fallback)
	}
	if restored.Dice.Rolled != [2]int{4, 2} {
		t.Fatalf("expected fresh dice, got %+v", restored.Dice)
	}
	if restored.Board != s.Board {
		t.Fatal("expected board kept")
	}
}

func TestNewGameDefaults(t *testing.T) {
	s := Game(match.NewRecord(7, match.DefaultRules()), match.Scores{Black: 6}, 3)
	if s.Status != StatusWaiting || s.CubeStatus() != cube.StatusCentered {
		t.Fatalf("expected waiting game with centered cube, got %s %s", s.Status, s.CubeStatus())
	}
	if !s.Meta.Crawford.Active || s.Meta.Crawford.TriggeredBy != board.Black {
		t.Fatalf("expected active crawford for black, got %+v", s.Meta.Crawford)
	}
	if pips := s.Pips(); pips.White != 167 || pips.Black != 167 {
		t.Fatalf("expected 167 pips each, got %+v", pips)
	}
	if got := (Timers{BlackTimeMs: 1500}).Remaining(board.Black); got != 1500*time.Millisecond {
		t.Fatalf("expected 1.5s, got %s", got)
	}
}
