package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/louisbranch/backgammon/internal/services/game/domain/board"
	"github.com/louisbranch/backgammon/internal/services/game/domain/dice"
	"github.com/louisbranch/backgammon/internal/services/game/domain/encoding"
	"github.com/louisbranch/backgammon/internal/services/game/domain/match"
)

// Fallback names the repair applied while restoring a snapshot. The zero
// value means the blob was restored as written.
type Fallback string

const (
	FallbackNone          Fallback = ""
	FallbackUndecodable   Fallback = "undecodable"
	FallbackMissingMeta   Fallback = "missing_meta"
	FallbackMalformedMeta Fallback = "malformed_meta"
	FallbackCorruptBoard  Fallback = "corrupt_board"
	FallbackCorruptDice   Fallback = "corrupt_dice"
)

// Serialize encodes s as canonical JSON.
func Serialize(s Snapshot) ([]byte, error) {
	if s.Meta.Timers != nil {
		timers := s.Meta.Timers.UTC()
		s.Meta.Timers = &timers
	}
	data, err := encoding.Canonical(s)
	if err != nil {
		return nil, fmt.Errorf("serialize snapshot: %w", err)
	}
	return data, nil
}

// Hash returns the content hash of serialized snapshot bytes.
func Hash(data []byte) string {
	return encoding.HashBytes(data)
}

type wire struct {
	Snapshot
	Meta json.RawMessage `json:"meta"`
}

// Deserialize restores a snapshot and never fails. A missing or malformed
// meta block, or a board that does not hold fifteen checkers per side,
// resets the board, rolls fresh dice with roller and disables Crawford.
// The returned Fallback says which repair was made.
func Deserialize(data []byte, roller dice.Roller) (Snapshot, Fallback) {
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		s := New(0, match.Rules{})
		return reset(s, roller), FallbackUndecodable
	}
	s := w.Snapshot
	s = repairEnvelope(s)

	meta, reason := decodeMeta(w.Meta, s.Match)
	if reason != FallbackNone {
		s.Meta = Meta{MatchLength: s.Match.Length}
		return reset(s, roller), reason
	}
	s.Meta = meta

	if err := s.Board.CheckIntegrity(); err != nil {
		return reset(s, roller), FallbackCorruptBoard
	}
	if s.Status == StatusPlaying && !s.Dice.Consistent() {
		s.Dice = dice.Pool(roller)
		return s, FallbackCorruptDice
	}
	return s, FallbackNone
}

// reset puts the initial position back with fresh dice and a disabled
// Crawford state.
func reset(s Snapshot, roller dice.Roller) Snapshot {
	s.Board = board.Initial()
	s.Dice = dice.Pool(roller)
	s.Meta.Crawford = match.CrawfordState{MatchLength: s.Meta.MatchLength}
	if s.Status == StatusPlaying && !s.CurrentPlayer.Valid() {
		s.CurrentPlayer = board.White
	}
	return s
}

// repairEnvelope fills fields that older or partial blobs may lack.
func repairEnvelope(s Snapshot) Snapshot {
	if !s.Status.Valid() {
		s.Status = StatusWaiting
	}
	if !s.Cube.Consistent() {
		s.Cube.Cube.Level = 1
		s.Cube.Cube.Owner = board.NoColor
		s.Cube.Pending = nil
	}
	if s.Match.State == "" {
		s.Match.State = match.StateInProgress
	}
	if s.Match.CubeHistory == nil {
		s.Match.CubeHistory = []match.CubeHistoryEntry{}
	}
	if s.GameNumber < 1 {
		s.GameNumber = 1
	}
	return s
}

func decodeMeta(raw json.RawMessage, record match.Record) (Meta, Fallback) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Meta{}, FallbackMissingMeta
	}
	var meta Meta
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&meta); err != nil {
		return Meta{}, FallbackMalformedMeta
	}
	if meta.MatchLength < 0 || meta.MatchLength != record.Length {
		return Meta{}, FallbackMalformedMeta
	}
	if meta.Crawford.MatchLength != meta.MatchLength {
		return Meta{}, FallbackMalformedMeta
	}
	if meta.Timers != nil && !meta.Timers.valid() {
		return Meta{}, FallbackMalformedMeta
	}
	return meta, FallbackNone
}
