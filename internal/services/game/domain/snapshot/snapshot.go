// Package snapshot defines the per-game state handed between the turn
// coordinator and its owner, and how it is serialized and restored.
package snapshot

import (
	"time"

	"github.com/louisbranch/backgammon/internal/services/game/domain/board"
	"github.com/louisbranch/backgammon/internal/services/game/domain/cube"
	"github.com/louisbranch/backgammon/internal/services/game/domain/match"
)

// Status is the game lifecycle.
type Status string

const (
	StatusWaiting  Status = "WAITING"
	StatusPlaying  Status = "PLAYING"
	StatusFinished Status = "FINISHED"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusWaiting || s == StatusPlaying || s == StatusFinished
}

// Timers is the clock state owned by the external timer. It is carried
// through unchanged apart from storing UpdatedAt in UTC.
type Timers struct {
	Active      board.Color `json:"active,omitempty"`
	WhiteTimeMs int64       `json:"whiteTimeMs"`
	BlackTimeMs int64       `json:"blackTimeMs"`
	Paused      bool        `json:"paused"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Remaining returns the time budget of c.
func (t Timers) Remaining(c board.Color) time.Duration {
	if c == board.Black {
		return time.Duration(t.BlackTimeMs) * time.Millisecond
	}
	return time.Duration(t.WhiteTimeMs) * time.Millisecond
}

// UTC returns t with UpdatedAt in UTC.
func (t Timers) UTC() Timers {
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t
}

func (t Timers) valid() bool {
	if t.WhiteTimeMs < 0 || t.BlackTimeMs < 0 {
		return false
	}
	return t.Active == board.NoColor || t.Active.Valid()
}

// Meta is the match metadata block.
type Meta struct {
	MatchLength int                 `json:"matchLength"`
	Crawford    match.CrawfordState `json:"crawford"`
	Timers      *Timers             `json:"timers,omitempty"`
}

// Snapshot is everything needed to continue a game.
type Snapshot struct {
	Board         board.Board      `json:"board"`
	Dice          board.Dice       `json:"dice"`
	Status        Status           `json:"status"`
	CurrentPlayer board.Color      `json:"currentPlayer,omitempty"`
	Winner        board.Color      `json:"winner,omitempty"`
	Result        match.ResultKind `json:"result,omitempty"`
	Points        int              `json:"points,omitempty"`
	FinishReason  string           `json:"finishReason,omitempty"`
	Cube          cube.State       `json:"cube"`
	Scores        match.Scores     `json:"scores"`
	Match         match.Record     `json:"match"`
	GameNumber    int              `json:"gameNumber"`
	Meta          Meta             `json:"meta"`
}

// New returns the first game of a match, waiting for its opening roll.
func New(length int, rules match.Rules) Snapshot {
	record := match.NewRecord(length, rules)
	return Game(record, match.Scores{}, 1)
}

// Game returns a fresh game inside an existing match.
func Game(record match.Record, scores match.Scores, number int) Snapshot {
	return Snapshot{
		Board:      board.Initial(),
		Status:     StatusWaiting,
		Cube:       cube.NewState(),
		Scores:     scores,
		Match:      record,
		GameNumber: number,
		Meta: Meta{
			MatchLength: record.Length,
			Crawford:    match.EvaluateCrawford(record.Rules, record.Length, scores, record),
		},
	}
}

// CubeStatus is the cube sub-state; it is meaningful while playing.
func (s Snapshot) CubeStatus() cube.Status {
	return s.Cube.Status()
}

// Pips returns the pip count of both sides.
func (s Snapshot) Pips() board.PipCount {
	return s.Board.Pips()
}
