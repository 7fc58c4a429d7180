// Package match scores games into a match and evaluates the Crawford rule.
//
// Every function is deterministic and free of I/O: identical inputs always
// produce identical outputs.
package match

import (
	"time"

	"github.com/louisbranch/backgammon/internal/services/game/domain/board"
)

// Rules are the optional rules fixed at match creation.
type Rules struct {
	Crawford bool `json:"crawford"`
	Jacoby   bool `json:"jacoby"`
	Beaver   bool `json:"beaver"`
	Raccoon  bool `json:"raccoon"`
}

// DefaultRules enables the Crawford rule only.
func DefaultRules() Rules {
	return Rules{Crawford: true}
}

// State is the match lifecycle.
type State string

const (
	StateInProgress State = "IN_PROGRESS"
	StateFinished   State = "FINISHED"
)

// Scores holds both sides' match points.
type Scores struct {
	White int `json:"white"`
	Black int `json:"black"`
}

// Of returns the score of c.
func (s Scores) Of(c board.Color) int {
	if c == board.Black {
		return s.Black
	}
	return s.White
}

// Add returns a copy with points credited to c.
func (s Scores) Add(c board.Color, points int) Scores {
	if c == board.Black {
		s.Black += points
	} else {
		s.White += points
	}
	return s
}

// CubeHistoryEntry is one resolved cube action. The history is append-only.
type CubeHistoryEntry struct {
	Actor     board.Color `json:"actor"`
	Action    string      `json:"action"`
	Level     int         `json:"level"`
	Timestamp time.Time   `json:"timestamp"`
	Note      string      `json:"note,omitempty"`
}

// Record is the match-level state.
type Record struct {
	Length       int                `json:"length"`
	Rules        Rules              `json:"rules"`
	State        State              `json:"state"`
	CrawfordUsed bool               `json:"crawfordUsed"`
	Winner       board.Color        `json:"winner,omitempty"`
	CubeHistory  []CubeHistoryEntry `json:"cubeHistory"`
}

// NewRecord starts a match. A length of zero is an unlimited money session.
func NewRecord(length int, rules Rules) Record {
	if length < 0 {
		length = 0
	}
	return Record{Length: length, Rules: rules, State: StateInProgress, CubeHistory: []CubeHistoryEntry{}}
}

// AppendCube returns a copy with entry appended to the cube history.
func (r Record) AppendCube(entry CubeHistoryEntry) Record {
	history := make([]CubeHistoryEntry, 0, len(r.CubeHistory)+1)
	history = append(history, r.CubeHistory...)
	r.CubeHistory = append(history, entry)
	return r
}

// CrawfordState is the evaluated Crawford status for the current game.
type CrawfordState struct {
	Enabled      bool        `json:"enabled"`
	Active       bool        `json:"active"`
	Used         bool        `json:"used"`
	MatchLength  int         `json:"matchLength"`
	OneAwayScore int         `json:"oneAwayScore"`
	TriggeredBy  board.Color `json:"triggeredBy,omitempty"`
}

// EvaluateCrawford reports whether the current game is the Crawford game:
// the rule is enabled, the length is known, exactly one side is one point
// away, and the match has not already played its Crawford game.
func EvaluateCrawford(rules Rules, matchLength int, scores Scores, record Record) CrawfordState {
	state := CrawfordState{
		Enabled:     rules.Crawford,
		Used:        record.CrawfordUsed,
		MatchLength: matchLength,
	}
	if !rules.Crawford || matchLength <= 0 {
		return state
	}
	oneAway := matchLength - 1
	state.OneAwayScore = oneAway
	whiteAway := scores.White == oneAway
	blackAway := scores.Black == oneAway
	if whiteAway == blackAway {
		return state
	}
	if whiteAway {
		state.TriggeredBy = board.White
	} else {
		state.TriggeredBy = board.Black
	}
	state.Active = !record.CrawfordUsed
	return state
}

// PointResult is the outcome of one game.
type PointResult struct {
	Winner board.Color `json:"winner"`
	Points int         `json:"points"`
}

// Update is the result of scoring a game into the match.
type Update struct {
	Scores        Scores        `json:"scores"`
	Record        Record        `json:"record"`
	Crawford      CrawfordState `json:"crawford"`
	MatchFinished bool          `json:"matchFinished"`
	// ClearPending tells the caller to drop any pending cube offer.
	ClearPending bool `json:"clearPending"`
}

// ApplyPointResult credits result to the winner. The game that just ended
// consumes the Crawford game when it was the Crawford game; the match
// finishes once a score reaches the length. Re-centering the cube for the
// next game is the caller's job.
func ApplyPointResult(record Record, scores Scores, result PointResult) Update {
	before := EvaluateCrawford(record.Rules, record.Length, scores, record)
	if before.Active {
		record.CrawfordUsed = true
	}

	points := result.Points
	if points < 0 {
		points = 0
	}
	scores = scores.Add(result.Winner, points)

	if record.Length > 0 && scores.Of(result.Winner) >= record.Length {
		record.State = StateFinished
		record.Winner = result.Winner
	}

	return Update{
		Scores:        scores,
		Record:        record,
		Crawford:      EvaluateCrawford(record.Rules, record.Length, scores, record),
		MatchFinished: record.State == StateFinished,
		ClearPending:  true,
	}
}
