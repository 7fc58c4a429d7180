// Package turn orchestrates one game: it routes moves and cube actions to
// the rule engines and decides who plays next.
//
// The coordinator takes a snapshot and returns a new one. It holds no game
// state and does no locking; callers must serialize mutating calls per game.
package turn

import (
	"strconv"
	"time"

	apperrors "github.com/louisbranch/backgammon/internal/platform/errors"
	"github.com/louisbranch/backgammon/internal/services/game/domain/board"
	"github.com/louisbranch/backgammon/internal/services/game/domain/command"
	"github.com/louisbranch/backgammon/internal/services/game/domain/cube"
	"github.com/louisbranch/backgammon/internal/services/game/domain/dice"
	"github.com/louisbranch/backgammon/internal/services/game/domain/match"
	"github.com/louisbranch/backgammon/internal/services/game/domain/move"
	"github.com/louisbranch/backgammon/internal/services/game/domain/snapshot"
)

// DefaultHandoffAttempts bounds the re-roll loop when nobody can move.
const DefaultHandoffAttempts = 6

// Coordinator applies player actions to snapshots.
type Coordinator struct {
	roller   dice.Roller
	now      func() time.Time
	attempts int
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithClock sets the clock used for cube history timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// WithHandoffAttempts sets how many re-rolls a handoff may try.
func WithHandoffAttempts(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.attempts = n
		}
	}
}

// New creates a coordinator rolling with roller.
func New(roller dice.Roller, opts ...Option) *Coordinator {
	c := &Coordinator{roller: roller, now: time.Now, attempts: DefaultHandoffAttempts}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Roller returns the dice source, for restoring snapshots.
func (c *Coordinator) Roller() dice.Roller {
	return c.roller
}

// Result is the outcome of one call.
type Result struct {
	Snapshot  snapshot.Snapshot  `json:"snapshot"`
	Legal     bool               `json:"legal"`
	Rejection *command.Rejection `json:"rejection,omitempty"`
	// Finished is set when this call ended the game.
	Finished      bool             `json:"finished,omitempty"`
	Winner        board.Color      `json:"winner,omitempty"`
	ResultKind    match.ResultKind `json:"resultKind,omitempty"`
	Points        int              `json:"points,omitempty"`
	MatchFinished bool             `json:"matchFinished,omitempty"`
	// Stalemate is set when the handoff ran out of re-rolls.
	Stalemate bool `json:"stalemate,omitempty"`
}

func accepted(s snapshot.Snapshot) Result {
	return Result{Snapshot: s, Legal: true}
}

func rejected(s snapshot.Snapshot, rejection *command.Rejection) Result {
	return Result{Snapshot: s, Rejection: rejection}
}

func rejectCode(s snapshot.Snapshot, code apperrors.Code, message string, metadata map[string]string) Result {
	return rejected(s, command.Reject(code, message, metadata))
}

// Start makes the opening roll and begins play.
func (c *Coordinator) Start(s snapshot.Snapshot) Result {
	if r, ok := c.checkStartable(s); !ok {
		return r
	}
	player, pool, err := dice.Opening(c.roller)
	if err != nil {
		return rejectCode(s, apperrors.CodeTurnOpeningUndecided, err.Error(), map[string]string{"Rolls": strconv.Itoa(dice.MaxOpeningRolls)})
	}
	return c.begin(s, player, pool)
}

// StartWith begins play with a chosen first player and roll.
func (c *Coordinator) StartWith(s snapshot.Snapshot, player board.Color, first, second int) Result {
	if r, ok := c.checkStartable(s); !ok {
		return r
	}
	if !player.Valid() {
		return rejectCode(s, apperrors.CodeMoveInvalidPlayer, "unknown player", map[string]string{"Player": string(player)})
	}
	if !board.ValidDie(first) || !board.ValidDie(second) {
		return rejectCode(s, apperrors.CodeMoveDieRange, "die out of range", nil)
	}
	return c.begin(s, player, board.NewDice(first, second))
}

func (c *Coordinator) checkStartable(s snapshot.Snapshot) (Result, bool) {
	if s.Match.State == match.StateFinished {
		return rejectCode(s, apperrors.CodeTurnMatchFinished, "match is finished", nil), false
	}
	if s.Status != snapshot.StatusWaiting {
		return rejectCode(s, apperrors.CodeTurnAlreadyStarted, "game already started", nil), false
	}
	return Result{}, true
}

func (c *Coordinator) begin(s snapshot.Snapshot, player board.Color, pool board.Dice) Result {
	s.Status = snapshot.StatusPlaying
	s.CurrentPlayer = player
	s.Dice = pool
	if move.HasAny(player, s.Board, pool) {
		return accepted(s)
	}
	return c.handoff(s)
}

// SubmitMove validates and applies one checker step for actor.
func (c *Coordinator) SubmitMove(s snapshot.Snapshot, m move.Move, actor board.Color) Result {
	if r, ok := checkActor(s, actor); !ok {
		return r
	}
	if s.Cube.Pending != nil {
		return rejectCode(s, apperrors.CodeTurnCubePending, "answer the pending cube offer first", nil)
	}
	if m.Player == board.NoColor {
		m.Player = actor
	}
	if m.Player != actor {
		return rejectCode(s, apperrors.CodeTurnNotYourTurn, "move belongs to the other player", map[string]string{"Player": string(m.Player)})
	}

	if !move.HasAny(actor, s.Board, s.Dice) {
		return rejectCode(s, apperrors.CodeMoveNoMovesAvailable, "no legal moves are available", map[string]string{"Player": string(actor)})
	}

	verdict := move.Validate(m, s.Board, s.Dice)
	if !verdict.Valid {
		return rejected(s, verdict.Rejection)
	}

	s.Board = move.Apply(m, s.Board)
	s.Dice = s.Dice.Use(m.Die)

	if winner := move.CheckWin(s.Board); winner != board.NoColor {
		return c.finish(s, winner, match.Classify(s.Board, winner), "")
	}
	if move.HasAny(actor, s.Board, s.Dice) {
		return accepted(s)
	}
	return c.handoff(s)
}

// handoff passes the turn and rolls until a side can move.
func (c *Coordinator) handoff(s snapshot.Snapshot) Result {
	for attempt := 0; attempt < c.attempts; attempt++ {
		s.CurrentPlayer = s.CurrentPlayer.Opponent()
		s.Dice = dice.Pool(c.roller)
		if move.HasAny(s.CurrentPlayer, s.Board, s.Dice) {
			return accepted(s)
		}
	}
	r := accepted(s)
	r.Stalemate = true
	return r
}

func checkActor(s snapshot.Snapshot, actor board.Color) (Result, bool) {
	if s.Status != snapshot.StatusPlaying {
		return rejectCode(s, apperrors.CodeTurnNotPlaying, "game is not in play", map[string]string{"Status": string(s.Status)}), false
	}
	if actor != s.CurrentPlayer {
		return rejectCode(s, apperrors.CodeTurnNotYourTurn, "not your turn", map[string]string{"Player": string(actor)}), false
	}
	return Result{}, true
}

// SubmitCubeAction applies a cube action for actor. Offers are made by the
// player on turn before moving; answers come from the other player.
func (c *Coordinator) SubmitCubeAction(s snapshot.Snapshot, action cube.Action, actor board.Color) Result {
	if s.Status != snapshot.StatusPlaying {
		return rejectCode(s, apperrors.CodeTurnNotPlaying, "game is not in play", map[string]string{"Status": string(s.Status)})
	}
	if action == cube.ActionDouble || action == cube.ActionRedouble {
		if r, ok := checkActor(s, actor); !ok {
			return r
		}
		if !s.Dice.Untouched() {
			return rejectCode(s, apperrors.CodeTurnAlreadyMoved, "double before moving", nil)
		}
	}

	decision := cube.Decide(s.Cube, action, actor, cube.Context{Record: s.Match, Scores: s.Scores}, c.now)
	if !decision.Accepted() {
		return rejected(s, decision.Rejection)
	}
	s.Cube = decision.State
	s.Match = decision.Record
	if decision.MatchUpdate == nil {
		return accepted(s)
	}

	update := decision.MatchUpdate
	winner := actor.Opponent()
	s = applyUpdate(s, *update)
	s.Status = snapshot.StatusFinished
	s.Winner = winner
	s.Result = match.ResultSingle
	s.Points = s.Cube.Cube.Level
	s.FinishReason = "pass"
	return Result{
		Snapshot:      s,
		Legal:         true,
		Finished:      true,
		Winner:        winner,
		ResultKind:    match.ResultSingle,
		Points:        s.Points,
		MatchFinished: update.MatchFinished,
	}
}

// Resign ends the game in the opponent's favor.
func (c *Coordinator) Resign(s snapshot.Snapshot, actor board.Color, kind match.ResultKind) Result {
	if s.Status != snapshot.StatusPlaying {
		return rejectCode(s, apperrors.CodeTurnNotPlaying, "game is not in play", map[string]string{"Status": string(s.Status)})
	}
	if !actor.Valid() {
		return rejectCode(s, apperrors.CodeMoveInvalidPlayer, "unknown player", map[string]string{"Player": string(actor)})
	}
	if !kind.Valid() {
		return rejectCode(s, apperrors.CodeTurnInvalidResult, "unknown result", map[string]string{"Result": string(kind)})
	}
	return c.finish(s, actor.Opponent(), kind, "resign")
}

// ForceFinish ends the game for the external timer without validating the
// position. The winner scores a single game at the cube level.
func (c *Coordinator) ForceFinish(s snapshot.Snapshot, winner board.Color, reason string) Result {
	if s.Status == snapshot.StatusFinished {
		return rejectCode(s, apperrors.CodeTurnNotPlaying, "game is already finished", map[string]string{"Status": string(s.Status)})
	}
	if !winner.Valid() {
		return rejectCode(s, apperrors.CodeTurnInvalidResult, "unknown winner", map[string]string{"Result": string(winner)})
	}
	if reason == "" {
		reason = "forced"
	}
	return c.finish(s, winner, match.ResultSingle, reason)
}

func (c *Coordinator) finish(s snapshot.Snapshot, winner board.Color, kind match.ResultKind, reason string) Result {
	result, kind := match.GameResult(kind, winner, s.Cube.Cube.Level, s.Cube.Turned(), s.Match)
	update := match.ApplyPointResult(s.Match, s.Scores, result)
	s = applyUpdate(s, update)
	s.Status = snapshot.StatusFinished
	s.Winner = winner
	s.Result = kind
	s.Points = result.Points
	s.FinishReason = reason
	return Result{
		Snapshot:      s,
		Legal:         true,
		Finished:      true,
		Winner:        winner,
		ResultKind:    kind,
		Points:        result.Points,
		MatchFinished: update.MatchFinished,
	}
}

func applyUpdate(s snapshot.Snapshot, update match.Update) snapshot.Snapshot {
	s.Scores = update.Scores
	s.Match = update.Record
	s.Meta.Crawford = update.Crawford
	if update.ClearPending {
		s.Cube.Pending = nil
	}
	return s
}

// NextGame sets up the following game of the match with a centered cube.
func (c *Coordinator) NextGame(s snapshot.Snapshot) Result {
	if s.Status != snapshot.StatusFinished {
		return rejectCode(s, apperrors.CodeTurnGameNotFinished, "current game is not finished", nil)
	}
	if s.Match.State == match.StateFinished {
		return rejectCode(s, apperrors.CodeTurnMatchFinished, "match is finished", nil)
	}
	next := snapshot.Game(s.Match, s.Scores, s.GameNumber+1)
	next.Meta.Timers = s.Meta.Timers
	return accepted(next)
}

// Available lists the legal first steps for the player on turn.
func Available(s snapshot.Snapshot) []move.Move {
	if s.Status != snapshot.StatusPlaying || s.Cube.Pending != nil {
		return nil
	}
	return move.Available(s.CurrentPlayer, s.Board, s.Dice)
}
