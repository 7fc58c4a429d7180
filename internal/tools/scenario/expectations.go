package scenario

import (
	"context"
	"strings"

	"github.com/louisbranch/backgammon/internal/services/game/domain/board"
	"github.com/louisbranch/backgammon/internal/services/game/domain/move"
)

func (r *Runner) runExpectTurnStep(ctx context.Context, state *scenarioState, step Step) error {
	s, err := r.current(ctx, state)
	if err != nil {
		return err
	}
	if name := optionalString(step.Args, "player", ""); name != "" {
		player, err := r.parsePlayer(name)
		if err != nil {
			return err
		}
		if s.CurrentPlayer != player {
			return r.assertf("expected %s on turn, got %q", player, s.CurrentPlayer)
		}
	}
	if remaining, ok := step.Args["dice"]; ok {
		want, ok := intList(remaining)
		if !ok {
			return r.failf("expect_turn dice must be a list of integers")
		}
		if !sameInts(want, s.Dice.Remaining) {
			return r.assertf("expected dice %v, got %v", want, s.Dice.Remaining)
		}
	}
	return nil
}

func (r *Runner) runExpectCubeStep(ctx context.Context, state *scenarioState, step Step) error {
	s, err := r.current(ctx, state)
	if err != nil {
		return err
	}
	if level, ok := readInt(step.Args, "level"); ok && s.Cube.Cube.Level != level {
		return r.assertf("expected cube level %d, got %d", level, s.Cube.Cube.Level)
	}
	if owner, ok := step.Args["owner"].(string); ok {
		want := board.NoColor
		if owner != "none" {
			if want, err = r.parsePlayer(owner); err != nil {
				return err
			}
		}
		if s.Cube.Cube.Owner != want {
			return r.assertf("expected cube owner %q, got %q", want, s.Cube.Cube.Owner)
		}
	}
	if status, ok := step.Args["status"].(string); ok && string(s.CubeStatus()) != strings.ToUpper(status) {
		return r.assertf("expected cube status %s, got %s", strings.ToUpper(status), s.CubeStatus())
	}
	if name, ok := step.Args["pending_by"].(string); ok {
		player, err := r.parsePlayer(name)
		if err != nil {
			return err
		}
		if s.Cube.Pending == nil || s.Cube.Pending.OfferedBy != player {
			return r.assertf("expected offer pending from %s, got %+v", player, s.Cube.Pending)
		}
	}
	return nil
}

func (r *Runner) runExpectScoreStep(ctx context.Context, state *scenarioState, step Step) error {
	s, err := r.current(ctx, state)
	if err != nil {
		return err
	}
	if white, ok := readInt(step.Args, "white"); ok && s.Scores.White != white {
		return r.assertf("expected white score %d, got %d", white, s.Scores.White)
	}
	if black, ok := readInt(step.Args, "black"); ok && s.Scores.Black != black {
		return r.assertf("expected black score %d, got %d", black, s.Scores.Black)
	}
	if value, ok := step.Args["match_state"].(string); ok && string(s.Match.State) != strings.ToUpper(value) {
		return r.assertf("expected match state %s, got %s", strings.ToUpper(value), s.Match.State)
	}
	if active, ok := readBool(step.Args, "crawford"); ok && s.Meta.Crawford.Active != active {
		return r.assertf("expected crawford active=%v, got %+v", active, s.Meta.Crawford)
	}
	if used, ok := readBool(step.Args, "crawford_used"); ok && s.Match.CrawfordUsed != used {
		return r.assertf("expected crawford used=%v, got %v", used, s.Match.CrawfordUsed)
	}
	return nil
}

func (r *Runner) runExpectStatusStep(ctx context.Context, state *scenarioState, step Step) error {
	s, err := r.current(ctx, state)
	if err != nil {
		return err
	}
	if status, ok := step.Args["status"].(string); ok && string(s.Status) != strings.ToUpper(status) {
		return r.assertf("expected status %s, got %s", strings.ToUpper(status), s.Status)
	}
	if name, ok := step.Args["winner"].(string); ok {
		winner, err := r.parsePlayer(name)
		if err != nil {
			return err
		}
		if s.Winner != winner {
			return r.assertf("expected winner %s, got %q", winner, s.Winner)
		}
	}
	if points, ok := readInt(step.Args, "points"); ok && s.Points != points {
		return r.assertf("expected %d points, got %d", points, s.Points)
	}
	if result, ok := step.Args["result"].(string); ok && string(s.Result) != strings.ToUpper(result) {
		return r.assertf("expected result %s, got %s", strings.ToUpper(result), s.Result)
	}
	return nil
}

func (r *Runner) runExpectPipsStep(ctx context.Context, state *scenarioState, step Step) error {
	s, err := r.current(ctx, state)
	if err != nil {
		return err
	}
	pips := s.Pips()
	if white, ok := readInt(step.Args, "white"); ok && pips.White != white {
		return r.assertf("expected white pips %d, got %d", white, pips.White)
	}
	if black, ok := readInt(step.Args, "black"); ok && pips.Black != black {
		return r.assertf("expected black pips %d, got %d", black, pips.Black)
	}
	return nil
}

func (r *Runner) runExpectMovesStep(ctx context.Context, state *scenarioState, step Step) error {
	s, err := r.current(ctx, state)
	if err != nil {
		return err
	}
	moves := move.Available(s.CurrentPlayer, s.Board, s.Dice)
	if count, ok := readInt(step.Args, "count"); ok && len(moves) != count {
		return r.assertf("expected %d legal moves, got %d: %v", count, len(moves), moves)
	}
	return nil
}
