package scenario

import (
	"context"
	"fmt"
	"strings"

	errori18n "github.com/louisbranch/backgammon/internal/platform/errors/i18n"
	"github.com/louisbranch/backgammon/internal/platform/i18n/catalog"
	"github.com/louisbranch/backgammon/internal/services/game/domain/board"
	"github.com/louisbranch/backgammon/internal/services/game/domain/cube"
	"github.com/louisbranch/backgammon/internal/services/game/domain/match"
	"github.com/louisbranch/backgammon/internal/services/game/domain/move"
	"github.com/louisbranch/backgammon/internal/services/game/domain/snapshot"
	"github.com/louisbranch/backgammon/internal/services/game/domain/turn"
)

type scenarioState struct {
	gameID     string
	stepNumber int
}

func (r *Runner) runStep(ctx context.Context, state *scenarioState, step Step) error {
	switch step.Kind {
	case "match":
		return r.runMatchStep(ctx, state, step)
	case "start":
		return r.runStartStep(ctx, state, step)
	case "roll":
		return r.runRollStep(step)
	case "set_board":
		return r.runSetBoardStep(ctx, state, step)
	case "set_score":
		return r.runSetScoreStep(ctx, state, step)
	case "move":
		return r.runMoveStep(ctx, state, step)
	case "double", "redouble", "take", "pass", "beaver", "raccoon":
		return r.runCubeStep(ctx, state, step)
	case "resign":
		return r.runResignStep(ctx, state, step)
	case "flag":
		return r.runFlagStep(ctx, state, step)
	case "next_game":
		return r.runNextGameStep(ctx, state, step)
	case "expect_turn":
		return r.runExpectTurnStep(ctx, state, step)
	case "expect_cube":
		return r.runExpectCubeStep(ctx, state, step)
	case "expect_score":
		return r.runExpectScoreStep(ctx, state, step)
	case "expect_status":
		return r.runExpectStatusStep(ctx, state, step)
	case "expect_pips":
		return r.runExpectPipsStep(ctx, state, step)
	case "expect_moves":
		return r.runExpectMovesStep(ctx, state, step)
	default:
		return fmt.Errorf("unknown step kind %q", step.Kind)
	}
}

func (r *Runner) ensureGame(ctx context.Context, state *scenarioState) error {
	if state.gameID != "" {
		return nil
	}
	game, err := r.registry.Create(ctx, 0, match.DefaultRules())
	if err != nil {
		return err
	}
	state.gameID = game.ID
	return nil
}

func (r *Runner) current(ctx context.Context, state *scenarioState) (snapshot.Snapshot, error) {
	if err := r.ensureGame(ctx, state); err != nil {
		return snapshot.Snapshot{}, err
	}
	game, err := r.registry.Get(ctx, state.gameID)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	return game.Snapshot, nil
}

func (r *Runner) runMatchStep(ctx context.Context, state *scenarioState, step Step) error {
	length := optionalInt(step.Args, "length", 0)
	if length < 0 {
		return r.failf("match length must not be negative")
	}
	rules := match.Rules{
		Crawford: optionalBool(step.Args, "crawford", true),
		Jacoby:   optionalBool(step.Args, "jacoby", false),
		Beaver:   optionalBool(step.Args, "beaver", false),
		Raccoon:  optionalBool(step.Args, "raccoon", false),
	}
	game, err := r.registry.Create(ctx, length, rules)
	if err != nil {
		return err
	}
	state.gameID = game.ID
	return nil
}

func (r *Runner) runStartStep(ctx context.Context, state *scenarioState, step Step) error {
	if err := r.ensureGame(ctx, state); err != nil {
		return err
	}
	playerName := optionalString(step.Args, "player", "")
	if playerName == "" {
		result, err := r.registry.Start(ctx, state.gameID)
		if err != nil {
			return err
		}
		return r.checkOutcome(state, step, result)
	}
	player, err := r.parsePlayer(playerName)
	if err != nil {
		return err
	}
	roll, ok := readDice(step.Args, "dice")
	if !ok {
		return r.failf("start with a player needs dice = {a, b}")
	}
	result, err := r.registry.StartWith(ctx, state.gameID, player, roll[0], roll[1])
	if err != nil {
		return err
	}
	return r.checkOutcome(state, step, result)
}

func (r *Runner) runRollStep(step Step) error {
	roll, ok := readDice(step.Args, "dice")
	if !ok {
		return r.failf("roll needs two dice")
	}
	if err := r.script.Push(roll[0], roll[1]); err != nil {
		return r.failf("roll %v: %v", roll, err)
	}
	return nil
}

func (r *Runner) runSetBoardStep(ctx context.Context, state *scenarioState, step Step) error {
	s, err := r.current(ctx, state)
	if err != nil {
		return err
	}
	if values, ok := step.Args["points"]; ok {
		list, ok := values.([]any)
		if !ok || len(list) != board.PointCount {
			return r.failf("points must list %d values", board.PointCount)
		}
		for i, value := range list {
			count, ok := value.(int)
			if !ok {
				return r.failf("point %d is not an integer", i)
			}
			s.Board.Points[i] = count
		}
	}
	s.Board.WhiteBar = optionalInt(step.Args, "white_bar", s.Board.WhiteBar)
	s.Board.BlackBar = optionalInt(step.Args, "black_bar", s.Board.BlackBar)
	s.Board.WhiteOff = optionalInt(step.Args, "white_off", s.Board.WhiteOff)
	s.Board.BlackOff = optionalInt(step.Args, "black_off", s.Board.BlackOff)

	if name := optionalString(step.Args, "player", ""); name != "" {
		player, err := r.parsePlayer(name)
		if err != nil {
			return err
		}
		s.CurrentPlayer = player
		s.Status = snapshot.StatusPlaying
	}
	if roll, ok := readDice(step.Args, "dice"); ok {
		s.Dice = board.NewDice(roll[0], roll[1])
	}
	if _, err := r.registry.Restore(ctx, state.gameID, s); err != nil {
		return r.failf("set_board: %s", r.errors.FormatError(err))
	}
	return nil
}

func (r *Runner) runSetScoreStep(ctx context.Context, state *scenarioState, step Step) error {
	s, err := r.current(ctx, state)
	if err != nil {
		return err
	}
	s.Scores.White = optionalInt(step.Args, "white", s.Scores.White)
	s.Scores.Black = optionalInt(step.Args, "black", s.Scores.Black)
	s.Match.CrawfordUsed = optionalBool(step.Args, "crawford_used", s.Match.CrawfordUsed)
	s.Meta.Crawford = match.EvaluateCrawford(s.Match.Rules, s.Match.Length, s.Scores, s.Match)
	_, err = r.registry.Restore(ctx, state.gameID, s)
	return err
}

func (r *Runner) runMoveStep(ctx context.Context, state *scenarioState, step Step) error {
	s, err := r.current(ctx, state)
	if err != nil {
		return err
	}
	player := s.CurrentPlayer
	if name := optionalString(step.Args, "player", ""); name != "" {
		if player, err = r.parsePlayer(name); err != nil {
			return err
		}
	}
	m, err := r.buildMove(step.Args, player)
	if err != nil {
		return err
	}
	result, err := r.registry.SubmitMove(ctx, state.gameID, m, player)
	if err != nil {
		return err
	}
	return r.checkOutcome(state, step, result)
}

// buildMove reads from/to, where from may be "bar" and to may be "off".
// A missing die is inferred from the distance.
func (r *Runner) buildMove(args map[string]any, player board.Color) (move.Move, error) {
	fromBar := optionalString(args, "from", "") == "bar"
	toOff := optionalString(args, "to", "") == "off"
	from, hasFrom := readInt(args, "from")
	to, hasTo := readInt(args, "to")
	die, hasDie := readInt(args, "die")

	switch {
	case fromBar:
		if !hasTo {
			return move.Move{}, r.failf("bar entry needs to")
		}
		if !hasDie {
			die = (to - board.EntryPoint(player, 0)) * player.Direction()
		}
		return move.Enter(player, to, die), nil
	case toOff:
		if !hasFrom {
			return move.Move{}, r.failf("bear-off needs from")
		}
		if !hasDie {
			die = board.BearOffDistance(player, from)
		}
		return move.BearOff(player, from, die), nil
	default:
		if !hasFrom || !hasTo {
			return move.Move{}, r.failf("move needs from and to")
		}
		if !hasDie {
			die = (to - from) * player.Direction()
		}
		return move.Normal(player, from, to, die), nil
	}
}

func (r *Runner) runCubeStep(ctx context.Context, state *scenarioState, step Step) error {
	s, err := r.current(ctx, state)
	if err != nil {
		return err
	}
	actor := s.CurrentPlayer
	if s.Cube.Pending != nil {
		actor = s.Cube.Pending.Recipient()
	}
	if name := optionalString(step.Args, "player", ""); name != "" {
		if actor, err = r.parsePlayer(name); err != nil {
			return err
		}
	}
	result, err := r.registry.SubmitCubeAction(ctx, state.gameID, cube.ParseAction(step.Kind), actor)
	if err != nil {
		return err
	}
	return r.checkOutcome(state, step, result)
}

func (r *Runner) runResignStep(ctx context.Context, state *scenarioState, step Step) error {
	s, err := r.current(ctx, state)
	if err != nil {
		return err
	}
	actor := s.CurrentPlayer
	if name := optionalString(step.Args, "player", ""); name != "" {
		if actor, err = r.parsePlayer(name); err != nil {
			return err
		}
	}
	kind := match.ResultKind(strings.ToUpper(optionalString(step.Args, "result", string(match.ResultSingle))))
	result, err := r.registry.Resign(ctx, state.gameID, actor, kind)
	if err != nil {
		return err
	}
	return r.checkOutcome(state, step, result)
}

func (r *Runner) runFlagStep(ctx context.Context, state *scenarioState, step Step) error {
	if err := r.ensureGame(ctx, state); err != nil {
		return err
	}
	winner, err := r.parsePlayer(requiredString(step.Args, "winner"))
	if err != nil {
		return err
	}
	reason := optionalString(step.Args, "reason", "timeout")
	result, err := r.registry.ForceFinish(ctx, state.gameID, winner, reason)
	if err != nil {
		return err
	}
	return r.checkOutcome(state, step, result)
}

func (r *Runner) runNextGameStep(ctx context.Context, state *scenarioState, step Step) error {
	if err := r.ensureGame(ctx, state); err != nil {
		return err
	}
	result, err := r.registry.NextGame(ctx, state.gameID)
	if err != nil {
		return err
	}
	return r.checkOutcome(state, step, result)
}

// checkOutcome compares a result with the step's optional expect code.
func (r *Runner) checkOutcome(state *scenarioState, step Step, result turn.Result) error {
	if result.Stalemate {
		r.logger.Printf("step %d: stalemate after re-rolling", state.stepNumber)
	}
	expected := optionalString(step.Args, "expect", "")
	if expected == "" {
		if result.Legal {
			return nil
		}
		code, message := errori18n.Describe(result.Rejection.Err(), r.locale)
		return r.assertf("%s", r.printer.Sprintf("core.scenario.rejected", state.stepNumber, code, message))
	}
	if _, ok := catalog.Default().Message(catalog.BaseLocale, expected); !ok {
		return r.failf("%s expects unknown rejection code %s", step.Kind, expected)
	}
	if result.Legal {
		return r.assertf("%s succeeded, want rejection %s", step.Kind, expected)
	}
	if string(result.Rejection.Code) != expected {
		return r.assertf("%s rejected with %s, want %s", step.Kind, result.Rejection.Code, expected)
	}
	r.logf("%s rejected as expected: %s", step.Kind, r.errors.FormatError(result.Rejection.Err()))
	return nil
}

func (r *Runner) parsePlayer(name string) (board.Color, error) {
	player := board.ParseColor(strings.ToLower(strings.TrimSpace(name)))
	if player == board.NoColor {
		return board.NoColor, r.failf("unknown player %q", name)
	}
	return player, nil
}
