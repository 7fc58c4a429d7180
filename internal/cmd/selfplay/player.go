package selfplay

import (
	"context"
	"fmt"
	"log"
	"math/rand"

	"golang.org/x/text/message"

	"github.com/louisbranch/backgammon/internal/services/game/domain/board"
	"github.com/louisbranch/backgammon/internal/services/game/domain/cube"
	"github.com/louisbranch/backgammon/internal/services/game/domain/match"
	"github.com/louisbranch/backgammon/internal/services/game/domain/move"
	"github.com/louisbranch/backgammon/internal/services/game/domain/snapshot"
	"github.com/louisbranch/backgammon/internal/services/game/domain/turn"
	"github.com/louisbranch/backgammon/internal/services/game/registry"
)

// Summary totals a self-play run.
type Summary struct {
	Games       int
	WhiteWins   int
	BlackWins   int
	WhitePoints int
	BlackPoints int
	Stalemates  int
	Abandoned   int
	Results     map[match.ResultKind]int
}

// Outcome describes one finished game.
type Outcome struct {
	Winner    board.Color
	Points    int
	Result    match.ResultKind
	Reason    string
	Stalemate bool
}

func (s *Summary) record(o Outcome) {
	s.Games++
	s.Results[o.Result]++
	if o.Stalemate {
		s.Stalemates++
	}
	if o.Reason == "abandoned" {
		s.Abandoned++
	}
	switch o.Winner {
	case board.White:
		s.WhiteWins++
		s.WhitePoints += o.Points
	case board.Black:
		s.BlackWins++
		s.BlackPoints += o.Points
	}
}

type player struct {
	registry   *registry.Registry
	rng        *rand.Rand
	doubleRate float64
	maxPlies   int
	verbose    bool
	logger     *log.Logger
	printer    *message.Printer
}

func newPlayer(reg *registry.Registry, seed int64, cfg Config, logger *log.Logger, printer *message.Printer) *player {
	maxPlies := cfg.MaxPlies
	if maxPlies <= 0 {
		maxPlies = 5000
	}
	return &player{
		registry:   reg,
		rng:        rand.New(rand.NewSource(seed)),
		doubleRate: cfg.DoubleRate,
		maxPlies:   maxPlies,
		verbose:    cfg.Verbose,
		logger:     logger,
		printer:    printer,
	}
}

func (p *player) run(ctx context.Context, games, length int, rules match.Rules) (Summary, error) {
	summary := Summary{Results: make(map[match.ResultKind]int)}
	gameID := ""
	for number := 1; number <= games; number++ {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		var err error
		gameID, err = p.prepare(ctx, gameID, length, rules)
		if err != nil {
			return summary, fmt.Errorf("game %d: %w", number, err)
		}
		outcome, err := p.playGame(ctx, gameID)
		if err != nil {
			return summary, fmt.Errorf("game %d: %w", number, err)
		}
		summary.record(outcome)
		p.logger.Print(p.printer.Sprintf("core.selfplay.game", number, outcome.Winner, outcome.Points, outcome.Result))
	}
	p.logger.Print(p.printer.Sprintf("core.selfplay.summary", summary.Games, summary.WhiteWins, summary.BlackWins, summary.Stalemates))
	return summary, nil
}

// prepare returns a game waiting for its opening roll, continuing the
// current match when it is still in progress.
func (p *player) prepare(ctx context.Context, gameID string, length int, rules match.Rules) (string, error) {
	if gameID != "" {
		game, err := p.registry.Get(ctx, gameID)
		if err != nil {
			return "", err
		}
		if game.Snapshot.Match.State != match.StateFinished {
			result, err := p.registry.NextGame(ctx, gameID)
			if err != nil {
				return "", err
			}
			if !result.Legal {
				return "", result.Rejection.Err()
			}
			return gameID, nil
		}
		if p.verbose {
			p.logger.Printf("match %s won by %s", gameID, game.Snapshot.Match.Winner)
		}
	}
	game, err := p.registry.Create(ctx, length, rules)
	if err != nil {
		return "", err
	}
	return game.ID, nil
}

func (p *player) playGame(ctx context.Context, gameID string) (Outcome, error) {
	result, err := p.registry.Start(ctx, gameID)
	if err != nil {
		return Outcome{}, err
	}
	if !result.Legal {
		return Outcome{}, result.Rejection.Err()
	}

	for ply := 0; ply < p.maxPlies; ply++ {
		s := result.Snapshot
		if s.Status == snapshot.StatusFinished {
			return outcomeOf(s), nil
		}
		if result.Stalemate {
			return p.forceFinish(ctx, gameID, s, "stalemate")
		}
		result, err = p.act(ctx, gameID, s)
		if err != nil {
			return Outcome{}, err
		}
		if !result.Legal {
			return Outcome{}, fmt.Errorf("ply %d rejected: %w", ply, result.Rejection.Err())
		}
	}
	return p.forceFinish(ctx, gameID, result.Snapshot, "abandoned")
}

// forceFinish awards the game to the side ahead in the race.
func (p *player) forceFinish(ctx context.Context, gameID string, s snapshot.Snapshot, reason string) (Outcome, error) {
	winner := board.White
	if pips := s.Pips(); pips.Black < pips.White {
		winner = board.Black
	}
	result, err := p.registry.ForceFinish(ctx, gameID, winner, reason)
	if err != nil {
		return Outcome{}, err
	}
	if !result.Legal {
		return Outcome{}, result.Rejection.Err()
	}
	if p.verbose {
		p.logger.Printf("game %s finished early: %s", gameID, reason)
	}
	outcome := outcomeOf(result.Snapshot)
	outcome.Stalemate = reason == "stalemate"
	return outcome, nil
}

func outcomeOf(s snapshot.Snapshot) Outcome {
	return Outcome{Winner: s.Winner, Points: s.Points, Result: s.Result, Reason: s.FinishReason}
}

func (p *player) act(ctx context.Context, gameID string, s snapshot.Snapshot) (turn.Result, error) {
	if pending := s.Cube.Pending; pending != nil {
		return p.registry.SubmitCubeAction(ctx, gameID, p.respond(s, *pending), pending.Recipient())
	}
	if action, ok := p.wantsDouble(s); ok {
		return p.registry.SubmitCubeAction(ctx, gameID, action, s.CurrentPlayer)
	}

	moves := move.Available(s.CurrentPlayer, s.Board, s.Dice)
	if len(moves) == 0 {
		return turn.Result{}, fmt.Errorf("%s has no legal move with %v", s.CurrentPlayer, s.Dice.Remaining)
	}
	return p.registry.SubmitMove(ctx, gameID, moves[p.rng.Intn(len(moves))], s.CurrentPlayer)
}

func (p *player) wantsDouble(s snapshot.Snapshot) (cube.Action, bool) {
	if !s.Dice.Untouched() || p.rng.Float64() >= p.doubleRate {
		return "", false
	}
	action := cube.ActionDouble
	if !s.Cube.Cube.Centered() {
		action = cube.ActionRedouble
	}
	verdict := cube.CanDouble(s.Cube, action, s.CurrentPlayer, cube.Context{Record: s.Match, Scores: s.Scores})
	return action, verdict.Valid
}

func (p *player) respond(s snapshot.Snapshot, offer cube.Offer) cube.Action {
	rules := s.Match.Rules
	roll := p.rng.Float64()
	switch {
	case rules.Beaver && (offer.Kind == cube.ActionDouble || offer.Kind == cube.ActionRedouble) && roll < 0.1:
		return cube.ActionBeaver
	case rules.Raccoon && rules.Beaver && offer.Kind == cube.ActionBeaver &&
		offer.Recipient() == offer.OriginalOfferer && roll < 0.1:
		return cube.ActionRaccoon
	case roll < 0.7:
		return cube.ActionTake
	default:
		return cube.ActionPass
	}
}
