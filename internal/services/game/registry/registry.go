// Package registry owns the live games of a process.
//
// Snapshots are stored serialized and restored on every call, so every
// mutation goes through the same restore path a persisted game would. Each
// game has its own lock: at most one mutating call per game id runs at a
// time, while different games proceed in parallel.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/louisbranch/backgammon/internal/platform/errors"
	"github.com/louisbranch/backgammon/internal/platform/id"
	"github.com/louisbranch/backgammon/internal/platform/otel"
	"github.com/louisbranch/backgammon/internal/services/game/domain/board"
	"github.com/louisbranch/backgammon/internal/services/game/domain/cube"
	"github.com/louisbranch/backgammon/internal/services/game/domain/match"
	"github.com/louisbranch/backgammon/internal/services/game/domain/move"
	"github.com/louisbranch/backgammon/internal/services/game/domain/snapshot"
	"github.com/louisbranch/backgammon/internal/services/game/domain/turn"
)

const tracerScope = "github.com/louisbranch/backgammon/internal/services/game/registry"

// Game is a stored game as seen by callers.
type Game struct {
	ID       string
	Hash     string
	Snapshot snapshot.Snapshot
}

type entry struct {
	// turn serializes mutating calls for one game.
	turn sync.Mutex
	blob []byte
	hash string
}

// Registry keeps games in memory keyed by id.
type Registry struct {
	mu     sync.Mutex
	games  map[string]*entry
	coord  *turn.Coordinator
	tracer trace.Tracer
	logger *log.Logger
	newID  func() (string, error)
}

// Option configures a Registry.
type Option func(*Registry)

// WithTracer overrides the tracer; the default comes from the global provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(r *Registry) {
		if tracer != nil {
			r.tracer = tracer
		}
	}
}

// WithLogger sets the logger used for fallbacks and stalemates.
func WithLogger(logger *log.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithIDGenerator replaces the random game ids.
func WithIDGenerator(newID func() string) Option {
	return func(r *Registry) {
		if newID != nil {
			r.newID = func() (string, error) { return newID(), nil }
		}
	}
}

// New creates a registry driving games through coord.
func New(coord *turn.Coordinator, opts ...Option) *Registry {
	r := &Registry{
		games:  make(map[string]*entry),
		coord:  coord,
		tracer: otel.Tracer(tracerScope),
		logger: log.Default(),
		newID:  id.NewID,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create stores a new match waiting for its opening roll.
func (r *Registry) Create(ctx context.Context, length int, rules match.Rules) (Game, error) {
	if err := ctx.Err(); err != nil {
		return Game{}, err
	}
	_, span := r.tracer.Start(ctx, "registry.Create", trace.WithAttributes(
		attribute.Int("match.length", length),
		attribute.Bool("match.crawford", rules.Crawford),
	))
	defer span.End()

	s := snapshot.New(length, rules)
	blob, err := snapshot.Serialize(s)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "serialize")
		return Game{}, apperrors.Wrap(apperrors.CodeUnknown, "serialize new game", err)
	}

	gameID, err := r.newID()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "id")
		return Game{}, apperrors.Wrap(apperrors.CodeUnknown, "generate game id", err)
	}
	e := &entry{blob: blob, hash: snapshot.Hash(blob)}
	r.mu.Lock()
	r.games[gameID] = e
	r.mu.Unlock()

	span.SetAttributes(attribute.String("game.id", gameID))
	return Game{ID: gameID, Hash: e.hash, Snapshot: s}, nil
}

// Get restores the current snapshot of a game.
func (r *Registry) Get(ctx context.Context, gameID string) (Game, error) {
	if err := ctx.Err(); err != nil {
		return Game{}, err
	}
	key, e, err := r.lookup(gameID)
	if err != nil {
		return Game{}, err
	}
	e.turn.Lock()
	defer e.turn.Unlock()
	s := r.restore(key, e)
	return Game{ID: key, Hash: e.hash, Snapshot: s}, nil
}

// Restore replaces a game's snapshot, for setup and recovery tools. A board
// that does not hold fifteen checkers per side is refused.
func (r *Registry) Restore(ctx context.Context, gameID string, s snapshot.Snapshot) (Game, error) {
	return r.replace(ctx, gameID, func(snapshot.Snapshot) snapshot.Snapshot { return s })
}

// SetTimers records the external clock state on the game.
func (r *Registry) SetTimers(ctx context.Context, gameID string, timers snapshot.Timers) (Game, error) {
	timers = timers.UTC()
	return r.replace(ctx, gameID, func(s snapshot.Snapshot) snapshot.Snapshot {
		s.Meta.Timers = &timers
		return s
	})
}

func (r *Registry) replace(ctx context.Context, gameID string, edit func(snapshot.Snapshot) snapshot.Snapshot) (Game, error) {
	if err := ctx.Err(); err != nil {
		return Game{}, err
	}
	key, e, err := r.lookup(gameID)
	if err != nil {
		return Game{}, err
	}
	e.turn.Lock()
	defer e.turn.Unlock()

	s := edit(r.restore(key, e))
	if err := s.Board.CheckIntegrity(); err != nil {
		return Game{}, err
	}
	if err := e.store(s); err != nil {
		return Game{}, err
	}
	return Game{ID: key, Hash: e.hash, Snapshot: s}, nil
}

// Start makes the opening roll.
func (r *Registry) Start(ctx context.Context, gameID string) (turn.Result, error) {
	return r.mutate(ctx, "Start", gameID, board.NoColor, r.coord.Start)
}

// StartWith begins play with a chosen first player and roll.
func (r *Registry) StartWith(ctx context.Context, gameID string, player board.Color, first, second int) (turn.Result, error) {
	return r.mutate(ctx, "StartWith", gameID, player, func(s snapshot.Snapshot) turn.Result {
		return r.coord.StartWith(s, player, first, second)
	})
}

// SubmitMove applies one checker step.
func (r *Registry) SubmitMove(ctx context.Context, gameID string, m move.Move, actor board.Color) (turn.Result, error) {
	return r.mutate(ctx, "SubmitMove", gameID, actor, func(s snapshot.Snapshot) turn.Result {
		return r.coord.SubmitMove(s, m, actor)
	})
}

// SubmitCubeAction applies a cube action.
func (r *Registry) SubmitCubeAction(ctx context.Context, gameID string, action cube.Action, actor board.Color) (turn.Result, error) {
	return r.mutate(ctx, "SubmitCubeAction", gameID, actor, func(s snapshot.Snapshot) turn.Result {
		return r.coord.SubmitCubeAction(s, action, actor)
	})
}

// Resign ends the game in the opponent's favor.
func (r *Registry) Resign(ctx context.Context, gameID string, actor board.Color, kind match.ResultKind) (turn.Result, error) {
	return r.mutate(ctx, "Resign", gameID, actor, func(s snapshot.Snapshot) turn.Result {
		return r.coord.Resign(s, actor, kind)
	})
}

// ForceFinish ends the game on behalf of the external timer.
func (r *Registry) ForceFinish(ctx context.Context, gameID string, winner board.Color, reason string) (turn.Result, error) {
	return r.mutate(ctx, "ForceFinish", gameID, winner, func(s snapshot.Snapshot) turn.Result {
		return r.coord.ForceFinish(s, winner, reason)
	})
}

// NextGame moves a finished game on to the next game of the match.
func (r *Registry) NextGame(ctx context.Context, gameID string) (turn.Result, error) {
	return r.mutate(ctx, "NextGame", gameID, board.NoColor, r.coord.NextGame)
}

func (r *Registry) mutate(ctx context.Context, op, gameID string, actor board.Color, apply func(snapshot.Snapshot) turn.Result) (turn.Result, error) {
	if err := ctx.Err(); err != nil {
		return turn.Result{}, err
	}
	_, span := r.tracer.Start(ctx, "registry."+op, trace.WithAttributes(
		attribute.String("game.id", strings.TrimSpace(gameID)),
		attribute.String("game.actor", string(actor)),
	))
	defer span.End()

	key, e, err := r.lookup(gameID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(apperrors.CodeOf(err)))
		return turn.Result{}, err
	}

	e.turn.Lock()
	defer e.turn.Unlock()

	result := apply(r.restore(key, e))
	span.SetAttributes(attribute.Bool("turn.legal", result.Legal))
	if !result.Legal {
		span.SetAttributes(attribute.String("turn.rejection", string(result.Rejection.Code)))
		return result, nil
	}
	if err := e.store(result.Snapshot); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "serialize")
		return turn.Result{}, err
	}
	if result.Stalemate {
		span.SetAttributes(attribute.Bool("turn.stalemate", true))
		r.logger.Printf("[REGISTRY] game %s: stalemate, no side could move after re-rolling", key)
	}
	if result.Finished {
		span.SetAttributes(
			attribute.String("game.winner", string(result.Winner)),
			attribute.Int("game.points", result.Points),
		)
	}
	return result, nil
}

func (r *Registry) lookup(gameID string) (string, *entry, error) {
	if r == nil {
		return "", nil, errors.New("registry is required")
	}
	key := strings.TrimSpace(gameID)
	if key == "" {
		return "", nil, apperrors.New(apperrors.CodeGameIDRequired, "game id is required")
	}
	r.mu.Lock()
	e, ok := r.games[key]
	r.mu.Unlock()
	if !ok {
		return "", nil, apperrors.WithMetadata(apperrors.CodeGameNotFound, "game not found", map[string]string{"GameID": key})
	}
	return key, e, nil
}

// restore decodes the stored blob. A repaired snapshot replaces the blob so
// the repair is logged and rolled once. Callers hold the turn lock.
func (r *Registry) restore(key string, e *entry) snapshot.Snapshot {
	s, fallback := snapshot.Deserialize(e.blob, r.coord.Roller())
	if fallback == snapshot.FallbackNone {
		return s
	}
	r.logger.Printf("[REGISTRY] game %s restored with fallback %s", key, fallback)
	if err := e.store(s); err != nil {
		r.logger.Printf("[REGISTRY] game %s: repaired snapshot not stored: %v", key, err)
	}
	return s
}

// store must be called with the turn lock held.
func (e *entry) store(s snapshot.Snapshot) error {
	blob, err := snapshot.Serialize(s)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeUnknown, fmt.Sprintf("serialize game at %s", s.Status), err)
	}
	e.blob = blob
	e.hash = snapshot.Hash(blob)
	return nil
}
