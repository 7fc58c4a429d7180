package cube

import (
	"strconv"
	"time"

	apperrors "github.com/louisbranch/backgammon/internal/platform/errors"
	"github.com/louisbranch/backgammon/internal/services/game/domain/board"
	"github.com/louisbranch/backgammon/internal/services/game/domain/command"
	"github.com/louisbranch/backgammon/internal/services/game/domain/match"
)

// Context is the match information a cube decision reads.
type Context struct {
	Record match.Record
	Scores match.Scores
}

// Decision is the outcome of one cube action.
type Decision struct {
	State State `json:"state"`
	// Entry is the history entry appended to Record.
	Entry  *match.CubeHistoryEntry `json:"entry,omitempty"`
	Record match.Record            `json:"record"`
	// MatchUpdate is set only when a pass ends the game.
	MatchUpdate *match.Update      `json:"matchUpdate,omitempty"`
	Rejection   *command.Rejection `json:"rejection,omitempty"`
}

// Accepted reports whether the action was applied.
func (d Decision) Accepted() bool {
	return d.Rejection == nil
}

// Decide applies action by actor to state. now stamps the history entry.
func Decide(state State, action Action, actor board.Color, ctx Context, now func() time.Time) Decision {
	if now == nil {
		now = time.Now
	}
	if !actor.Valid() {
		return reject(state, ctx, apperrors.CodeCubeInvalidActor, "unknown cube actor", map[string]string{"Player": string(actor)})
	}

	var (
		next      State
		note      string
		rejection *command.Rejection
	)
	switch action {
	case ActionDouble, ActionRedouble:
		next, rejection = offerDouble(state, action, actor, ctx)
		note = "double offered"
		if action == ActionRedouble {
			note = "redouble offered"
		}
	case ActionTake:
		next, rejection = take(state, actor)
		note = "double accepted"
	case ActionPass:
		rejection = checkResponder(state, actor)
		next = State{Cube: state.Cube}
		note = "double refused"
	case ActionBeaver:
		next, rejection = beaver(state, actor, ctx.Record.Rules)
		note = "beaver"
	case ActionRaccoon:
		next, rejection = raccoon(state, actor, ctx.Record.Rules)
		note = "raccoon"
	default:
		rejection = command.Reject(apperrors.CodeCubeUnknownAction, "unknown cube action", map[string]string{"Action": string(action)})
	}
	if rejection != nil {
		return Decision{State: state, Record: ctx.Record, Rejection: rejection}
	}

	entry := match.CubeHistoryEntry{
		Actor:     actor,
		Action:    string(action),
		Level:     next.Cube.Level,
		Timestamp: now().UTC(),
		Note:      note,
	}
	decision := Decision{State: next, Entry: &entry, Record: ctx.Record.AppendCube(entry)}

	if action == ActionPass {
		update := match.ApplyPointResult(decision.Record, ctx.Scores, match.PointResult{
			Winner: state.Pending.OfferedBy,
			Points: state.Cube.Level,
		})
		decision.Record = update.Record
		decision.MatchUpdate = &update
	}
	return decision
}

func reject(state State, ctx Context, code apperrors.Code, message string, metadata map[string]string) Decision {
	return Decision{State: state, Record: ctx.Record, Rejection: command.Reject(code, message, metadata)}
}

// CanDouble reports whether actor may offer action now, ignoring turn timing.
func CanDouble(state State, action Action, actor board.Color, ctx Context) command.Verdict {
	if _, rejection := offerDouble(state, action, actor, ctx); rejection != nil {
		return command.Deny(rejection)
	}
	return command.Accept()
}

func offerDouble(state State, action Action, actor board.Color, ctx Context) (State, *command.Rejection) {
	if state.Pending != nil {
		return state, command.Reject(apperrors.CodeCubeOfferPending, "an offer is already pending", nil)
	}
	if !state.Cube.Centered() && state.Cube.Owner != actor {
		return state, command.Reject(apperrors.CodeCubeNotOwner, "cube is owned by the opponent", map[string]string{"Player": string(actor)})
	}
	if action == ActionRedouble && state.Cube.Centered() {
		return state, command.Reject(apperrors.CodeCubeRedoubleCentered, "cannot redouble a centered cube", nil)
	}

	record := ctx.Record
	crawford := match.EvaluateCrawford(record.Rules, record.Length, ctx.Scores, record)
	if crawford.Active {
		return state, command.Reject(apperrors.CodeCubeCrawford, "doubling is not allowed in the Crawford game", nil)
	}

	level := state.Cube.Level * 2
	if record.Length > 0 && ctx.Scores.Of(actor.Opponent())+level >= record.Length {
		return state, command.Reject(apperrors.CodeCubeDead, "cube is dead", map[string]string{
			"Level":  strconv.Itoa(level),
			"Length": strconv.Itoa(record.Length),
		})
	}

	return State{
		Cube:    Cube{Level: level, Owner: actor.Opponent()},
		Pending: &Offer{OfferedBy: actor, Kind: action, OriginalOfferer: actor},
	}, nil
}

func checkResponder(state State, actor board.Color) *command.Rejection {
	if state.Pending == nil {
		return command.Reject(apperrors.CodeCubeNoPendingOffer, "no offer is pending", nil)
	}
	if state.Pending.OfferedBy == actor {
		return command.Reject(apperrors.CodeCubeOwnOffer, "cannot answer your own offer", nil)
	}
	return nil
}

func take(state State, actor board.Color) (State, *command.Rejection) {
	if rejection := checkResponder(state, actor); rejection != nil {
		return state, rejection
	}
	return State{Cube: Cube{Level: state.Cube.Level, Owner: actor}}, nil
}

func beaver(state State, actor board.Color, rules match.Rules) (State, *command.Rejection) {
	if !rules.Beaver {
		return state, command.Reject(apperrors.CodeCubeBeaverDisabled, "beavers are not enabled", nil)
	}
	if rejection := checkResponder(state, actor); rejection != nil {
		return state, rejection
	}
	if kind := state.Pending.Kind; kind != ActionDouble && kind != ActionRedouble {
		return state, command.Reject(apperrors.CodeCubeBeaverNotAfterDouble, "a beaver must answer a double", map[string]string{"Action": string(kind)})
	}
	return State{
		Cube:    Cube{Level: state.Cube.Level * 2, Owner: actor},
		Pending: &Offer{OfferedBy: actor, Kind: ActionBeaver, OriginalOfferer: state.Pending.OriginalOfferer},
	}, nil
}

func raccoon(state State, actor board.Color, rules match.Rules) (State, *command.Rejection) {
	if !rules.Raccoon || !rules.Beaver {
		return state, command.Reject(apperrors.CodeCubeRaccoonDisabled, "raccoons are not enabled", nil)
	}
	if rejection := checkResponder(state, actor); rejection != nil {
		return state, rejection
	}
	if state.Pending.Kind != ActionBeaver || state.Cube.Owner != state.Pending.OfferedBy {
		return state, command.Reject(apperrors.CodeCubeRaccoonNotAfterBeaver, "a raccoon must answer a beaver", nil)
	}
	if actor != state.Pending.OriginalOfferer {
		return state, command.Reject(apperrors.CodeCubeRaccoonNotOfferer, "only the original doubler may raccoon", nil)
	}
	return State{
		Cube:    Cube{Level: state.Cube.Level * 2, Owner: actor},
		Pending: &Offer{OfferedBy: actor, Kind: ActionRaccoon, OriginalOfferer: state.Pending.OriginalOfferer},
	}, nil
}
