// Package cube resolves doubling-cube negotiation.
//
// Decide is a pure transition: it never reads the clock itself, never logs,
// and reports every illegal action as a command.Rejection.
package cube

import (
	"github.com/louisbranch/backgammon/internal/services/game/domain/board"
)

// Action is a cube action requested by a player.
type Action string

const (
	ActionDouble   Action = "double"
	ActionRedouble Action = "redouble"
	ActionTake     Action = "take"
	ActionPass     Action = "pass"
	ActionBeaver   Action = "beaver"
	ActionRaccoon  Action = "raccoon"
)

// ParseAction maps a string to an Action. Unknown values come back as-is
// and are rejected by Decide.
func ParseAction(value string) Action {
	return Action(value)
}

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	switch a {
	case ActionDouble, ActionRedouble, ActionTake, ActionPass, ActionBeaver, ActionRaccoon:
		return true
	default:
		return false
	}
}

// offers reports whether a leaves an offer pending.
func (a Action) offers() bool {
	switch a {
	case ActionDouble, ActionRedouble, ActionBeaver, ActionRaccoon:
		return true
	default:
		return false
	}
}

// Status is the cube sub-state layered on a playing game.
type Status string

const (
	StatusCentered        Status = "CENTERED"
	StatusOwned           Status = "OWNED"
	StatusPendingResponse Status = "PENDING_RESPONSE"
)

// Cube is the doubling cube. A cube without owner is centered.
type Cube struct {
	Level int         `json:"level"`
	Owner board.Color `json:"owner,omitempty"`
}

// Centered reports whether nobody owns the cube.
func (c Cube) Centered() bool {
	return c.Owner == board.NoColor
}

// Offer is a double waiting for an answer.
type Offer struct {
	OfferedBy board.Color `json:"offeredBy"`
	Kind      Action      `json:"kind"`
	// OriginalOfferer is the side that opened the negotiation with a
	// double or redouble; beavers and raccoons keep it.
	OriginalOfferer board.Color `json:"originalOfferer"`
}

// Recipient is the side expected to answer the offer.
func (o Offer) Recipient() board.Color {
	return o.OfferedBy.Opponent()
}

// State is the cube together with any pending offer.
type State struct {
	Cube    Cube   `json:"cube"`
	Pending *Offer `json:"pending,omitempty"`
}

// NewState returns a centered cube at level 1.
func NewState() State {
	return State{Cube: Cube{Level: 1}}
}

// Status classifies the state.
func (s State) Status() Status {
	switch {
	case s.Pending != nil:
		return StatusPendingResponse
	case s.Cube.Centered():
		return StatusCentered
	default:
		return StatusOwned
	}
}

// Turned reports whether the cube has ever been doubled this game.
func (s State) Turned() bool {
	return s.Cube.Level > 1
}

// Consistent reports whether the level is a power of two and the pending
// offer, if any, names valid sides.
func (s State) Consistent() bool {
	level := s.Cube.Level
	if level < 1 || level&(level-1) != 0 {
		return false
	}
	if s.Cube.Owner != board.NoColor && !s.Cube.Owner.Valid() {
		return false
	}
	if s.Pending == nil {
		return true
	}
	return s.Pending.OfferedBy.Valid() && s.Pending.OriginalOfferer.Valid() && s.Pending.Kind.offers()
}
