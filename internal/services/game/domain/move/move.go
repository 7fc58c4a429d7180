// Package move is the backgammon move engine: legality, application and
// legal-move enumeration.
//
// Every function is pure. Expected rule violations come back as a
// command.Verdict and never as an error or panic.
package move

import (
	"fmt"

	"github.com/louisbranch/backgammon/internal/services/game/domain/board"
)

// Kind tags the move category.
type Kind string

const (
	// KindNormal moves a checker from one point to another.
	KindNormal Kind = "normal"
	// KindBarEntry enters a checker from the bar.
	KindBarEntry Kind = "bar_entry"
	// KindBearOff removes a checker from the home board.
	KindBearOff Kind = "bear_off"
)

// Valid reports whether k is a known category.
func (k Kind) Valid() bool {
	return k == KindNormal || k == KindBarEntry || k == KindBearOff
}

// Move is one checker step using one die.
//
// From is ignored for bar entries and To is ignored for bear-offs.
type Move struct {
	Player board.Color `json:"player"`
	Kind   Kind        `json:"kind"`
	From   int         `json:"from"`
	To     int         `json:"to"`
	Die    int         `json:"die"`
}

// Normal builds a point-to-point move.
func Normal(player board.Color, from, to, die int) Move {
	return Move{Player: player, Kind: KindNormal, From: from, To: to, Die: die}
}

// Enter builds a bar entry onto point to.
func Enter(player board.Color, to, die int) Move {
	return Move{Player: player, Kind: KindBarEntry, To: to, Die: die}
}

// BearOff builds a bear-off from point from.
func BearOff(player board.Color, from, die int) Move {
	return Move{Player: player, Kind: KindBearOff, From: from, Die: die}
}

// normalized clears the fields the kind ignores so moves compare by value.
func (m Move) normalized() Move {
	switch m.Kind {
	case KindBarEntry:
		m.From = 0
	case KindBearOff:
		m.To = 0
	}
	return m
}

// Same reports whether two moves describe the same step.
func (m Move) Same(other Move) bool {
	return m.normalized() == other.normalized()
}

func (m Move) String() string {
	switch m.Kind {
	case KindBarEntry:
		return fmt.Sprintf("%s bar/%d (%d)", m.Player, m.To, m.Die)
	case KindBearOff:
		return fmt.Sprintf("%s %d/off (%d)", m.Player, m.From, m.Die)
	default:
		return fmt.Sprintf("%s %d/%d (%d)", m.Player, m.From, m.To, m.Die)
	}
}

// Apply plays a validated move and returns the new board. A lone opposing
// checker on the destination is sent to the bar.
func Apply(m Move, b board.Board) board.Board {
	if m.Kind == KindBarEntry {
		b = b.LiftFromBar(m.Player)
	} else {
		b = b.Lift(m.Player, m.From)
	}
	if m.Kind == KindBearOff {
		return b.BearOff(m.Player)
	}
	b, _ = b.Drop(m.Player, m.To)
	return b
}

// CheckWin returns the side that has borne off all checkers, if any.
func CheckWin(b board.Board) board.Color {
	return b.Winner()
}

// PipCount returns both sides' pip totals.
func PipCount(b board.Board) board.PipCount {
	return b.Pips()
}
