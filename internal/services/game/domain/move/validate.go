package move

import (
	"strconv"

	apperrors "github.com/louisbranch/backgammon/internal/platform/errors"
	"github.com/louisbranch/backgammon/internal/services/game/domain/board"
	"github.com/louisbranch/backgammon/internal/services/game/domain/command"
)

// Validate checks m against the position and the remaining dice.
//
// Shape problems are reported before rule problems. A move that passes the
// single-step rules is still rejected when it is not the start of a play
// that uses as many dice as possible, or when it uses the smaller die while
// only one die can be played and the larger one could be.
func Validate(m Move, b board.Board, d board.Dice) command.Verdict {
	if rejection := checkShape(m); rejection != nil {
		return command.Deny(rejection)
	}
	if !d.Has(m.Die) {
		return command.Deny(command.Reject(apperrors.CodeMoveDieUnavailable, "die "+strconv.Itoa(m.Die)+" is not available", meta("Die", m.Die)))
	}
	if rejection := checkStep(m, b); rejection != nil {
		return command.Deny(rejection)
	}

	plan := planPlays(m.Player, b, d)
	for _, allowed := range plan.plays {
		if allowed.Same(m) {
			return command.Accept()
		}
	}
	if plan.largerOnly && m.Die != plan.larger {
		return command.Deny(command.Reject(apperrors.CodeMoveMustUseLargerDie, "only one die can be played and it must be the larger", meta("Die", plan.larger)))
	}
	return command.Deny(command.Reject(apperrors.CodeMoveMustUseMaximumDice, "move does not allow the maximum number of dice to be played", meta("Dice", plan.depth)))
}

func checkShape(m Move) *command.Rejection {
	if !m.Player.Valid() {
		return command.Reject(apperrors.CodeMoveInvalidPlayer, "unknown player", map[string]string{"Player": string(m.Player)})
	}
	if !m.Kind.Valid() {
		return command.Reject(apperrors.CodeMoveInvalidKind, "unknown move kind", map[string]string{"Kind": string(m.Kind)})
	}
	if !board.ValidDie(m.Die) {
		return command.Reject(apperrors.CodeMoveDieRange, "die out of range", meta("Die", m.Die))
	}
	if m.Kind != KindBarEntry && !onBoard(m.From) {
		return command.Reject(apperrors.CodeMovePointRange, "source point out of range", meta("Point", m.From))
	}
	if m.Kind != KindBearOff && !onBoard(m.To) {
		return command.Reject(apperrors.CodeMovePointRange, "destination point out of range", meta("Point", m.To))
	}
	return nil
}

// checkStep applies the single-step rules, ignoring the rest of the roll.
func checkStep(m Move, b board.Board) *command.Rejection {
	p := m.Player
	if m.Kind == KindBarEntry {
		if b.Bar(p) == 0 {
			return command.Reject(apperrors.CodeMoveSourceEmpty, "no checker on the bar", map[string]string{"Point": "bar"})
		}
		expected := board.EntryPoint(p, m.Die)
		if m.To != expected {
			return command.Reject(apperrors.CodeMoveEntryOutsideHome, "bar entry must land on the die's point in the opponent's home", map[string]string{
				"Die":      strconv.Itoa(m.Die),
				"Expected": strconv.Itoa(expected),
			})
		}
		if b.Blocked(p, m.To) {
			return command.Reject(apperrors.CodeMoveBlocked, "entry point is blocked", meta("Point", m.To))
		}
		return nil
	}

	if b.Bar(p) > 0 {
		return command.Reject(apperrors.CodeMoveBarFirst, "checkers on the bar must enter first", nil)
	}
	if b.OnPoint(p, m.From) == 0 {
		return command.Reject(apperrors.CodeMoveSourceEmpty, "no checker on source point", meta("Point", m.From))
	}

	if m.Kind == KindBearOff {
		if !b.AllHome(p) {
			return command.Reject(apperrors.CodeMoveBearOffNotHome, "all checkers must be home to bear off", nil)
		}
		if !board.InHome(p, m.From) {
			return command.Reject(apperrors.CodeMoveBearOffFromOutside, "source is outside the home board", meta("Point", m.From))
		}
		distance := board.BearOffDistance(p, m.From)
		if m.Die < distance {
			return command.Reject(apperrors.CodeMoveBearOffDieTooSmall, "die too small to bear off", map[string]string{
				"Die":   strconv.Itoa(m.Die),
				"Point": strconv.Itoa(m.From),
			})
		}
		if m.Die > distance && b.FarthestFromHome(p) > distance {
			return command.Reject(apperrors.CodeMoveBearOffHigherDie, "higher die while pieces remain behind", map[string]string{
				"Die":   strconv.Itoa(m.Die),
				"Point": strconv.Itoa(m.From),
			})
		}
		return nil
	}

	delta := (m.To - m.From) * p.Direction()
	if delta <= 0 {
		return command.Reject(apperrors.CodeMoveWrongDirection, "move goes the wrong way", nil)
	}
	if delta != m.Die {
		return command.Reject(apperrors.CodeMoveDistanceMismatch, "move distance does not match die", meta("Die", m.Die))
	}
	if b.Blocked(p, m.To) {
		return command.Reject(apperrors.CodeMoveBlocked, "destination is blocked", meta("Point", m.To))
	}
	return nil
}

func onBoard(point int) bool {
	return point >= 0 && point < board.PointCount
}

func meta(key string, value int) map[string]string {
	return map[string]string{key: strconv.Itoa(value)}
}
