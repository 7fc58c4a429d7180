package match

import "github.com/louisbranch/backgammon/internal/services/game/domain/board"

// ResultKind classifies how decisively a game was won.
type ResultKind string

const (
	ResultSingle     ResultKind = "SINGLE"
	ResultGammon     ResultKind = "GAMMON"
	ResultBackgammon ResultKind = "BACKGAMMON"
)

// Valid reports whether k is a known result.
func (k ResultKind) Valid() bool {
	return k == ResultSingle || k == ResultGammon || k == ResultBackgammon
}

// Multiplier is 1, 2 or 3.
func (k ResultKind) Multiplier() int {
	switch k {
	case ResultGammon:
		return 2
	case ResultBackgammon:
		return 3
	default:
		return 1
	}
}

// Classify inspects the final board for the loser's position.
func Classify(b board.Board, winner board.Color) ResultKind {
	loser := winner.Opponent()
	if b.Off(loser) > 0 {
		return ResultSingle
	}
	if b.Bar(loser) > 0 {
		return ResultBackgammon
	}
	for point := 0; point < board.PointCount; point++ {
		if b.OnPoint(loser, point) > 0 && board.InHome(winner, point) {
			return ResultBackgammon
		}
	}
	return ResultGammon
}

// GameResult scores a finished game at the given cube level. Under the
// Jacoby rule a money game with an unturned cube only pays singles.
func GameResult(kind ResultKind, winner board.Color, cubeLevel int, cubeTurned bool, record Record) (PointResult, ResultKind) {
	if record.Rules.Jacoby && record.Length == 0 && !cubeTurned {
		kind = ResultSingle
	}
	if cubeLevel < 1 {
		cubeLevel = 1
	}
	return PointResult{Winner: winner, Points: kind.Multiplier() * cubeLevel}, kind
}
