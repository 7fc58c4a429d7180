package move

import (
	"math/rand"
	"testing"

	apperrors "github.com/louisbranch/backgammon/internal/platform/errors"
	"github.com/louisbranch/backgammon/internal/services/game/domain/board"
)

func requireValid(t *testing.T, m Move, b board.Board, d board.Dice) {
	t.Helper()
	verdict := Validate(m, b, d)
	if !verdict.Valid {
		t.Fatalf("expected %s to be valid, got %+v", m, verdict.Rejection)
	}
}

func requireRejected(t *testing.T, m Move, b board.Board, d board.Dice, code apperrors.Code) {
	t.Helper()
	verdict := Validate(m, b, d)
	if verdict.Valid {
		t.Fatalf("expected %s to be rejected with %s", m, code)
	}
	if verdict.Rejection.Code != code {
		t.Fatalf("expected %s, got %s (%s)", code, verdict.Rejection.Code, verdict.Rejection.Message)
	}
}

func TestOpeningThreeOneMakesFivePoint(t *testing.T) {
	b := board.Initial()
	d := board.NewDice(3, 1)

	first := Normal(board.White, 16, 19, 3)
	requireValid(t, first, b, d)
	b = Apply(first, b)
	d = d.Use(3)

	second := Normal(board.White, 18, 19, 1)
	requireValid(t, second, b, d)
	b = Apply(second, b)
	d = d.Use(1)

	if b.Points[19] != 2 {
		t.Fatalf("expected two white checkers on 19, got %d", b.Points[19])
	}
	if len(d.Remaining) != 0 {
		t.Fatalf("expected dice consumed, got %v", d.Remaining)
	}
	if len(Available(board.White, b, d)) != 0 {
		t.Fatal("expected no moves without dice")
	}
	if err := b.CheckIntegrity(); err != nil {
		t.Fatalf("expected valid board, got %v", err)
	}
}

func bearOffBoard() board.Board {
	var b board.Board
	b.Points[23] = 1
	b.Points[18] = 1
	b.WhiteOff = 13
	b.Points[0] = -15
	return b
}

func TestBearOffHigherDieWhilePiecesRemainBehind(t *testing.T) {
	b := bearOffBoard()
	d := board.NewDice(6, 1)

	requireRejected(t, BearOff(board.White, 23, 6), b, d, apperrors.CodeMoveBearOffHigherDie)
	requireValid(t, BearOff(board.White, 18, 6), b, d)
	requireValid(t, BearOff(board.White, 23, 1), b, d)
}

func TestBearOffHigherDieAllowedFromRearmost(t *testing.T) {
	var b board.Board
	b.Points[21] = 2
	b.WhiteOff = 13
	b.Points[0] = -15

	requireValid(t, BearOff(board.White, 21, 6), b, board.NewDice(6, 5))
	requireRejected(t, BearOff(board.White, 21, 2), b, board.NewDice(2, 1), apperrors.CodeMoveBearOffDieTooSmall)
}

func TestBearOffRequiresAllHome(t *testing.T) {
	var b board.Board
	b.Points[23] = 14
	b.Points[10] = 1
	b.Points[0] = -15

	requireRejected(t, BearOff(board.White, 23, 1), b, board.NewDice(1, 2), apperrors.CodeMoveBearOffNotHome)
}

func TestBarPriorityWithEveryEntryBlocked(t *testing.T) {
	var b board.Board
	for point := 0; point <= 5; point++ {
		b.Points[point] = -2
	}
	b.Points[12] = -3
	b.WhiteBar = 1
	b.Points[16] = 14

	for _, roll := range [][2]int{{1, 2}, {6, 6}, {3, 5}} {
		d := board.NewDice(roll[0], roll[1])
		if moves := Available(board.White, b, d); len(moves) != 0 {
			t.Fatalf("expected no moves for %v, got %v", roll, moves)
		}
	}
	requireRejected(t, Normal(board.White, 16, 17, 1), b, board.NewDice(1, 2), apperrors.CodeMoveBarFirst)
}

func TestBarEntry(t *testing.T) {
	b := board.Initial()
	b = b.Lift(board.Black, 23)
	b.BlackBar = 1
	d := board.NewDice(4, 6)

	moves := Available(board.Black, b, d)
	if len(moves) != 1 || moves[0].Kind != KindBarEntry || moves[0].To != 20 {
		t.Fatalf("expected single entry on 20, got %v", moves)
	}
	requireRejected(t, Enter(board.Black, 18, 6), b, d, apperrors.CodeMoveBlocked)
	requireRejected(t, Enter(board.Black, 19, 4), b, d, apperrors.CodeMoveEntryOutsideHome)
	requireValid(t, Enter(board.Black, 20, 4), b, d)
}

func TestApplyHitSendsBlotToBar(t *testing.T) {
	b := board.Initial()
	b.Points[7] = -2
	b.Points[6] = -1
	d := board.NewDice(6, 5)

	m := Normal(board.White, 0, 6, 6)
	requireValid(t, m, b, d)
	next := Apply(m, b)
	if next.BlackBar != 1 || next.Points[6] != 1 {
		t.Fatalf("expected hit, got bar=%d point=%d", next.BlackBar, next.Points[6])
	}
	if err := next.CheckIntegrity(); err != nil {
		t.Fatalf("expected valid board, got %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	b := board.Initial()
	d := board.NewDice(3, 1)
	tests := []struct {
		name string
		move Move
		code apperrors.Code
	}{
		{name: "unknown player", move: Normal("red", 16, 19, 3), code: apperrors.CodeMoveInvalidPlayer},
		{name: "unknown kind", move: Move{Player: board.White, Kind: "teleport", Die: 3}, code: apperrors.CodeMoveInvalidKind},
		{name: "die out of range", move: Normal(board.White, 16, 23, 7), code: apperrors.CodeMoveDieRange},
		{name: "source out of range", move: Normal(board.White, 24, 21, 3), code: apperrors.CodeMovePointRange},
		{name: "destination out of range", move: Normal(board.White, 23, 26, 3), code: apperrors.CodeMovePointRange},
		{name: "die not rolled", move: Normal(board.White, 16, 20, 4), code: apperrors.CodeMoveDieUnavailable},
		{name: "empty source", move: Normal(board.White, 1, 4, 3), code: apperrors.CodeMoveSourceEmpty},
		{name: "opponent source", move: Normal(board.White, 5, 8, 3), code: apperrors.CodeMoveSourceEmpty},
		{name: "backwards", move: Normal(board.White, 16, 13, 3), code: apperrors.CodeMoveWrongDirection},
		{name: "distance mismatch", move: Normal(board.White, 16, 18, 3), code: apperrors.CodeMoveDistanceMismatch},
		{name: "blocked", move: Normal(board.White, 11, 12, 1), code: apperrors.CodeMoveBlocked},
		{name: "no bar checker", move: Enter(board.White, 2, 3), code: apperrors.CodeMoveSourceEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireRejected(t, tt.move, b, d, tt.code)
		})
	}
}

// One outside checker can play either die but never both.
func TestMustUseLargerDie(t *testing.T) {
	var b board.Board
	b.Points[10] = 1
	b.Points[23] = 14
	b.Points[21] = -2
	b.Points[0] = -13
	d := board.NewDice(5, 6)

	moves := Available(board.White, b, d)
	if len(moves) != 1 || !moves[0].Same(Normal(board.White, 10, 16, 6)) {
		t.Fatalf("expected only the six, got %v", moves)
	}
	requireRejected(t, Normal(board.White, 10, 15, 5), b, d, apperrors.CodeMoveMustUseLargerDie)
	requireValid(t, Normal(board.White, 10, 16, 6), b, d)
}

func TestMustUseLargerDieOnBarEntry(t *testing.T) {
	var b board.Board
	b.WhiteBar = 1
	b.Points[23] = 14
	for _, point := range []int{0, 1, 2, 3} {
		b.Points[point] = -2
	}
	b.Points[10] = -2
	b.Points[12] = -5
	// entry on 4 (die 5) or 5 (die 6); 4+6 and 5+5 both land on blocked 10.
	d := board.NewDice(5, 6)

	moves := Available(board.White, b, d)
	if len(moves) != 1 || moves[0].Die != 6 {
		t.Fatalf("expected only the six to enter, got %v", moves)
	}
	requireRejected(t, Enter(board.White, 4, 5), b, d, apperrors.CodeMoveMustUseLargerDie)
}

func TestMustUseMaximumDice(t *testing.T) {
	var b board.Board
	b.Points[0] = 1
	b.Points[13] = 1
	b.Points[23] = 13
	b.Points[8] = -2
	b.Points[15] = -2
	b.Points[5] = -11
	d := board.NewDice(6, 2)

	requireRejected(t, Normal(board.White, 0, 6, 6), b, d, apperrors.CodeMoveMustUseMaximumDice)
	requireValid(t, Normal(board.White, 0, 2, 2), b, d)
	requireValid(t, Normal(board.White, 13, 19, 6), b, d)
}

func TestDoublesAllowFourSteps(t *testing.T) {
	b := board.Initial()
	d := board.NewDice(2, 2)
	for i := 0; i < 4; i++ {
		moves := Available(board.White, b, d)
		if len(moves) == 0 {
			t.Fatalf("expected moves on step %d", i)
		}
		b = Apply(moves[0], b)
		d = d.Use(moves[0].Die)
	}
	if len(d.Remaining) != 0 {
		t.Fatalf("expected dice consumed, got %v", d.Remaining)
	}
}

func TestAvailableAgreesWithValidate(t *testing.T) {
	positions := map[string]board.Board{
		"initial":  board.Initial(),
		"bear off": bearOffBoard(),
	}
	rolls := [][2]int{{3, 1}, {6, 6}, {6, 1}, {5, 2}, {4, 4}}
	for name, b := range positions {
		for _, roll := range rolls {
			d := board.NewDice(roll[0], roll[1])
			for _, player := range []board.Color{board.White, board.Black} {
				available := Available(player, b, d)
				for _, m := range available {
					if !Validate(m, b, d).Valid {
						t.Fatalf("%s %v: available move %s rejected", name, roll, m)
					}
				}
				for _, m := range everyMove(player, d) {
					if !Validate(m, b, d).Valid {
						continue
					}
					if !contains(available, m) {
						t.Fatalf("%s %v: valid move %s missing from available", name, roll, m)
					}
				}
			}
		}
	}
}

func TestRandomPlayoutsKeepFifteenCheckers(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	b := board.Initial()
	player := board.White
	for turn := 0; turn < 400 && CheckWin(b) == board.NoColor; turn++ {
		d := board.NewDice(rng.Intn(6)+1, rng.Intn(6)+1)
		for {
			moves := Available(player, b, d)
			if len(moves) == 0 {
				break
			}
			m := moves[rng.Intn(len(moves))]
			b = Apply(m, b)
			d = d.Use(m.Die)
			if err := b.CheckIntegrity(); err != nil {
				t.Fatalf("turn %d: %v", turn, err)
			}
		}
		player = player.Opponent()
	}
	pips := PipCount(b)
	if pips.White < 0 || pips.Black < 0 {
		t.Fatalf("expected non-negative pips, got %+v", pips)
	}
}

func everyMove(player board.Color, d board.Dice) []Move {
	var out []Move
	for _, die := range d.Distinct() {
		for point := 0; point < board.PointCount; point++ {
			out = append(out, Enter(player, point, die), BearOff(player, point, die))
			for to := 0; to < board.PointCount; to++ {
				out = append(out, Normal(player, point, to, die))
			}
		}
	}
	return out
}

func contains(moves []Move, m Move) bool {
	for _, candidate := range moves {
		if candidate.Same(m) {
			return true
		}
	}
	return false
}
