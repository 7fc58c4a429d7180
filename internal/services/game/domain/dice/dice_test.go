package dice

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/louisbranch/backgammon/internal/services/game/domain/board"
)

func TestSeededIsDeterministic(t *testing.T) {
	first := NewSeeded(7)
	second := NewSeeded(7)
	for i := 0; i < 20; i++ {
		a1, b1 := first.Roll()
		a2, b2 := second.Roll()
		if a1 != a2 || b1 != b2 {
			t.Fatalf("roll %d diverged: %d-%d vs %d-%d", i, a1, b1, a2, b2)
		}
		if !board.ValidDie(a1) || !board.ValidDie(b1) {
			t.Fatalf("roll %d out of range: %d-%d", i, a1, b1)
		}
	}
}

func TestSeededMatchesMathRand(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	want := [2]int{rng.Intn(6) + 1, rng.Intn(6) + 1}

	a, b := NewSeeded(1).Roll()
	if a != want[0] || b != want[1] {
		t.Fatalf("expected %v, got %d-%d", want, a, b)
	}
}

func TestScriptDrainsQueueThenFallsBack(t *testing.T) {
	script := NewScript(RollFunc(func() (int, int) { return 6, 6 }))
	if err := script.Push(3, 1); err != nil {
		t.Fatalf("push: %v", err)
	}
	if script.Pending() != 1 {
		t.Fatalf("expected 1 pending, got %d", script.Pending())
	}
	if a, b := script.Roll(); a != 3 || b != 1 {
		t.Fatalf("expected scripted 3-1, got %d-%d", a, b)
	}
	if a, b := script.Roll(); a != 6 || b != 6 {
		t.Fatalf("expected fallback 6-6, got %d-%d", a, b)
	}
}

func TestScriptRejectsInvalidFace(t *testing.T) {
	script := NewScript(NewSeeded(1))
	if err := script.Push(0, 7); !errors.Is(err, ErrInvalidFace) {
		t.Fatalf("expected ErrInvalidFace, got %v", err)
	}
}

func TestOpeningRerollsTies(t *testing.T) {
	script := NewScript(NewSeeded(1))
	_ = script.Push(4, 4)
	_ = script.Push(2, 5)

	starter, pool, err := Opening(script)
	if err != nil {
		t.Fatalf("opening: %v", err)
	}
	if starter != board.Black {
		t.Fatalf("expected black to start, got %s", starter)
	}
	if pool.Rolled != [2]int{5, 2} || pool.Doubles {
		t.Fatalf("expected 5-2 opening, got %v", pool.Rolled)
	}
}

func TestOpeningGivesUpAfterMaxTies(t *testing.T) {
	rolls := 0
	tied := RollFunc(func() (int, int) {
		rolls++
		return 4, 4
	})
	if _, _, err := Opening(tied); !errors.Is(err, ErrOpeningUndecided) {
		t.Fatalf("expected ErrOpeningUndecided, got %v", err)
	}
	if rolls != MaxOpeningRolls {
		t.Fatalf("expected %d rolls, got %d", MaxOpeningRolls, rolls)
	}
}
