// Package dice rolls backgammon dice.
package dice

import (
	"errors"
	"math/rand"
	"sync"

	"github.com/louisbranch/backgammon/internal/services/game/domain/board"
)

// ErrInvalidFace indicates a scripted roll outside 1..6.
var ErrInvalidFace = errors.New("dice faces must be between 1 and 6")

// Roller produces a fresh pair of dice.
type Roller interface {
	Roll() (int, int)
}

// RollFunc adapts a function to Roller.
type RollFunc func() (int, int)

// Roll implements Roller.
func (f RollFunc) Roll() (int, int) {
	return f()
}

// Seeded rolls deterministically from a seed.
//
// Given the same seed, the sequence of pairs is always the same. It is safe
// for concurrent use; concurrent callers share one sequence.
type Seeded struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeeded creates a seeded roller.
func NewSeeded(seed int64) *Seeded {
	return &Seeded{rng: rand.New(rand.NewSource(seed))}
}

// Roll implements Roller.
func (s *Seeded) Roll() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return rollDie(s.rng), rollDie(s.rng)
}

func rollDie(rng *rand.Rand) int {
	return rng.Intn(6) + 1
}

// Script returns queued pairs first and defers to a fallback roller after.
type Script struct {
	mu       sync.Mutex
	queue    [][2]int
	fallback Roller
}

// NewScript creates a scripted roller.
func NewScript(fallback Roller) *Script {
	return &Script{fallback: fallback}
}

// Push queues a pair for the next roll.
func (s *Script) Push(first, second int) error {
	if !board.ValidDie(first) || !board.ValidDie(second) {
		return ErrInvalidFace
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, [2]int{first, second})
	return nil
}

// Pending returns how many queued pairs have not been rolled yet.
func (s *Script) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Roll implements Roller.
func (s *Script) Roll() (int, int) {
	s.mu.Lock()
	if len(s.queue) > 0 {
		next := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()
		return next[0], next[1]
	}
	s.mu.Unlock()
	return s.fallback.Roll()
}

// Pool rolls a fresh usable pool.
func Pool(r Roller) board.Dice {
	first, second := r.Roll()
	return board.NewDice(first, second)
}

// MaxOpeningRolls bounds how many tied opening rolls are re-rolled before
// Opening gives up.
const MaxOpeningRolls = 32

// ErrOpeningUndecided is returned when every opening roll tied.
var ErrOpeningUndecided = errors.New("dice: opening roll tied on every attempt")

// Opening rolls one die per side until they differ. The side with the higher
// die starts and plays both dice.
func Opening(r Roller) (board.Color, board.Dice, error) {
	for attempt := 0; attempt < MaxOpeningRolls; attempt++ {
		white, black := r.Roll()
		switch {
		case white > black:
			return board.White, board.NewDice(white, black), nil
		case black > white:
			return board.Black, board.NewDice(black, white), nil
		}
	}
	return board.NoColor, board.Dice{}, ErrOpeningUndecided
}
