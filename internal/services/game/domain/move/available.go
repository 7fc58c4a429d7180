package move

import (
	"sort"

	"github.com/louisbranch/backgammon/internal/services/game/domain/board"
)

// Available lists every distinct legal first step for player with the
// remaining dice. When the player has checkers on the bar only entries are
// considered; a die that cannot enter is unusable for the ply.
func Available(player board.Color, b board.Board, d board.Dice) []Move {
	if !player.Valid() {
		return nil
	}
	return planPlays(player, b, d).plays
}

// HasAny reports whether player can use at least one remaining die.
func HasAny(player board.Color, b board.Board, d board.Dice) bool {
	if !player.Valid() || len(d.Remaining) == 0 {
		return false
	}
	return len(steps(player, b, d)) > 0
}

type plan struct {
	plays      []Move
	depth      int
	larger     int
	largerOnly bool
}

// planPlays keeps the steps that begin a maximal play.
func planPlays(player board.Color, b board.Board, d board.Dice) plan {
	candidates := steps(player, b, d)
	if len(candidates) == 0 {
		return plan{}
	}

	memo := map[searchKey]int{}
	depths := make([]int, len(candidates))
	best := 0
	for i, c := range candidates {
		depths[i] = 1 + maxDepth(player, Apply(c, b), d.Use(c.Die), memo)
		if depths[i] > best {
			best = depths[i]
		}
	}

	out := plan{depth: best}
	for i, c := range candidates {
		if depths[i] == best {
			out.plays = append(out.plays, c)
		}
	}

	distinct := d.Distinct()
	if best == 1 && !d.Doubles && len(distinct) == 2 {
		larger := distinct[0]
		filtered := make([]Move, 0, len(out.plays))
		for _, c := range out.plays {
			if c.Die == larger {
				filtered = append(filtered, c)
			}
		}
		if len(filtered) > 0 {
			out.plays = filtered
			out.larger = larger
			out.largerOnly = true
		}
	}

	sortMoves(out.plays)
	return out
}

type searchKey struct {
	board board.Board
	dice  [4]int
}

func keyFor(b board.Board, d board.Dice) searchKey {
	key := searchKey{board: b}
	sorted := append([]int(nil), d.Remaining...)
	sort.Ints(sorted)
	copy(key.dice[:], sorted)
	return key
}

// maxDepth is the largest number of dice playable from the position.
func maxDepth(player board.Color, b board.Board, d board.Dice, memo map[searchKey]int) int {
	if len(d.Remaining) == 0 {
		return 0
	}
	key := keyFor(b, d)
	if depth, ok := memo[key]; ok {
		return depth
	}
	best := 0
	for _, c := range steps(player, b, d) {
		depth := 1 + maxDepth(player, Apply(c, b), d.Use(c.Die), memo)
		if depth > best {
			best = depth
		}
		if best == len(d.Remaining) {
			break
		}
	}
	memo[key] = best
	return best
}

// steps lists single steps that satisfy the per-step rules.
func steps(player board.Color, b board.Board, d board.Dice) []Move {
	var out []Move
	for _, die := range d.Distinct() {
		if b.Bar(player) > 0 {
			m := Enter(player, board.EntryPoint(player, die), die)
			if checkStep(m, b) == nil {
				out = append(out, m)
			}
			continue
		}
		for from := 0; from < board.PointCount; from++ {
			if b.OnPoint(player, from) == 0 {
				continue
			}
			to := from + player.Direction()*die
			m := Normal(player, from, to, die)
			if !onBoard(to) {
				m = BearOff(player, from, die)
			}
			if checkStep(m, b) == nil {
				out = append(out, m)
			}
		}
	}
	return out
}

func sortMoves(moves []Move) {
	sort.Slice(moves, func(i, j int) bool {
		a, b := moves[i], moves[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.From != b.From {
			return a.From < b.From
		}
		if a.To != b.To {
			return a.To < b.To
		}
		return a.Die < b.Die
	})
}
