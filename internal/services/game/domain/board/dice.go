package board

import "sort"

// Dice is a roll and the dice still usable from it.
type Dice struct {
	Rolled    [2]int `json:"rolled"`
	Doubles   bool   `json:"doubles"`
	Remaining []int  `json:"remaining"`
}

// NewDice builds the usable pool for a roll; doubles give four uses.
func NewDice(first, second int) Dice {
	d := Dice{Rolled: [2]int{first, second}, Doubles: first == second}
	if d.Doubles {
		d.Remaining = []int{first, first, first, first}
	} else {
		d.Remaining = []int{first, second}
	}
	return d
}

// ValidDie reports whether value is a die face.
func ValidDie(value int) bool {
	return value >= 1 && value <= 6
}

// Has reports whether die is still usable.
func (d Dice) Has(die int) bool {
	for _, v := range d.Remaining {
		if v == die {
			return true
		}
	}
	return false
}

// Use returns a copy with one instance of die consumed.
func (d Dice) Use(die int) Dice {
	remaining := make([]int, 0, len(d.Remaining))
	used := false
	for _, v := range d.Remaining {
		if !used && v == die {
			used = true
			continue
		}
		remaining = append(remaining, v)
	}
	d.Remaining = remaining
	return d
}

// Untouched reports whether no die of the roll has been used yet.
func (d Dice) Untouched() bool {
	if d.Doubles {
		return len(d.Remaining) == 4
	}
	return len(d.Remaining) == 2
}

// Distinct returns the distinct remaining values, largest first.
func (d Dice) Distinct() []int {
	seen := map[int]bool{}
	out := make([]int, 0, 2)
	for _, v := range d.Remaining {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

// Consistent reports whether Remaining is a sub-multiset of the roll.
func (d Dice) Consistent() bool {
	if !ValidDie(d.Rolled[0]) || !ValidDie(d.Rolled[1]) {
		return false
	}
	if d.Doubles != (d.Rolled[0] == d.Rolled[1]) {
		return false
	}
	pool := NewDice(d.Rolled[0], d.Rolled[1])
	if len(d.Remaining) > len(pool.Remaining) {
		return false
	}
	for _, v := range d.Remaining {
		if !pool.Has(v) {
			return false
		}
		pool = pool.Use(v)
	}
	return true
}
