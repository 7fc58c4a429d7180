// Package board models the backgammon position and dice.
//
// Points are indexed 0..23. Positive counts belong to White, negative counts
// to Black. White moves toward higher indices and bears off past 23, so its
// home board is 18..23; Black moves toward 0 and its home board is 0..5.
package board

import (
	"strconv"

	apperrors "github.com/louisbranch/backgammon/internal/platform/errors"
)

const (
	// PointCount is the number of points on the board.
	PointCount = 24
	// CheckersPerColor is the number of checkers each side owns.
	CheckersPerColor = 15
	// BarDistance is the pip distance of a checker on the bar.
	BarDistance = 25
)

// Color identifies a side.
type Color string

const (
	NoColor Color = ""
	White   Color = "white"
	Black   Color = "black"
)

// Valid reports whether c names a side.
func (c Color) Valid() bool {
	return c == White || c == Black
}

// Opponent returns the other side.
func (c Color) Opponent() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	default:
		return NoColor
	}
}

// Direction is +1 for White and -1 for Black.
func (c Color) Direction() int {
	if c == Black {
		return -1
	}
	return 1
}

// ParseColor maps a string to a Color, returning NoColor when unknown.
func ParseColor(value string) Color {
	switch Color(value) {
	case White:
		return White
	case Black:
		return Black
	default:
		return NoColor
	}
}

// Board is a position. It is a value type; mutators return copies.
type Board struct {
	Points   [PointCount]int `json:"points"`
	WhiteBar int             `json:"whiteBar"`
	BlackBar int             `json:"blackBar"`
	WhiteOff int             `json:"whiteOff"`
	BlackOff int             `json:"blackOff"`
}

var initialPoints = [PointCount]int{
	2, 0, 0, 0, 0, -5,
	0, -3, 0, 0, 0, 5,
	-5, 0, 0, 0, 3, 0,
	5, 0, 0, 0, 0, -2,
}

// Initial returns the standard starting position.
func Initial() Board {
	return Board{Points: initialPoints}
}

// ErrCheckerCountCorrupt marks a board whose checker totals are not 15.
var ErrCheckerCountCorrupt = apperrors.New(apperrors.CodeBoardCheckerCount, "checker count corrupt")

// OnPoint returns how many checkers of c sit on point.
func (b Board) OnPoint(c Color, point int) int {
	if point < 0 || point >= PointCount {
		return 0
	}
	n := b.Points[point] * c.Direction()
	if n < 0 {
		return 0
	}
	return n
}

// Blocked reports whether point holds two or more checkers opposing c.
func (b Board) Blocked(c Color, point int) bool {
	return b.OnPoint(c.Opponent(), point) >= 2
}

// Bar returns how many checkers of c are on the bar.
func (b Board) Bar(c Color) int {
	if c == Black {
		return b.BlackBar
	}
	return b.WhiteBar
}

// Off returns how many checkers of c have been borne off.
func (b Board) Off(c Color) int {
	if c == Black {
		return b.BlackOff
	}
	return b.WhiteOff
}

func (b *Board) addBar(c Color, n int) {
	if c == Black {
		b.BlackBar += n
		return
	}
	b.WhiteBar += n
}

func (b *Board) addOff(c Color, n int) {
	if c == Black {
		b.BlackOff += n
		return
	}
	b.WhiteOff += n
}

// Total returns every checker of c on points, bar and off.
func (b Board) Total(c Color) int {
	total := b.Bar(c) + b.Off(c)
	for point := range b.Points {
		total += b.OnPoint(c, point)
	}
	return total
}

// CheckIntegrity returns ErrCheckerCountCorrupt when either side does not
// hold exactly 15 checkers or a bar/off count is negative.
func (b Board) CheckIntegrity() error {
	for _, c := range []Color{White, Black} {
		total := b.Total(c)
		if total != CheckersPerColor || b.Bar(c) < 0 || b.Off(c) < 0 {
			return apperrors.WithMetadata(apperrors.CodeBoardCheckerCount, string(c)+" holds "+strconv.Itoa(total)+" checkers", map[string]string{
				"Color": string(c),
				"Count": strconv.Itoa(total),
			})
		}
	}
	return nil
}

// InHome reports whether point is inside c's home board.
func InHome(c Color, point int) bool {
	if c == Black {
		return point >= 0 && point <= 5
	}
	return point >= 18 && point < PointCount
}

// EntryPoint is the point a checker of c enters on with die.
func EntryPoint(c Color, die int) int {
	if c == Black {
		return PointCount - die
	}
	return die - 1
}

// BearOffDistance is the exact die needed to bear a checker of c off point.
func BearOffDistance(c Color, point int) int {
	if c == Black {
		return point + 1
	}
	return PointCount - point
}

// AllHome reports whether every unborne checker of c is in its home board.
func (b Board) AllHome(c Color) bool {
	if b.Bar(c) > 0 {
		return false
	}
	for point := range b.Points {
		if b.OnPoint(c, point) > 0 && !InHome(c, point) {
			return false
		}
	}
	return true
}

// FarthestFromHome returns the bear-off distance of c's rearmost checker, or 0.
func (b Board) FarthestFromHome(c Color) int {
	farthest := 0
	for point := range b.Points {
		if b.OnPoint(c, point) == 0 {
			continue
		}
		if d := BearOffDistance(c, point); d > farthest {
			farthest = d
		}
	}
	return farthest
}

// PipCount holds the race totals for both sides.
type PipCount struct {
	White int `json:"white"`
	Black int `json:"black"`
}

// Pips returns the pip count for both sides, bar checkers counting 25.
func (b Board) Pips() PipCount {
	pips := PipCount{
		White: b.WhiteBar * BarDistance,
		Black: b.BlackBar * BarDistance,
	}
	for point := range b.Points {
		pips.White += b.OnPoint(White, point) * BearOffDistance(White, point)
		pips.Black += b.OnPoint(Black, point) * BearOffDistance(Black, point)
	}
	return pips
}

// Winner returns the side that has borne off all fifteen checkers.
func (b Board) Winner() Color {
	switch {
	case b.WhiteOff >= CheckersPerColor:
		return White
	case b.BlackOff >= CheckersPerColor:
		return Black
	default:
		return NoColor
	}
}

// Lift removes one checker of c from point.
func (b Board) Lift(c Color, point int) Board {
	b.Points[point] -= c.Direction()
	return b
}

// LiftFromBar removes one checker of c from the bar.
func (b Board) LiftFromBar(c Color) Board {
	b.addBar(c, -1)
	return b
}

// Drop places one checker of c on point, sending a lone opposing checker to
// the bar. The second return value reports a hit.
func (b Board) Drop(c Color, point int) (Board, bool) {
	hit := false
	if b.OnPoint(c.Opponent(), point) == 1 {
		b.Points[point] = 0
		b.addBar(c.Opponent(), 1)
		hit = true
	}
	b.Points[point] += c.Direction()
	return b, hit
}

// BearOff removes one checker of c to the off tray.
func (b Board) BearOff(c Color) Board {
	b.addOff(c, 1)
	return b
}
