package reviewflow

import "strings"

// MaxRating is the number of stars every rating input shows.
const MaxRating = 5

type Size int

const (
	SizeNormal Size = iota
	SizeSmall
	SizeLarge
)

const (
	filledStar = "★"
	emptyStar  = "☆"
)

// Unit is one selectable star.
type Unit struct {
	Position int // 1-indexed
	Filled   bool
}

// RatingInput is a row of MaxRating stars. The zero value is an empty,
// normal-sized, interactive input with no callback.
type RatingInput struct {
	Value    int
	OnChange func(value int)
	Size     Size
	Readonly bool
}

func (r RatingInput) Units() []Unit {
	units := make([]Unit, MaxRating)
	for i := range units {
		position := i + 1
		units[i] = Unit{Position: position, Filled: position <= r.Value}
	}
	return units
}

// Select handles a click on the star at position and reports whether
// OnChange fired. Selecting the current value fires again; there is no
// toggle back to zero.
func (r RatingInput) Select(position int) bool {
	if r.Readonly || r.OnChange == nil {
		return false
	}
	if position < 1 || position > MaxRating {
		return false
	}
	r.OnChange(position)
	return true
}

// Render draws the row as text, e.g. "★ ★ ★ ☆ ☆" for a normal input at 3.
func (r RatingInput) Render() string {
	symbols := make([]string, 0, MaxRating)
	for _, unit := range r.Units() {
		if unit.Filled {
			symbols = append(symbols, filledStar)
		} else {
			symbols = append(symbols, emptyStar)
		}
	}
	return strings.Join(symbols, r.Size.separator())
}

func (s Size) separator() string {
	switch s {
	case SizeSmall:
		return ""
	case SizeLarge:
		return "  "
	default:
		return " "
	}
}

func (s Size) String() string {
	switch s {
	case SizeSmall:
		return "small"
	case SizeLarge:
		return "large"
	default:
		return "normal"
	}
}
