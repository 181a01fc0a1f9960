package puzzle

import (
	"errors"
	"math/rand/v2"
)

// Color is a palette entry: a name and its display value.
type Color struct {
	Name string
	Hex  string
}

// Palette is the default set of colors.
var Palette = []Color{
	{Name: "Red", Hex: "#FF0000"},
	{Name: "Green", Hex: "#00FF00"},
	{Name: "Blue", Hex: "#0000FF"},
	{Name: "Yellow", Hex: "#FFFF00"},
}

// ErrPaletteTooSmall is returned when the palette cannot supply a display
// color different from the target.
var ErrPaletteTooSmall = errors.New("color palette needs at least two colors")

// ErrClosed is returned when input reaches a disposed session.
var ErrClosed = errors.New("puzzle session closed")

// ColorMatch shows a color name printed in a different color and asks for
// the button named by the word.
type ColorMatch struct {
	Target  Color
	Display Color

	palette []Color
	buttons []Color
	rng     *rand.Rand
	solved  bool
	closed  bool
}

func NewColorMatch(rng *rand.Rand, palette []Color) (*ColorMatch, error) {
	if len(palette) < 2 {
		return nil, ErrPaletteTooSmall
	}
	c := &ColorMatch{
		palette: append([]Color(nil), palette...),
		rng:     rng,
	}
	c.draw()
	return c, nil
}

// draw picks a target, a display color other than the target, and a new
// button order.
func (c *ColorMatch) draw() {
	n := len(c.palette)
	t := c.rng.IntN(n)
	d := c.rng.IntN(n - 1)
	if d >= t {
		d++
	}
	c.Target = c.palette[t]
	c.Display = c.palette[d]

	c.buttons = append(c.buttons[:0], c.palette...)
	c.rng.Shuffle(len(c.buttons), func(i, j int) {
		c.buttons[i], c.buttons[j] = c.buttons[j], c.buttons[i]
	})
}

// Buttons returns the palette in the current display order.
func (c *ColorMatch) Buttons() []Color {
	return append([]Color(nil), c.buttons...)
}

// Attempt checks the pressed button's name against the target word. A
// wrong press redraws the challenge.
func (c *ColorMatch) Attempt(name string) Outcome {
	if c.closed {
		return Retry
	}
	if c.solved || name == c.Target.Name {
		c.solved = true
		return Solved
	}
	c.draw()
	return Retry
}
