package puzzle

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
)

const (
	mathMin = 10
	mathMax = 100 // exclusive
)

// Math asks for the sum of two two-digit operands.
type Math struct {
	A, B int

	rng    *rand.Rand
	solved bool
	closed bool
}

func NewMath(rng *rand.Rand) *Math {
	m := &Math{rng: rng}
	m.draw()
	return m
}

func (m *Math) draw() {
	m.A = mathMin + m.rng.IntN(mathMax-mathMin)
	m.B = mathMin + m.rng.IntN(mathMax-mathMin)
}

// Question renders the problem, e.g. "23 + 58 = ?".
func (m *Math) Question() string {
	return fmt.Sprintf("%d + %d = ?", m.A, m.B)
}

// Attempt checks input against the sum. Any other input, including
// non-numeric text, draws two new operands.
func (m *Math) Attempt(input string) Outcome {
	if m.closed {
		return Retry
	}
	if m.solved {
		return Solved
	}
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err == nil && n == m.A+m.B {
		m.solved = true
		return Solved
	}
	m.draw()
	return Retry
}
