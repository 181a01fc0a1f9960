// Package puzzle implements the dismissal challenges shown when an alarm
// fires. Each challenge is a small state machine that is fed user input and
// reports whether the alarm may be dismissed.
package puzzle

import (
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/abhisek/puzzlealarm/internal/alarm"
)

// Outcome is the result of evaluating one attempt.
type Outcome int

const (
	// Retry means the attempt failed and the challenge state has advanced
	// to its next form.
	Retry Outcome = iota
	// Solved means the alarm may be dismissed.
	Solved
)

func (o Outcome) String() string {
	if o == Solved {
		return "solved"
	}
	return "retry"
}

// Session is one dismissal challenge. Exactly one of the variant fields is
// set, matching Kind.
type Session struct {
	ID   string
	Kind alarm.PuzzleType

	Math       *Math
	Retype     *Retype
	Shake      *Shake
	Memory     *Memory
	ColorMatch *ColorMatch
}

// NewSession creates a challenge of the given kind. rng must not be nil.
func NewSession(kind alarm.PuzzleType, rng *rand.Rand) (*Session, error) {
	s := &Session{ID: uuid.New().String(), Kind: kind}

	switch kind {
	case alarm.PuzzleMath:
		s.Math = NewMath(rng)
	case alarm.PuzzleRetype:
		s.Retype = NewRetype(rng)
	case alarm.PuzzleShake:
		s.Shake = NewShake()
	case alarm.PuzzleMemory:
		s.Memory = NewMemory(rng)
	case alarm.PuzzleColorMatch:
		cm, err := NewColorMatch(rng, Palette)
		if err != nil {
			return nil, err
		}
		s.ColorMatch = cm
	default:
		return nil, fmt.Errorf("unknown puzzle type %q", kind)
	}
	return s, nil
}

// Instruction is the headline shown above the challenge.
func (s *Session) Instruction() string {
	switch s.Kind {
	case alarm.PuzzleMath:
		return "Solve the math problem!"
	case alarm.PuzzleRetype:
		return "Retype the text exactly!"
	case alarm.PuzzleShake:
		return "Shake it vigorously!"
	case alarm.PuzzleMemory:
		return "Find all the matching pairs!"
	case alarm.PuzzleColorMatch:
		return "Pick the button with the correct color name!"
	}
	return ""
}

// Solved reports whether the challenge has been won.
func (s *Session) Solved() bool {
	switch s.Kind {
	case alarm.PuzzleMath:
		return s.Math.solved
	case alarm.PuzzleRetype:
		return s.Retype.solved
	case alarm.PuzzleShake:
		return s.Shake.Done()
	case alarm.PuzzleMemory:
		return s.Memory.Solved()
	case alarm.PuzzleColorMatch:
		return s.ColorMatch.solved
	}
	return false
}

// Close disposes the session. Input fed to a closed session is ignored and
// never changes its state.
func (s *Session) Close() {
	switch s.Kind {
	case alarm.PuzzleMath:
		s.Math.closed = true
	case alarm.PuzzleRetype:
		s.Retype.closed = true
	case alarm.PuzzleShake:
		s.Shake.closed = true
	case alarm.PuzzleMemory:
		s.Memory.closed = true
	case alarm.PuzzleColorMatch:
		s.ColorMatch.closed = true
	}
}
