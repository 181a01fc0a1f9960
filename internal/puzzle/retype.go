package puzzle

import "math/rand/v2"

const (
	retypeLength   = 6
	retypeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Retype asks for an exact copy of a random string. The target never
// changes for the life of the session.
type Retype struct {
	Target string

	solved bool
	closed bool
}

func NewRetype(rng *rand.Rand) *Retype {
	b := make([]byte, retypeLength)
	for i := range b {
		b[i] = retypeAlphabet[rng.IntN(len(retypeAlphabet))]
	}
	return &Retype{Target: string(b)}
}

// Attempt compares input byte for byte with the target.
func (r *Retype) Attempt(input string) Outcome {
	if r.closed {
		return Retry
	}
	if r.solved || input == r.Target {
		r.solved = true
		return Solved
	}
	return Retry
}
