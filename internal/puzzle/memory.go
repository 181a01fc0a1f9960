package puzzle

import (
	"errors"
	"math/rand/v2"
	"time"
)

// RevealDelay is how long a selected pair stays face up before it is
// evaluated.
const RevealDelay = 800 * time.Millisecond

// MemorySymbols are the six card faces; each appears twice in a deck.
var MemorySymbols = []string{"♠", "♥", "★", "☁", "♦", "♪"}

var (
	// ErrBusy is returned for a tap while a pair is awaiting evaluation.
	ErrBusy = errors.New("pair pending evaluation")

	ErrCardMatched = errors.New("card already matched")
	ErrCardFaceUp  = errors.New("card already face up")
	ErrNoCard      = errors.New("no such card")
)

// CardState is the face of one card.
type CardState int

const (
	FaceDown CardState = iota
	FaceUp
	Matched
)

type Card struct {
	Symbol string
	State  CardState
}

// TapResult tells the host what to do after a successful tap.
type TapResult int

const (
	// TapFlipped means one card is face up and another tap is expected.
	TapFlipped TapResult = iota
	// TapPairReady means two cards are face up; the host should call
	// Evaluate after RevealDelay.
	TapPairReady
)

// Memory is a pairs game over a shuffled deck.
type Memory struct {
	Cards []Card

	selected []int
	closed   bool
}

func NewMemory(rng *rand.Rand) *Memory {
	cards := make([]Card, 0, 2*len(MemorySymbols))
	for _, s := range MemorySymbols {
		cards = append(cards, Card{Symbol: s}, Card{Symbol: s})
	}
	rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	return &Memory{Cards: cards}
}

// Tap turns card i face up.
func (m *Memory) Tap(i int) (TapResult, error) {
	switch {
	case m.closed:
		return TapFlipped, ErrClosed
	case i < 0 || i >= len(m.Cards):
		return TapFlipped, ErrNoCard
	case m.Pending():
		return TapFlipped, ErrBusy
	case m.Cards[i].State == Matched:
		return TapFlipped, ErrCardMatched
	case m.Cards[i].State == FaceUp:
		return TapFlipped, ErrCardFaceUp
	}

	m.Cards[i].State = FaceUp
	m.selected = append(m.selected, i)
	if m.Pending() {
		return TapPairReady, nil
	}
	return TapFlipped, nil
}

// Pending reports whether two cards await evaluation.
func (m *Memory) Pending() bool {
	return len(m.selected) == 2
}

// Evaluate resolves the pending pair: matching symbols become Matched,
// others flip back. It is a no-op when no pair is pending or the session
// has been closed.
func (m *Memory) Evaluate() (matched, solved bool) {
	if m.closed || !m.Pending() {
		return false, false
	}
	a, b := m.selected[0], m.selected[1]
	m.selected = m.selected[:0]

	if m.Cards[a].Symbol == m.Cards[b].Symbol {
		m.Cards[a].State = Matched
		m.Cards[b].State = Matched
		return true, m.Solved()
	}
	m.Cards[a].State = FaceDown
	m.Cards[b].State = FaceDown
	return false, false
}

// MatchedCount returns the number of matched cards.
func (m *Memory) MatchedCount() int {
	n := 0
	for _, c := range m.Cards {
		if c.State == Matched {
			n++
		}
	}
	return n
}

// Solved reports whether every card is matched.
func (m *Memory) Solved() bool {
	return m.MatchedCount() == len(m.Cards)
}
