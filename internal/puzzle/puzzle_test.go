package puzzle

import (
	"errors"
	"math/rand/v2"
	"strconv"
	"testing"
	"time"

	"github.com/abhisek/puzzlealarm/internal/alarm"
)

func testRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func TestNewSessionEveryKind(t *testing.T) {
	for _, kind := range alarm.AllPuzzleTypes() {
		t.Run(string(kind), func(t *testing.T) {
			s, err := NewSession(kind, testRNG(1))
			if err != nil {
				t.Fatalf("NewSession: %v", err)
			}
			if s.ID == "" {
				t.Error("session id must be set")
			}
			if s.Instruction() == "" {
				t.Error("missing instruction")
			}
			set := 0
			for _, v := range []bool{s.Math != nil, s.Retype != nil, s.Shake != nil, s.Memory != nil, s.ColorMatch != nil} {
				if v {
					set++
				}
			}
			if set != 1 {
				t.Errorf("%d variants set, want exactly 1", set)
			}
			if s.Solved() {
				t.Error("fresh session must not be solved")
			}
		})
	}
}

func TestNewSessionUnknownKind(t *testing.T) {
	if _, err := NewSession(alarm.PuzzleType("CHESS"), testRNG(1)); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestMathOperandRange(t *testing.T) {
	m := NewMath(testRNG(2))
	for i := 0; i < 500; i++ {
		if m.A < 10 || m.A >= 100 || m.B < 10 || m.B >= 100 {
			t.Fatalf("operands out of range: %d, %d", m.A, m.B)
		}
		m.Attempt("wrong")
	}
}

func TestMathSolvedIffSum(t *testing.T) {
	rng := testRNG(3)
	for i := 0; i < 200; i++ {
		m := NewMath(rng)
		sum := m.A + m.B

		if got := m.Attempt(strconv.Itoa(sum + 1)); got != Retry {
			t.Fatalf("wrong sum returned %v", got)
		}
		sum = m.A + m.B
		if got := m.Attempt(strconv.Itoa(sum)); got != Solved {
			t.Fatalf("exact sum returned %v", got)
		}
	}
}

func TestMathFailureRedraws(t *testing.T) {
	m := NewMath(testRNG(4))
	changed := false
	for i := 0; i < 20; i++ {
		a, b := m.A, m.B
		if m.Attempt("") != Retry {
			t.Fatal("empty input must fail")
		}
		if m.A != a || m.B != b {
			changed = true
		}
	}
	if !changed {
		t.Error("operands never changed after failures")
	}
}

func TestMathNonNumericIsFailure(t *testing.T) {
	m := NewMath(testRNG(5))
	for _, in := range []string{"abc", "1 2", "", "-", "12.5"} {
		if m.Attempt(in) != Retry {
			t.Errorf("Attempt(%q) should be Retry", in)
		}
	}
}

func TestRetypeTarget(t *testing.T) {
	r := NewRetype(testRNG(6))
	if len(r.Target) != 6 {
		t.Fatalf("target length = %d, want 6", len(r.Target))
	}
	for _, c := range r.Target {
		ok := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
		if !ok {
			t.Fatalf("unexpected character %q", c)
		}
	}
}

func TestRetypeExactMatch(t *testing.T) {
	r := NewRetype(testRNG(7))
	target := r.Target

	swapCase := []byte(target)
	for i, c := range swapCase {
		switch {
		case c >= 'a' && c <= 'z':
			swapCase[i] = c - 32
		case c >= 'A' && c <= 'Z':
			swapCase[i] = c + 32
		}
	}

	wrong := []string{target + " ", " " + target, target[:5], target + "x"}
	if string(swapCase) != target {
		wrong = append(wrong, string(swapCase))
	}
	for _, in := range wrong {
		if r.Attempt(in) != Retry {
			t.Errorf("Attempt(%q) should fail", in)
		}
		if r.Target != target {
			t.Fatal("target must not change across retries")
		}
	}
	if r.Attempt(target) != Solved {
		t.Error("exact target should solve")
	}
}

func shakeAt(base time.Time, ms int, g float64) Sample {
	return Sample{Z: g * StandardGravity, At: base.Add(time.Duration(ms) * time.Millisecond)}
}

func TestShakeCountsQualifyingSamples(t *testing.T) {
	base := time.Date(2026, 1, 1, 7, 0, 0, 0, time.UTC)
	s := NewShake()

	tests := []struct {
		ms      int
		g       float64
		counted bool
	}{
		{0, 1.0, false},   // resting
		{10, 1.99, false}, // just under threshold
		{20, 2.5, true},   // first qualifying always counts
		{100, 3.0, false}, // 80ms after last counted
		{169, 3.0, false}, // 149ms
		{170, 3.0, true},  // exactly 150ms
		{200, 1.5, false},
		{400, 2.1, true},
	}
	for _, tt := range tests {
		got, _ := s.Feed(shakeAt(base, tt.ms, tt.g))
		if got != tt.counted {
			t.Errorf("sample at %dms (%.1fg): counted = %v, want %v", tt.ms, tt.g, got, tt.counted)
		}
	}
	if s.Count != 3 {
		t.Errorf("Count = %d, want 3", s.Count)
	}
}

func TestShakeSolvedExactlyOnce(t *testing.T) {
	base := time.Date(2026, 1, 1, 7, 0, 0, 0, time.UTC)
	s := NewShake()
	solvedReports := 0
	prev := 0
	for i := 0; i < 30; i++ {
		_, solved := s.Feed(shakeAt(base, i*200, 3))
		if solved {
			solvedReports++
			if s.Count != ShakeTarget {
				t.Errorf("solved at count %d, want %d", s.Count, ShakeTarget)
			}
		}
		if s.Count < prev {
			t.Fatal("progress decreased")
		}
		prev = s.Count
	}
	if solvedReports != 1 {
		t.Errorf("solved reported %d times, want 1", solvedReports)
	}
	if s.Progress() != 1 {
		t.Errorf("Progress = %v, want 1", s.Progress())
	}
}

func TestMemoryDeck(t *testing.T) {
	m := NewMemory(testRNG(8))
	if len(m.Cards) != 12 {
		t.Fatalf("deck size = %d, want 12", len(m.Cards))
	}
	counts := map[string]int{}
	for _, c := range m.Cards {
		counts[c.Symbol]++
		if c.State != FaceDown {
			t.Error("cards start face down")
		}
	}
	if len(counts) != 6 {
		t.Fatalf("distinct symbols = %d, want 6", len(counts))
	}
	for sym, n := range counts {
		if n != 2 {
			t.Errorf("symbol %s appears %d times", sym, n)
		}
	}
}

// pairIndexes groups card positions by symbol.
func pairIndexes(m *Memory) map[string][]int {
	out := map[string][]int{}
	for i, c := range m.Cards {
		out[c.Symbol] = append(out[c.Symbol], i)
	}
	return out
}

func TestMemoryThirdTapRejected(t *testing.T) {
	m := NewMemory(testRNG(9))
	pairs := pairIndexes(m)
	a := pairs[MemorySymbols[0]][0]
	b := pairs[MemorySymbols[1]][0]
	c := pairs[MemorySymbols[2]][0]

	if res, err := m.Tap(a); err != nil || res != TapFlipped {
		t.Fatalf("first tap: %v, %v", res, err)
	}
	if res, err := m.Tap(b); err != nil || res != TapPairReady {
		t.Fatalf("second tap: %v, %v", res, err)
	}
	if _, err := m.Tap(c); !errors.Is(err, ErrBusy) {
		t.Fatalf("third tap err = %v, want ErrBusy", err)
	}
	if m.Cards[c].State != FaceDown {
		t.Error("rejected tap must not flip the card")
	}

	matched, solved := m.Evaluate()
	if matched || solved {
		t.Error("different symbols must not match")
	}
	if m.Cards[a].State != FaceDown || m.Cards[b].State != FaceDown {
		t.Error("mismatched pair flips back")
	}
	if _, err := m.Tap(c); err != nil {
		t.Errorf("tap after evaluation: %v", err)
	}
}

func TestMemoryTapErrors(t *testing.T) {
	m := NewMemory(testRNG(10))
	pairs := pairIndexes(m)
	p := pairs[MemorySymbols[0]]

	if _, err := m.Tap(-1); !errors.Is(err, ErrNoCard) {
		t.Errorf("Tap(-1) err = %v", err)
	}
	if _, err := m.Tap(12); !errors.Is(err, ErrNoCard) {
		t.Errorf("Tap(12) err = %v", err)
	}

	_, _ = m.Tap(p[0])
	if _, err := m.Tap(p[0]); !errors.Is(err, ErrCardFaceUp) {
		t.Errorf("re-tap err = %v, want ErrCardFaceUp", err)
	}
	_, _ = m.Tap(p[1])
	if matched, _ := m.Evaluate(); !matched {
		t.Fatal("same symbols must match")
	}
	if _, err := m.Tap(p[0]); !errors.Is(err, ErrCardMatched) {
		t.Errorf("tap matched err = %v, want ErrCardMatched", err)
	}
}

func TestMemorySolveAllPairs(t *testing.T) {
	m := NewMemory(testRNG(11))
	pairs := pairIndexes(m)
	solvedReports := 0
	for i, sym := range MemorySymbols {
		p := pairs[sym]
		_, _ = m.Tap(p[0])
		_, _ = m.Tap(p[1])
		matched, solved := m.Evaluate()
		if !matched {
			t.Fatalf("pair %s did not match", sym)
		}
		if solved {
			solvedReports++
			if i != len(MemorySymbols)-1 {
				t.Fatalf("solved early after %d pairs", i+1)
			}
		}
	}
	if solvedReports != 1 || !m.Solved() || m.MatchedCount() != 12 {
		t.Errorf("solved=%v reports=%d matched=%d", m.Solved(), solvedReports, m.MatchedCount())
	}
}

func TestMemoryEvaluateAfterCloseIgnored(t *testing.T) {
	s, err := NewSession(alarm.PuzzleMemory, testRNG(12))
	if err != nil {
		t.Fatal(err)
	}
	m := s.Memory
	p := pairIndexes(m)[MemorySymbols[0]]
	_, _ = m.Tap(p[0])
	_, _ = m.Tap(p[1])

	s.Close()
	if matched, _ := m.Evaluate(); matched {
		t.Error("evaluation after close must not apply")
	}
	if m.Cards[p[0]].State != FaceUp {
		t.Error("closed session state must not change")
	}
	if _, err := m.Tap(0); !errors.Is(err, ErrClosed) {
		t.Errorf("tap after close err = %v, want ErrClosed", err)
	}
}

func TestColorMatchDisplayNeverTarget(t *testing.T) {
	rng := testRNG(13)
	for i := 0; i < 200; i++ {
		c, err := NewColorMatch(rng, Palette)
		if err != nil {
			t.Fatal(err)
		}
		for j := 0; j < 10; j++ {
			if c.Display.Name == c.Target.Name {
				t.Fatalf("display color equals target %s", c.Target.Name)
			}
			c.Attempt("not-a-color")
		}
	}
}

func TestColorMatchButtons(t *testing.T) {
	c, err := NewColorMatch(testRNG(14), Palette)
	if err != nil {
		t.Fatal(err)
	}
	buttons := c.Buttons()
	if len(buttons) != len(Palette) {
		t.Fatalf("buttons = %d, want %d", len(buttons), len(Palette))
	}
	seen := map[string]bool{}
	for _, b := range buttons {
		seen[b.Name] = true
	}
	for _, p := range Palette {
		if !seen[p.Name] {
			t.Errorf("missing button %s", p.Name)
		}
	}
}

func TestColorMatchAttempt(t *testing.T) {
	c, err := NewColorMatch(testRNG(15), Palette)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Attempt(c.Display.Name); got != Retry {
		t.Fatal("pressing the display color should fail")
	}
	if got := c.Attempt(c.Target.Name); got != Solved {
		t.Fatal("pressing the target should solve")
	}
}

func TestColorMatchPaletteTooSmall(t *testing.T) {
	_, err := NewColorMatch(testRNG(16), Palette[:1])
	if !errors.Is(err, ErrPaletteTooSmall) {
		t.Fatalf("err = %v, want ErrPaletteTooSmall", err)
	}
	if _, err := NewColorMatch(testRNG(16), Palette[:2]); err != nil {
		t.Fatalf("two colors should be enough: %v", err)
	}
}

func TestClosedSessionIgnoresInput(t *testing.T) {
	s, _ := NewSession(alarm.PuzzleMath, testRNG(17))
	sum := s.Math.A + s.Math.B
	s.Close()
	if s.Math.Attempt(strconv.Itoa(sum)) != Retry {
		t.Error("closed session must not solve")
	}
	if s.Solved() {
		t.Error("closed session reported solved")
	}
}
