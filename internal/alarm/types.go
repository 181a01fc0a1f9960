package alarm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// PuzzleType identifies the challenge that must be solved to dismiss an alarm.
type PuzzleType string

const (
	PuzzleMath       PuzzleType = "MATH"
	PuzzleRetype     PuzzleType = "RETYPE"
	PuzzleShake      PuzzleType = "SHAKE"
	PuzzleMemory     PuzzleType = "MEMORY"
	PuzzleColorMatch PuzzleType = "COLOR_MATCH"
)

// AllPuzzleTypes returns every puzzle type in menu order.
func AllPuzzleTypes() []PuzzleType {
	return []PuzzleType{PuzzleMath, PuzzleRetype, PuzzleShake, PuzzleMemory, PuzzleColorMatch}
}

// DisplayName returns the human-readable name of the puzzle.
func (p PuzzleType) DisplayName() string {
	switch p {
	case PuzzleMath:
		return "Math Problem"
	case PuzzleRetype:
		return "Retype Text"
	case PuzzleShake:
		return "Shake Phone"
	case PuzzleMemory:
		return "Memory Pairs"
	case PuzzleColorMatch:
		return "Color Match"
	default:
		return string(p)
	}
}

// Valid reports whether p is one of the known puzzle types.
func (p PuzzleType) Valid() bool {
	for _, t := range AllPuzzleTypes() {
		if p == t {
			return true
		}
	}
	return false
}

// Next returns the puzzle type after p, wrapping around.
func (p PuzzleType) Next() PuzzleType {
	all := AllPuzzleTypes()
	for i, t := range all {
		if t == p {
			return all[(i+1)%len(all)]
		}
	}
	return PuzzleMath
}

// ParsePuzzleType accepts wire values ("COLOR_MATCH") and loose spellings
// ("color-match", "colormatch").
func ParsePuzzleType(s string) (PuzzleType, error) {
	norm := strings.ToUpper(strings.NewReplacer("-", "_", " ", "_").Replace(strings.TrimSpace(s)))
	if norm == "COLORMATCH" {
		norm = string(PuzzleColorMatch)
	}
	p := PuzzleType(norm)
	if !p.Valid() {
		return "", fmt.Errorf("unknown puzzle type %q", s)
	}
	return p, nil
}

// Weekday is a day of the week in canonical order, Sunday first.
type Weekday int

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

var weekdayNames = [...]string{"SUNDAY", "MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY"}

// AllWeekdays returns the seven days in canonical order.
func AllWeekdays() []Weekday {
	return []Weekday{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}
}

func (d Weekday) valid() bool { return d >= Sunday && d <= Saturday }

func (d Weekday) String() string {
	if !d.valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// Short returns the three-letter title-case name ("Mon").
func (d Weekday) Short() string {
	n := d.String()
	if !d.valid() {
		return n
	}
	return n[:1] + strings.ToLower(n[1:3])
}

// Letter returns the single-letter label used by the day selector.
func (d Weekday) Letter() string {
	return d.String()[:1]
}

// ParseWeekday parses a full or three-letter day name, case-insensitive.
func ParseWeekday(s string) (Weekday, error) {
	up := strings.ToUpper(strings.TrimSpace(s))
	for i, n := range weekdayNames {
		if up == n || (len(up) == 3 && strings.HasPrefix(n, up)) {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

// DaySet is a set of weekdays. The zero value is the empty set.
type DaySet uint8

// NewDaySet builds a set from the given days; duplicates collapse.
func NewDaySet(days ...Weekday) DaySet {
	var s DaySet
	for _, d := range days {
		if d.valid() {
			s |= 1 << uint(d)
		}
	}
	return s
}

// Has reports whether d is in the set.
func (s DaySet) Has(d Weekday) bool {
	return d.valid() && s&(1<<uint(d)) != 0
}

// Toggle returns the set with d added or removed.
func (s DaySet) Toggle(d Weekday) DaySet {
	if !d.valid() {
		return s
	}
	return s ^ (1 << uint(d))
}

// Len returns the number of days in the set.
func (s DaySet) Len() int {
	n := 0
	for _, d := range AllWeekdays() {
		if s.Has(d) {
			n++
		}
	}
	return n
}

// Days returns the members in canonical weekday order.
func (s DaySet) Days() []Weekday {
	var out []Weekday
	for _, d := range AllWeekdays() {
		if s.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

func (s DaySet) MarshalJSON() ([]byte, error) {
	names := make([]string, 0, s.Len())
	for _, d := range s.Days() {
		names = append(names, d.String())
	}
	return json.Marshal(names)
}

// UnmarshalJSON skips day names it does not recognise.
func (s *DaySet) UnmarshalJSON(b []byte) error {
	var names []string
	if err := json.Unmarshal(b, &names); err != nil {
		return err
	}
	var set DaySet
	for _, n := range names {
		d, err := ParseWeekday(n)
		if err != nil {
			continue
		}
		set |= NewDaySet(d)
	}
	*s = set
	return nil
}

// ValidationError describes an alarm field outside its allowed range.
type ValidationError struct {
	Field string
	Value any
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

var ErrOutOfRange = errors.New("out of range")
