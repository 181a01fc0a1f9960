package alarm

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Alarm is the persisted configuration of a single alarm.
type Alarm struct {
	ID            int        `json:"id"`
	Hour          int        `json:"hour"`
	Minute        int        `json:"minute"`
	Enabled       bool       `json:"isEnabled"`
	RecurringDays DaySet     `json:"recurringDays"`
	Puzzle        PuzzleType `json:"puzzleType"`
	Label         string     `json:"label"`
	Vibrate       bool       `json:"vibrate"`

	// RingtoneURI is nil for the default alarm sound.
	RingtoneURI *string `json:"ringtoneUri"`
}

// New returns an alarm with the defaults used when the user adds one.
func New(id int) Alarm {
	return Alarm{
		ID:      id,
		Hour:    7,
		Minute:  0,
		Enabled: true,
		Puzzle:  PuzzleMath,
		Vibrate: true,
	}
}

// UnmarshalJSON fills defaults for fields that older or newer records omit.
func (a *Alarm) UnmarshalJSON(b []byte) error {
	var w struct {
		ID            int        `json:"id"`
		Hour          int        `json:"hour"`
		Minute        int        `json:"minute"`
		Enabled       bool       `json:"isEnabled"`
		RecurringDays DaySet     `json:"recurringDays"`
		Puzzle        PuzzleType `json:"puzzleType"`
		Label         string     `json:"label"`
		Vibrate       *bool      `json:"vibrate"`
		RingtoneURI   *string    `json:"ringtoneUri"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	*a = Alarm{
		ID:            w.ID,
		Hour:          w.Hour,
		Minute:        w.Minute,
		Enabled:       w.Enabled,
		RecurringDays: w.RecurringDays,
		Puzzle:        w.Puzzle,
		Label:         w.Label,
		Vibrate:       true,
		RingtoneURI:   w.RingtoneURI,
	}
	if !a.Puzzle.Valid() {
		a.Puzzle = PuzzleMath
	}
	if w.Vibrate != nil {
		a.Vibrate = *w.Vibrate
	}
	return nil
}

// Validate checks that the alarm holds a valid local time and puzzle.
func (a Alarm) Validate() error {
	if a.Hour < 0 || a.Hour > 23 {
		return &ValidationError{Field: "hour", Value: a.Hour, Err: ErrOutOfRange}
	}
	if a.Minute < 0 || a.Minute > 59 {
		return &ValidationError{Field: "minute", Value: a.Minute, Err: ErrOutOfRange}
	}
	if !a.Puzzle.Valid() {
		return &ValidationError{Field: "puzzle type", Value: a.Puzzle, Err: fmt.Errorf("unknown")}
	}
	return nil
}

// MinuteOfDay is the sort key for the alarm list.
func (a Alarm) MinuteOfDay() int {
	return a.Hour*60 + a.Minute
}

// TimeString formats the alarm time as HH:MM.
func (a Alarm) TimeString() string {
	return fmt.Sprintf("%02d:%02d", a.Hour, a.Minute)
}

// Title is the label, or "Alarm" when the label is empty.
func (a Alarm) Title() string {
	if strings.TrimSpace(a.Label) == "" {
		return "Alarm"
	}
	return a.Label
}

// Ringtone returns the configured ringtone reference or "" for the default.
func (a Alarm) Ringtone() string {
	if a.RingtoneURI == nil {
		return ""
	}
	return *a.RingtoneURI
}

// RecurringDaysText renders the recurring days for the list screen.
func (a Alarm) RecurringDaysText() string {
	if !a.Enabled || a.RecurringDays.Len() == 0 {
		return "Not scheduled"
	}
	if a.RecurringDays.Len() == 7 {
		return "Every day"
	}
	days := a.RecurringDays.Days()
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = d.Short()
	}
	return strings.Join(names, ", ")
}

// ParseClock parses "H:MM" or "HH:MM" into hour and minute.
func ParseClock(s string) (hour, minute int, err error) {
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d:%d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("parse time %q: want HH:MM", s)
	}
	a := Alarm{Hour: hour, Minute: minute, Puzzle: PuzzleMath}
	if err := a.Validate(); err != nil {
		return 0, 0, err
	}
	return hour, minute, nil
}

// SortByTime orders alarms by time of day, keeping insertion order for ties.
func SortByTime(alarms []Alarm) {
	sort.SliceStable(alarms, func(i, j int) bool {
		return alarms[i].MinuteOfDay() < alarms[j].MinuteOfDay()
	})
}

// NextID returns max(id)+1, or 1 for an empty list.
func NextID(alarms []Alarm) int {
	max := 0
	for _, a := range alarms {
		if a.ID > max {
			max = a.ID
		}
	}
	return max + 1
}

// Find returns the alarm with the given id.
func Find(alarms []Alarm, id int) (Alarm, bool) {
	for _, a := range alarms {
		if a.ID == id {
			return a, true
		}
	}
	return Alarm{}, false
}
