package schedule

import (
	"sort"
	"sync"
	"time"
)

// FireFunc is invoked on the timer goroutine when a wake-up fires.
type FireFunc func(id int)

// TimerPlatform is an in-process Platform. Each alarm id owns at most one
// time.Timer; registrations do not survive the process.
type TimerPlatform struct {
	mu      sync.Mutex
	timers  map[int]*armedTimer
	fire    FireFunc
	now     func() time.Time
	denied  bool
	nextGen uint64
}

type armedTimer struct {
	timer *time.Timer
	at    time.Time
	gen   uint64
}

var _ Platform = (*TimerPlatform)(nil)

// NewTimerPlatform creates a platform that calls fire when a wake-up is due.
func NewTimerPlatform(fire FireFunc) *TimerPlatform {
	return &TimerPlatform{
		timers: make(map[int]*armedTimer),
		fire:   fire,
		now:    time.Now,
	}
}

// OnFire replaces the fire callback. Wake-ups already armed use the new
// callback when they fire.
func (p *TimerPlatform) OnFire(fire FireFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fire = fire
}

// SetExactAllowed toggles the exact-alarm permission.
func (p *TimerPlatform) SetExactAllowed(allowed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.denied = !allowed
}

func (p *TimerPlatform) CanScheduleExact() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.denied
}

func (p *TimerPlatform) SetExact(id int, at time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if prev, ok := p.timers[id]; ok {
		prev.timer.Stop()
	}

	p.nextGen++
	gen := p.nextGen
	delay := at.Sub(p.now())
	if delay < 0 {
		delay = 0
	}

	p.timers[id] = &armedTimer{
		at:    at,
		gen:   gen,
		timer: time.AfterFunc(delay, func() { p.deliver(id, gen) }),
	}
	return nil
}

func (p *TimerPlatform) Cancel(id int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	t, ok := p.timers[id]
	if !ok {
		return false
	}
	t.timer.Stop()
	delete(p.timers, id)
	return true
}

// deliver runs on the timer goroutine. A registration replaced or canceled
// after its timer started firing is dropped.
func (p *TimerPlatform) deliver(id int, gen uint64) {
	p.mu.Lock()
	t, ok := p.timers[id]
	if !ok || t.gen != gen {
		p.mu.Unlock()
		return
	}
	delete(p.timers, id)
	fire := p.fire
	p.mu.Unlock()

	if fire != nil {
		fire(id)
	}
}

// NextFor returns the instant armed for id.
func (p *TimerPlatform) NextFor(id int) (time.Time, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	t, ok := p.timers[id]
	if !ok {
		return time.Time{}, false
	}
	return t.at, true
}

// Pending returns the armed ids in ascending order.
func (p *TimerPlatform) Pending() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]int, 0, len(p.timers))
	for id := range p.timers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Stop disarms every wake-up.
func (p *TimerPlatform) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, t := range p.timers {
		t.timer.Stop()
		delete(p.timers, id)
	}
}
