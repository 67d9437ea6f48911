package funique

import "time"

// Pacer inserts short sleeps during long runs to ease CPU and I/O pressure.
// It sleeps after every Every ticks, and also when Interval of wall-clock
// time has passed since the last sleep. A zero Pacer never sleeps.
type Pacer struct {
	Every    int
	Interval time.Duration
	Sleep    time.Duration

	sleepFunc func(time.Duration)
	nowFunc   func() time.Time

	ticks     int
	lastPause time.Time
	pauses    int
}

// NewPacer creates a pacer using the real clock
func NewPacer(every int, interval, sleep time.Duration) *Pacer {
	return &Pacer{
		Every:     every,
		Interval:  interval,
		Sleep:     sleep,
		sleepFunc: time.Sleep,
		nowFunc:   time.Now,
	}
}

// NoPacer returns a pacer that never sleeps
func NoPacer() *Pacer {
	return &Pacer{}
}

// WithSleepFunc replaces the sleep function, for tests
func (p *Pacer) WithSleepFunc(sleep func(time.Duration)) *Pacer {
	p.sleepFunc = sleep
	return p
}

// WithClock replaces the wall clock, for tests
func (p *Pacer) WithClock(now func() time.Time) *Pacer {
	p.nowFunc = now
	return p
}

// Enabled returns true if the pacer can ever sleep
func (p *Pacer) Enabled() bool {
	return p != nil && p.Sleep > 0 && (p.Every > 0 || p.Interval > 0)
}

// Tick records one unit of work and sleeps if due
func (p *Pacer) Tick() {
	if !p.Enabled() {
		return
	}
	p.ticks++

	due := p.Every > 0 && p.ticks%p.Every == 0
	if !due && p.Interval > 0 {
		now := p.now()
		if p.lastPause.IsZero() {
			p.lastPause = now
		} else if now.Sub(p.lastPause) >= p.Interval {
			due = true
		}
	}
	if !due {
		return
	}

	if p.sleepFunc != nil {
		p.sleepFunc(p.Sleep)
	} else {
		time.Sleep(p.Sleep)
	}
	p.pauses++
	p.lastPause = p.now()
}

// Pauses returns how many times the pacer has slept
func (p *Pacer) Pauses() int {
	if p == nil {
		return 0
	}
	return p.pauses
}

func (p *Pacer) now() time.Time {
	if p.nowFunc != nil {
		return p.nowFunc()
	}
	return time.Now()
}
