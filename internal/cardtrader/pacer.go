package cardtrader

import "time"

// Pacer enforces the minimum spacing between marketplace calls. It tracks the
// client's own previous call only, so it is correct within a single
// sequential scan loop and NOT safe for concurrent use; the reconciler calls
// the client from exactly one goroutine per tick.
type Pacer struct {
	interval time.Duration
	lastCall time.Time
	now      func() time.Time
	sleep    func(time.Duration)
}

// NewPacer creates a pacer with the given minimum interval between calls.
func NewPacer(interval time.Duration) *Pacer {
	return &Pacer{
		interval: interval,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// newPacerWithClock is the test constructor with an injected clock.
func newPacerWithClock(interval time.Duration, now func() time.Time, sleep func(time.Duration)) *Pacer {
	return &Pacer{interval: interval, now: now, sleep: sleep}
}

// Wait blocks until at least the configured interval has elapsed since the
// previous call, then records the current call time.
func (p *Pacer) Wait() {
	if !p.lastCall.IsZero() {
		elapsed := p.now().Sub(p.lastCall)
		if remaining := p.interval - elapsed; remaining > 0 {
			p.sleep(remaining)
		}
	}
	p.lastCall = p.now()
}
