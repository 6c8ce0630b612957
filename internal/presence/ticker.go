package presence

import "time"

// ticker wraps time.Ticker so a zero interval disables the channel instead
// of panicking.
type ticker struct {
	C <-chan time.Time
	t *time.Ticker
}

func newTicker(interval time.Duration) *ticker {
	if interval <= 0 {
		return &ticker{}
	}
	t := time.NewTicker(interval)
	return &ticker{C: t.C, t: t}
}

func (t *ticker) Stop() {
	if t.t != nil {
		t.t.Stop()
	}
}
