package clock

import "time"

// FakeClock is a Clock pinned to a fixed instant, moved only by Advance.
// Tests use it to cross day boundaries and idle deadlines deterministically.
type FakeClock struct {
	now time.Time
}

// NewFakeClock returns a FakeClock pinned to t, normalized to UTC.
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{now: t.UTC()}
}

func (c *FakeClock) Now() time.Time {
	return c.now
}

// Advance moves the fake time forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
