package engine

import "time"

// Clock supplies the current time. Injected so expiry behaviour can be
// driven deterministically in tests.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }
