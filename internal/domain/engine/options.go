package engine

import "time"

// Option applies a configuration option to a Generate call.
type Option func(*options)

type options struct {
	seed      int64
	seeded    bool
	teamNames []string
	clock     func() time.Time
}

// WithSeed fixes the randomized-mode seed. Without it a time-derived seed is
// used and reported on the result.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
		o.seeded = true
	}
}

// WithTeamNames names teams by index. Missing or empty entries fall back to
// "Team N".
func WithTeamNames(names []string) Option {
	return func(o *options) {
		o.teamNames = append([]string(nil), names...)
	}
}

// WithClock replaces time.Now for timestamps and duration measurement.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}
