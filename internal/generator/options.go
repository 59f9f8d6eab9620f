package generator

// Options configures battle placement.
type Options struct {
	SearchMargin int   // Radius of the disk each player's units are scattered in
	MaxAttempts  int   // Draws allowed per anchor or unit before giving up
	Seed         int64 // Seed for reproducible layouts (0 = random)
}

// DefaultOptions returns standard placement options.
func DefaultOptions() *Options {
	return &Options{
		SearchMargin: DefaultSearchMargin,
		MaxAttempts:  DefaultMaxAttempts,
		Seed:         0,
	}
}
