package grid

// DefaultMaxCells caps the number of cells a grid may allocate.
const DefaultMaxCells = 1 << 24

type buildOptions struct {
	maxCells int
}

// Option configures Build.
type Option func(*buildOptions)

// WithMaxCells limits the number of cells spanned by the populated bounds.
// Very flat point sets produce tiny cells; Build fails with a
// ConfigurationError instead of allocating an unbounded cell table.
// Values <= 0 select DefaultMaxCells.
func WithMaxCells(n int) Option {
	return func(o *buildOptions) {
		o.maxCells = n
	}
}

func applyOptions(optFns []Option) buildOptions {
	o := buildOptions{maxCells: DefaultMaxCells}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.maxCells <= 0 {
		o.maxCells = DefaultMaxCells
	}
	return o
}
