package recompile

import (
	"io"

	"github.com/deepnoodle-ai/regcore/cache"
	"github.com/deepnoodle-ai/regcore/ledger"
	"github.com/deepnoodle-ai/regcore/logging"
	"github.com/deepnoodle-ai/regcore/symstack"
	"github.com/rs/zerolog"
)

// Option configures a Driver.
type Option func(*Driver)

// WithCache wires a content-addressed artifact cache: every Compile
// first checks the cache and, on a miss, populates it after a
// successful compilation.
func WithCache(store cache.Store) Option {
	return func(d *Driver) {
		d.cache = store
	}
}

// WithLedger wires a durable audit trail: every Compile call writes
// exactly one entry recording its outcome.
func WithLedger(l ledger.Ledger) Option {
	return func(d *Driver) {
		d.ledger = l
	}
}

// WithMaxStack sets the operator-configured symbolic-stack depth
// threshold. It must not exceed symstack.MaxStack, the compile-time
// array bound; New rejects a Driver configured above it rather than
// silently clamping.
func WithMaxStack(n int) Option {
	return func(d *Driver) {
		d.maxStack = n
	}
}

// WithMaxFrames sets the operator-configured loop-nesting depth
// threshold. It must not exceed symstack.MaxFrames.
func WithMaxFrames(n int) Option {
	return func(d *Driver) {
		d.maxFrames = n
	}
}

// WithLogger overrides the Driver's logger. The default logs nowhere
// (io.Discard).
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Driver) {
		d.logger = logger
	}
}

func defaultDriver() *Driver {
	return &Driver{
		maxStack:  symstack.MaxStack,
		maxFrames: symstack.MaxFrames,
		logger:    logging.New(io.Discard),
	}
}
