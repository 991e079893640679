// Package recompile is the top-level driver: it wires the registerizer,
// the optimization pipeline, and the lowerer into the single entry point
// spec.md §4.G describes (compile(code_object) -> bytes), and layers on
// the optional collaborators a real build farm needs around that pure
// core — a content-addressed cache and a durable compile ledger — as
// functional options, matching the teacher's vm.Option pattern
// (vm.New(main, options...)).
package recompile

import (
	"context"
	"fmt"
	"time"

	"github.com/deepnoodle-ai/regcore/bytecode"
	"github.com/deepnoodle-ai/regcore/cache"
	"github.com/deepnoodle-ai/regcore/errz"
	"github.com/deepnoodle-ai/regcore/ir"
	"github.com/deepnoodle-ai/regcore/ledger"
	"github.com/deepnoodle-ai/regcore/lower"
	"github.com/deepnoodle-ai/regcore/op"
	"github.com/deepnoodle-ai/regcore/passes"
	"github.com/deepnoodle-ai/regcore/registerize"
	"github.com/deepnoodle-ai/regcore/symstack"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"
)

// Driver holds the optional collaborators (cache, ledger, logger) and
// resource-limit configuration shared across many Compile calls. It is
// safe for concurrent use: Compile allocates a fresh Program and
// SymStack per call (spec.md §5, "no state is shared"), and cache/ledger
// clients are themselves safe for concurrent use by their own contract.
type Driver struct {
	maxStack  int
	maxFrames int
	cache     cache.Store
	ledger    ledger.Ledger
	logger    zerolog.Logger
}

// New constructs a Driver. With no options, it has no cache, no ledger,
// discards its logs, and enforces the compile-time-constant resource
// limits (symstack.MaxStack, symstack.MaxFrames).
func New(opts ...Option) (*Driver, error) {
	d := defaultDriver()
	for _, opt := range opts {
		opt(d)
	}
	if d.maxStack <= 0 || d.maxStack > symstack.MaxStack {
		return nil, errz.Invariantf("recompile: requested max stack %d out of range (1..%d)", d.maxStack, symstack.MaxStack)
	}
	if d.maxFrames <= 0 || d.maxFrames > symstack.MaxFrames {
		return nil, errz.Invariantf("recompile: requested max frames %d out of range (1..%d)", d.maxFrames, symstack.MaxFrames)
	}
	return d, nil
}

// Result is the outcome of one Compile call.
type Result struct {
	Name          string
	CompilationID uuid.UUID
	Digest        cache.Digest
	Bytes         []byte
	Cached        bool
	Err           error
}

// Compile runs src through the registerizer, the fixed optimization
// pipeline, and the lowerer, returning the wire-exact register-machine
// byte buffer (spec.md §4.G). A cache hit skips straight to the cached
// bytes; a successful miss populates the cache before returning. Every
// call writes exactly one ledger entry when a Ledger is configured.
func (d *Driver) Compile(ctx context.Context, src *bytecode.SourceCode) (*Result, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("recompile: generating compilation id: %w", err)
	}
	digest := cache.NewDigest(src.CodeBytes(), src.NumConsts(), src.NumLocals())
	logger := d.logger.With().Str("compilation_id", id.String()).Str("digest", digest.String()).Logger()

	if d.cache != nil {
		if buf, ok, err := d.cache.Get(ctx, digest); err != nil {
			logger.Warn().Err(err).Msg("cache lookup failed, compiling")
		} else if ok {
			logger.Debug().Msg("cache hit")
			d.record(ctx, id, digest, ledger.OutcomeSuccess, "")
			return &Result{Name: src.Name(), CompilationID: id, Digest: digest, Bytes: buf, Cached: true}, nil
		}
	}

	buf, err := compile(src, d.maxStack, d.maxFrames)
	if err != nil {
		logger.Error().Err(err).Msg("compile failed")
		d.record(ctx, id, digest, ledger.OutcomeFailure, err.Error())
		return nil, err
	}

	if d.cache != nil {
		if err := d.cache.Put(ctx, digest, buf); err != nil {
			logger.Warn().Err(err).Msg("cache write failed")
		}
	}
	logger.Debug().Msg("compiled")
	d.record(ctx, id, digest, ledger.OutcomeSuccess, "")
	return &Result{Name: src.Name(), CompilationID: id, Digest: digest, Bytes: buf}, nil
}

func (d *Driver) record(ctx context.Context, id uuid.UUID, digest cache.Digest, outcome ledger.Outcome, diagnostic string) {
	if d.ledger == nil {
		return
	}
	entry := ledger.Entry{
		CompilationID:      id,
		Digest:             digest.String(),
		Outcome:            outcome,
		OpcodeTableVersion: op.TableVersion,
		CompiledAt:         time.Now(),
		Diagnostic:         diagnostic,
	}
	if err := d.ledger.Record(ctx, entry); err != nil {
		d.logger.Warn().Err(err).Str("compilation_id", id.String()).Msg("ledger write failed")
	}
}

// compile is the pure core spec.md §4.G describes, with no I/O and no
// shared state: construct Program, construct an empty SymStack bounded by
// the caller's checked thresholds, walk the source, optimize, lower.
func compile(src *bytecode.SourceCode, maxStack, maxFrames int) ([]byte, error) {
	prog := ir.NewProgram(int(src.NumConsts()), int(src.NumLocals()))
	stack, err := symstack.NewWithLimits(maxStack, maxFrames)
	if err != nil {
		return nil, err
	}
	if _, err := registerize.Registerize(prog, src, stack, 0); err != nil {
		return nil, err
	}
	passes.Optimize(prog)
	return lower.Lower(prog)
}

// Compile is the package-level convenience form of spec.md §4.G's
// `compile(code_object) -> bytes`: it builds a one-shot Driver from opts
// and runs a single compilation.
func Compile(ctx context.Context, src *bytecode.SourceCode, opts ...Option) (*Result, error) {
	d, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return d.Compile(ctx, src)
}
