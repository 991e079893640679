package recompile

import (
	"context"
	"fmt"
	"sync"

	"github.com/deepnoodle-ai/regcore/bytecode"
	"github.com/hashicorp/go-multierror"
)

// CompileBatch compiles every code object independently and
// concurrently, matching spec.md §5's claim that "multiple compilations
// may run in parallel provided each has its own Program and SymStack" —
// the property that makes handing each item its own goroutine safe. It
// never aborts early: every item gets a Result (with Err set on
// failure), and the second return value aggregates every failure into a
// *multierror.Error so a caller can log or fail the whole batch without
// losing which items succeeded.
func CompileBatch(ctx context.Context, codes []*bytecode.SourceCode, opts ...Option) ([]Result, error) {
	d, err := New(opts...)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(codes))
	var mu sync.Mutex
	var errs *multierror.Error

	var wg sync.WaitGroup
	for i, src := range codes {
		wg.Add(1)
		go func(idx int, src *bytecode.SourceCode) {
			defer wg.Done()
			res, err := d.Compile(ctx, src)
			if err != nil {
				mu.Lock()
				errs = multierror.Append(errs, fmt.Errorf("%s: %w", src.Name(), err))
				mu.Unlock()
				results[idx] = Result{Name: src.Name(), Err: err}
				return
			}
			results[idx] = *res
		}(i, src)
	}
	wg.Wait()

	if errs != nil {
		return results, errs
	}
	return results, nil
}
