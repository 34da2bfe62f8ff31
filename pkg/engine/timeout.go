package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chazu/polymesh/pkg/graph"
)

// EvalTimeout is the default limit for a single evaluation.
const EvalTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when an evaluation runs past its limit.
	ErrTimeout = errors.New("evaluation timed out")

	// ErrSuperseded is returned to a caller whose evaluation finished
	// after a newer one had started.
	ErrSuperseded = errors.New("evaluation superseded by newer request")
)

type evalResult struct {
	scene  *graph.Scene
	errors []EvalError
	err    error
}

// await blocks until ch delivers, ctx ends, or the result of generation
// gen turns out to be stale. An abandoned evaluation keeps running in its
// goroutine; whatever it sends later lands in the buffered channel and is
// dropped.
func (e *Engine) await(ctx context.Context, ch <-chan evalResult, gen uint64) (*graph.Scene, []EvalError, error) {
	select {
	case res := <-ch:
		if !e.isCurrent(gen) {
			return nil, nil, ErrSuperseded
		}
		return res.scene, res.errors, res.err

	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			if d, ok := ctx.Deadline(); ok {
				return nil, nil, fmt.Errorf("%w (deadline %s)", ErrTimeout, d.Format("15:04:05.000"))
			}
			return nil, nil, ErrTimeout
		}
		return nil, nil, fmt.Errorf("evaluation cancelled: %w", ctx.Err())
	}
}

func (e *Engine) isCurrent(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return gen == e.generation
}
