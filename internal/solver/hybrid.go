package solver

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"

	"routeopt/internal/model"
)

// hybrid runs a configurable set of construction algorithms concurrently
// against the same inputs, scores every successful result on the shared
// weighted objective, and returns the best. A sub-algorithm failure is
// logged and excluded; the hybrid itself fails only when every candidate
// does.
type hybrid struct{}

func (hybrid) Name() string { return AlgHybrid }

func (h hybrid) Solve(ctx context.Context, p *Problem) (model.SolutionResult, error) {
	names := p.Tuning.HybridAlgorithms
	algs := make([]Algorithm, 0, len(names))
	for _, name := range names {
		if name == AlgHybrid {
			return model.SolutionResult{}, fmt.Errorf("%w: hybrid cannot run itself", ErrInvalidConfiguration)
		}
		alg, err := New(name)
		if err != nil {
			return model.SolutionResult{}, err
		}
		algs = append(algs, alg)
	}

	// Derive per-algorithm seeds from the parent source up front so the
	// outcome is deterministic for a fixed seed regardless of goroutine
	// scheduling.
	rng := p.rng()
	seeds := make([]int64, len(algs))
	for i := range seeds {
		seeds[i] = rng.Int63()
	}

	type outcome struct {
		res model.SolutionResult
		err error
	}
	outcomes := make([]outcome, len(algs))
	var wg sync.WaitGroup
	for i, alg := range algs {
		wg.Add(1)
		go func(i int, alg Algorithm) {
			defer wg.Done()
			sub := *p // copy; sub-algorithms share no mutable state
			sub.Rand = rand.New(rand.NewSource(seeds[i]))
			res, err := alg.Solve(ctx, &sub)
			outcomes[i] = outcome{res: res, err: err}
		}(i, alg)
	}
	wg.Wait()

	bestIdx := -1
	bestScore := 0.0
	for i, out := range outcomes {
		if out.err != nil {
			log.Printf("warn: hybrid candidate %s failed: %v", algs[i].Name(), out.err)
			continue
		}
		score := Score(out.res, p.Objective)
		if bestIdx < 0 || score > bestScore {
			bestIdx = i
			bestScore = score
		}
	}
	if bestIdx < 0 {
		return model.SolutionResult{}, ErrAllAlgorithmsFailed
	}
	res := outcomes[bestIdx].res
	res.SelectedAlgorithm = res.Algorithm
	res.Algorithm = AlgHybrid
	return res, nil
}
