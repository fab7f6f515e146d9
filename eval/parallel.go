package eval

import (
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// workerPool bounds optional parallel sub-evaluation: the concurrent
// brace form (which forks an environment per child) and the arguments of
// ≥4-argument Pure grounded operators (evaluated against the caller's
// environment) run through this pool rather than spawning one goroutine
// per child unconditionally.
type workerPool struct {
	sem *semaphore.Weighted
}

func newWorkerPool(capacity int64) *workerPool {
	return &workerPool{sem: semaphore.NewWeighted(capacity)}
}

// run invokes work(i) for every i in [0, n) and waits for all of them to
// finish. Each index gets a pool slot if one is free right now and runs
// inline on the calling goroutine otherwise. A worker that recursively
// enters run therefore degrades to sequential evaluation instead of
// blocking on a slot its own ancestors hold — nested concurrent forms
// can never starve the pool into a deadlock. run does not recover panics:
// a panic in a worker on its own goroutine is not carried back to the
// caller.
func (wp *workerPool) run(n int, work func(i int)) {
	var g errgroup.Group
	for i := 0; i < n; i++ {
		if !wp.sem.TryAcquire(1) {
			work(i)
			continue
		}
		i := i
		g.Go(func() error {
			defer wp.sem.Release(1)
			work(i)
			return nil
		})
	}
	_ = g.Wait()
}
