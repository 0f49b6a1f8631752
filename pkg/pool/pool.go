package pool

import (
	"context"
	"sync"
)

// Result pairs a task's output with its error. Results arrive as tasks
// complete; there is no ordering guarantee between them.
type Result[T any] struct {
	Index int
	Value T
	Err   error
}

// Map runs fn over items with at most workers goroutines and returns one
// Result per item. A failed item never aborts its siblings. Cancellation
// is cooperative: once ctx is done, queued items are returned with
// ctx.Err() and in-flight calls run to completion.
func Map[In, Out any](ctx context.Context, workers int, items []In, fn func(context.Context, In) (Out, error)) []Result[Out] {
	if workers <= 0 {
		workers = 1
	}
	if workers > len(items) {
		workers = len(items)
	}

	results := make([]Result[Out], len(items))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := ctx.Err(); err != nil {
					results[i] = Result[Out]{Index: i, Err: err}
					continue
				}
				v, err := fn(ctx, items[i])
				results[i] = Result[Out]{Index: i, Value: v, Err: err}
			}
		}()
	}

	for i := range items {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}
