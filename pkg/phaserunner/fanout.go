package phaserunner

// indexedResult carries a fan-out task's result tagged with the slot it was
// launched for, so the join step can restore deterministic order instead of
// trusting channel arrival order.
type indexedResult[T any] struct {
	index int
	value T
	err   error
}

// fanOut launches one goroutine per i in [0,n), each running task(i), and
// blocks until every goroutine has sent its result. Results are returned
// indexed by i, never by completion order — spec §4.4/§9 require seconding
// and voting responses to be emitted in turn order, not arrival order, and
// the blind-voting invariant requires every ballot to be collected before
// any is observed. The first error encountered is returned; callers treat
// any fan-out error as fatal to the session, the same as a transport error
// from a single completeJson call.
func fanOut[T any](n int, task func(i int) (T, error)) ([]T, error) {
	ch := make(chan indexedResult[T], n)
	for i := 0; i < n; i++ {
		go func(i int) {
			v, err := task(i)
			ch <- indexedResult[T]{index: i, value: v, err: err}
		}(i)
	}

	results := make([]T, n)
	var firstErr error
	for k := 0; k < n; k++ {
		r := <-ch
		if r.err != nil && firstErr == nil {
			firstErr = r.err
		}
		results[r.index] = r.value
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}
