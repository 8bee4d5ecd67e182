package orchestrator

// indexedResult tags a fan-out task's result with the slot it was launched
// for. Duplicated from pkg/phaserunner/pkg/docloop rather than shared — see
// those packages' DESIGN.md notes; orchestrator only needs this once, for
// leader election, which spec §4.4 treats as a session-level concern
// distinct from the per-phase fan-outs pkg/phaserunner owns.
type indexedResult[T any] struct {
	index int
	value T
	err   error
}

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
