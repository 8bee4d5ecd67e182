package docloop

// indexedResult tags a fan-out task's result with the slot it was launched
// for, mirroring pkg/phaserunner's fanOut — duplicated rather than shared
// since the two packages have no other reason to depend on each other and
// the helper is small.
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
