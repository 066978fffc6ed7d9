// Package fanout runs read-only scatter/gather scans over a snapshot.
// One worker per top-level partition; the dispatching call joins all
// workers before returning. Workers must not mutate shared state, so a
// scan always reflects the single point-in-time snapshot it was handed.
package fanout

import "golang.org/x/sync/errgroup"

// Collect scans every partition in parallel and concatenates the
// matches, in partition order.
func Collect[P, R any](partitions []P, scan func(P) []R) []R {
	results := make([][]R, len(partitions))

	var g errgroup.Group
	for i, p := range partitions {
		g.Go(func() error {
			results[i] = scan(p)
			return nil
		})
	}
	_ = g.Wait() // scans do not fail

	var out []R
	for _, r := range results {
		out = append(out, r...)
	}
	return out
}

// First scans every partition in parallel and returns the first match by
// partition order.
func First[P, R any](partitions []P, scan func(P) (R, bool)) (R, bool) {
	found := make([]bool, len(partitions))
	results := make([]R, len(partitions))

	var g errgroup.Group
	for i, p := range partitions {
		g.Go(func() error {
			results[i], found[i] = scan(p)
			return nil
		})
	}
	_ = g.Wait()

	for i, ok := range found {
		if ok {
			return results[i], true
		}
	}
	var zero R
	return zero, false
}
