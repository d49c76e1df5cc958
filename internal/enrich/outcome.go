// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

// OutcomeStatus tags the result of one adapter call.
type OutcomeStatus int

const (
	// Skipped means the step did not run (flag off or nothing to fetch).
	Skipped OutcomeStatus = iota
	OK
	// Degraded means the call failed and a fallback value is carried.
	Degraded
	// Failed means the call failed with no fallback; the paper fails.
	Failed
)

func (s OutcomeStatus) String() string {
	switch s {
	case OK:
		return "ok"
	case Degraded:
		return "degraded"
	case Failed:
		return "failed"
	default:
		return "skipped"
	}
}

// Outcome carries an adapter's value together with how it was obtained.
type Outcome[T any] struct {
	Value  T
	Status OutcomeStatus
	Err    error
}

func okOutcome[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v, Status: OK}
}

func degradedOutcome[T any](fallback T, err error) Outcome[T] {
	return Outcome[T]{Value: fallback, Status: Degraded, Err: err}
}

func failedOutcome[T any](err error) Outcome[T] {
	return Outcome[T]{Status: Failed, Err: err}
}
