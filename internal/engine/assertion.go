package engine

import (
	"context"
)

// Assertion is a single desired-state unit: a read-only check paired with an
// idempotent corrective mutation.
//
// Implementations must honour two contracts:
//
//   - Check is STRICTLY READ-ONLY. It answers "is the desired state already
//     present" by querying the external system and must never mutate it. A
//     store or decode failure is returned as an error (a ReadFailedError),
//     never as a silent false.
//
//   - Apply must be safe to re-run. The check/apply pair is not transactional
//     against the external store, so a crash between the two simply causes
//     the next invocation to re-check and re-apply. Mutations therefore use
//     conflict-tolerant semantics: insert-if-absent or update-if-differing.
type Assertion interface {
	// ID returns the unique identifier of this assertion.
	ID() string

	// DependsOn returns the ids of assertions that must be satisfied before
	// this one is processed.
	DependsOn() []string

	// Check reports whether the desired state is already present.
	Check(ctx context.Context) (bool, error)

	// Apply performs the corrective mutation. Only called when Check
	// returned false.
	Apply(ctx context.Context) error
}

// OptionalAssertion marks assertions whose failure is recorded but never
// fails the run. The reconciler detects the capability via type assertion;
// assertions that do not implement it are required.
type OptionalAssertion interface {
	Assertion
	Optional() bool
}

// IsOptional reports whether an assertion opted into isolated failure.
func IsOptional(a Assertion) bool {
	opt, ok := a.(OptionalAssertion)
	return ok && opt.Optional()
}
