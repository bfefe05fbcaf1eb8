package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/speesrl/n8nctl/internal/logger"
	"github.com/speesrl/n8nctl/internal/model"
	n8nerrors "github.com/speesrl/n8nctl/pkg/errors"
)

// Event notifies an observer about reconciler progress. Used by the TUI to
// render live state; nil observers are ignored.
type Event struct {
	AssertionID string
	Status      string
	Outcome     *model.RunOutcome
}

// Reconciler drives the persisted state of the target system toward the
// desired state described by a set of assertions. One invocation owns one
// RunReport; nothing is cached across invocations, the current state is
// always re-derived from the external store.
type Reconciler struct {
	log    *logger.Logger
	notify func(Event)
}

// NewReconciler constructs a Reconciler. The notify callback may be nil.
func NewReconciler(log *logger.Logger, notify func(Event)) *Reconciler {
	return &Reconciler{log: log.WithComponent("reconciler"), notify: notify}
}

// Run processes the assertions in dependency order and returns the report.
//
// Ordering failures (a cycle, a duplicate or unknown id) abort the run before
// any mutation. Individual assertion failures are isolated: the run continues
// for unrelated assertions, while assertions depending (directly or
// transitively) on a failed one are recorded as failed without their Check or
// Apply ever being invoked.
func (r *Reconciler) Run(ctx context.Context, assertions []Assertion) (*model.RunReport, error) {
	order, err := topologicalOrder(assertions)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]Assertion, len(assertions))
	for _, a := range assertions {
		byID[a.ID()] = a
	}

	report := &model.RunReport{}
	failed := make(map[string]struct{})

	for _, id := range order {
		assertion := byID[id]
		r.emit(Event{AssertionID: id, Status: model.StatusRunning})

		outcome := r.process(ctx, assertion, failed)
		if outcome.Status == model.StatusFailed {
			failed[id] = struct{}{}
		}
		report.Append(outcome)
		r.emit(Event{AssertionID: id, Status: outcome.Status, Outcome: &outcome})
	}

	return report, nil
}

func (r *Reconciler) process(ctx context.Context, assertion Assertion, failed map[string]struct{}) model.RunOutcome {
	start := time.Now()
	outcome := model.RunOutcome{
		AssertionID: assertion.ID(),
		Optional:    IsOptional(assertion),
		Timestamp:   start,
	}

	if blockers := blockedBy(assertion, failed); len(blockers) > 0 {
		outcome.Status = model.StatusFailed
		outcome.Detail = fmt.Sprintf("blocked by dependency: %s", strings.Join(blockers, ", "))
		outcome.Duration = time.Since(start)
		r.log.WithFields(map[string]any{"assertion": assertion.ID(), "blocked_by": blockers}).Warn("assertion skipped")
		return outcome
	}

	satisfied, err := assertion.Check(ctx)
	if err != nil {
		outcome.Status = model.StatusFailed
		outcome.Detail = checkFailureDetail(err)
		outcome.Duration = time.Since(start)
		r.log.WithFields(map[string]any{"assertion": assertion.ID()}).Error(err, "state check failed")
		return outcome
	}

	if satisfied {
		outcome.Status = model.StatusAlreadySatisfied
		outcome.Duration = time.Since(start)
		r.log.WithFields(map[string]any{"assertion": assertion.ID()}).Debug("already satisfied")
		return outcome
	}

	if err := assertion.Apply(ctx); err != nil {
		outcome.Status = model.StatusFailed
		outcome.Detail = err.Error()
		outcome.Duration = time.Since(start)
		r.log.WithFields(map[string]any{"assertion": assertion.ID()}).Error(err, "apply failed")
		return outcome
	}

	outcome.Status = model.StatusCreated
	outcome.Duration = time.Since(start)
	r.log.WithFields(map[string]any{"assertion": assertion.ID()}).Info("created")
	return outcome
}

func (r *Reconciler) emit(event Event) {
	if r.notify != nil {
		r.notify(event)
	}
}

func blockedBy(assertion Assertion, failed map[string]struct{}) []string {
	var blockers []string
	for _, dep := range assertion.DependsOn() {
		if _, ok := failed[dep]; ok {
			blockers = append(blockers, dep)
		}
	}
	return blockers
}

func checkFailureDetail(err error) string {
	if n8nerrors.IsReadFailed(err) {
		return err.Error()
	}
	return fmt.Sprintf("read failed: %v", err)
}
