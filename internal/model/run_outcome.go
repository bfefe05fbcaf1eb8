package model

import (
	"time"
)

const (
	// StatusPending indicates an assertion has not been processed yet.
	StatusPending = "pending"
	// StatusRunning indicates an assertion is being checked or applied.
	StatusRunning = "running"
	// StatusAlreadySatisfied indicates the check passed and no mutation ran.
	StatusAlreadySatisfied = "already_satisfied"
	// StatusCreated indicates the apply ran and succeeded.
	StatusCreated = "created"
	// StatusFailed marks a failed check, apply, or a dependency-blocked skip.
	StatusFailed = "failed"
)

// RunOutcome captures the result of processing a single desired-state
// assertion within one reconciler invocation.
type RunOutcome struct {
	AssertionID string
	Status      string
	Detail      string
	Optional    bool
	Duration    time.Duration
	Timestamp   time.Time
}
