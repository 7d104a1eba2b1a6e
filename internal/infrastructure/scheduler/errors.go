package scheduler

import (
	"errors"

	"github.com/storefront/backend/internal/domain/shared"
)

var (
	// ErrSyncInProgress is returned when a trigger arrives while a run is active.
	// Triggers are never queued.
	ErrSyncInProgress = shared.ErrSyncInProgress

	// ErrSyncPanicked marks a run that panicked; the run is recorded as failed
	ErrSyncPanicked = errors.New("scheduler: sync run panicked")

	// ErrInvalidInterval is returned for a non-positive schedule interval
	ErrInvalidInterval = shared.NewDomainError("INVALID_INPUT", "Schedule interval must be a positive number of minutes")

	// ErrShutdown is returned by triggers after Shutdown
	ErrShutdown = errors.New("scheduler: coordinator is shut down")
)
