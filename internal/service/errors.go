package service

import (
	"errors"
	"fmt"

	"teamkanban/internal/logging"
	"teamkanban/internal/ordering"
	"teamkanban/internal/tenant"

	"github.com/sirupsen/logrus"
)

// Errors returned by services. Handlers tell them apart with errors.Is;
// nothing else crosses the service boundary.
var (
	// ErrNoActiveOrganization means the user has no organization to work in
	ErrNoActiveOrganization = tenant.ErrNoActiveOrganization

	// ErrNotFound covers both missing rows and rows the user may not see
	ErrNotFound = errors.New("not found")

	// ErrConcurrentModification means another transaction changed the rows
	// being reordered; the caller may retry
	ErrConcurrentModification = errors.New("concurrent modification, retry")

	// ErrInvalidInput is returned before any write happens
	ErrInvalidInput = errors.New("invalid input")

	// ErrForbidden means the row is visible but the user may not change it
	ErrForbidden = errors.New("forbidden")

	// ErrConflict means the write would duplicate an existing row
	ErrConflict = errors.New("already exists")

	// ErrOperationFailed wraps infrastructure failures, which are logged
	ErrOperationFailed = errors.New("operation failed")
)

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// fail converts an error from a service method into one of the sentinels
// above, logging anything unexpected.
func fail(op string, err error, fields logrus.Fields) error {
	switch {
	case errors.Is(err, ErrNoActiveOrganization),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrConcurrentModification),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrForbidden),
		errors.Is(err, ErrConflict):
		return err
	case errors.Is(err, ordering.ErrShiftMismatch):
		logrus.WithFields(fields).WithField("op", op).Warn(err.Error())
		return fmt.Errorf("%w: %v", ErrConcurrentModification, err)
	case errors.Is(err, ordering.ErrNegativeIndex),
		errors.Is(err, ordering.ErrDuplicateTask),
		errors.Is(err, ordering.ErrDuplicateIndex),
		errors.Is(err, ordering.ErrTaskNotInOrder):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	logging.LogError(op, err, fields)
	return ErrOperationFailed
}
