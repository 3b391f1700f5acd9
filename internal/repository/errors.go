package repository

import "errors"

// Common repository errors
var (
	// ErrTaskNotFound is returned when a task update or delete matched no row
	ErrTaskNotFound = errors.New("task not found")

	// ErrColumnNotFound is returned when a column update or delete matched no row
	ErrColumnNotFound = errors.New("column not found")

	// ErrBoardNotFound is returned when a board update or delete matched no row
	ErrBoardNotFound = errors.New("board not found")
)
