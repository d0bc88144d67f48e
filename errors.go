package datagrid

import "errors"

// Grid lifecycle errors
var (
	// ErrNoItemSource indicates the grid was attached without a data source.
	ErrNoItemSource = errors.New("no item source configured")

	// ErrAlreadyAttached indicates Attach was called on an attached grid.
	ErrAlreadyAttached = errors.New("grid is already attached")

	// ErrNotAttached indicates Detach was called on a detached grid.
	ErrNotAttached = errors.New("grid is not attached")
)

// Grouping errors
var (
	// ErrGroupNotFound indicates that a group path does not exist in the
	// current slot map.
	ErrGroupNotFound = errors.New("group not found")
)
