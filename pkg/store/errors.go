package store

import "errors"

var (
	ErrWorkspaceNotFound    = errors.New("workspace not found")
	ErrAgentNotFound        = errors.New("agent not found")
	ErrWorkspaceLimit       = errors.New("workspace limit reached")
	ErrInvalidName          = errors.New("name must not be empty")
	ErrInvalidContractHours = errors.New("contract hours must be a finite number")
)
