package scheduler

import "errors"

var ErrAssignmentRejected = errors.New("assignment rejected")
