package exchange

import (
	"errors"
	"fmt"
)

var (
	ErrNotJSON   = errors.New("file is not valid JSON")
	ErrNotObject = errors.New("file does not contain a JSON object")
)

// ImportError wraps the reason an import document was rejected.
type ImportError struct {
	Err error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import failed: %v", e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}
