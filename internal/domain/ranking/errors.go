package ranking

import "errors"

// Sentinel kinds for ranking errors.
var (
	ErrUnknownSortMode = errors.New("unknown sort mode")
	ErrUnknownGrade    = errors.New("unknown grade")
)
