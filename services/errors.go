package services

import (
	"errors"
	"fmt"
	"time"
)

// ErrExtractionFailed means no text could be recovered from a document by
// either direct PDF reading or the OCR fallback. Ingestion stops here; the
// administrator should supply a clearer or text-based document.
var ErrExtractionFailed = errors.New("no text could be extracted from document; supply a text-based or higher quality scan")

// ErrDuplicateSubmission means the attempt was already finalized. The
// original result is returned unchanged alongside this error.
var ErrDuplicateSubmission = errors.New("attempt already submitted")

// StructuralMismatchError reports a merged question set that does not
// cover the required dense 1..Expected range. Fatal to test activation.
type StructuralMismatchError struct {
	Found    int
	Expected int
}

func (e *StructuralMismatchError) Error() string {
	return fmt.Sprintf(
		"parsed %d of %d expected questions; check that the paper alternates Hindi/English pages, numbers questions 1..%d and marks options (a)-(d)",
		e.Found, e.Expected, e.Expected,
	)
}

// Shortfall returns how many questions are missing
func (e *StructuralMismatchError) Shortfall() int {
	return e.Expected - e.Found
}

// WindowViolationError reports a start or submission outside the test's
// scheduled window, carrying the boundary that was violated.
type WindowViolationError struct {
	Boundary time.Time
	Before   bool // true when the attempt came before StartTime
}

func (e *WindowViolationError) Error() string {
	if e.Before {
		return fmt.Sprintf("test has not started yet; opens at %s", e.Boundary.Format(time.RFC3339))
	}
	return fmt.Sprintf("test window closed at %s", e.Boundary.Format(time.RFC3339))
}
