package match

import (
	"fmt"

	"github.com/pkg/errors"
)

// RetrievalError means the external similarity/vector query failed or timed
// out. It is fatal for the run and surfaced to the caller with the job id
// and underlying cause.
type RetrievalError struct {
	JobID int32
	Cause error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("candidate retrieval failed for job %d: %v", e.JobID, e.Cause)
}

func (e *RetrievalError) Unwrap() error {
	return e.Cause
}

// IsRetrievalError reports whether err is (or wraps) a RetrievalError.
func IsRetrievalError(err error) bool {
	var re *RetrievalError
	return errors.As(err, &re)
}

// CandidateComputeError means metric computation failed for one candidate.
// The pipeline drops the candidate, logs a warning, and continues; it never
// aborts the run for one bad record.
type CandidateComputeError struct {
	CandidateID int32
	Cause       error
}

func (e *CandidateComputeError) Error() string {
	return fmt.Sprintf("metric computation failed for candidate %d: %v", e.CandidateID, e.Cause)
}

func (e *CandidateComputeError) Unwrap() error {
	return e.Cause
}
