package apperr

import "errors"

var (
  // ErrStoreUnavailable marks a transient store failure; the caller may retry.
  ErrStoreUnavailable = errors.New("store unavailable")
  // ErrNotFound marks a missing referenced entity; fatal to the operation.
  ErrNotFound = errors.New("not found")
  // ErrPreconditionFailed marks a state machine rule violation.
  ErrPreconditionFailed = errors.New("precondition failed")
  // ErrOutOfRange marks an index or ordering violation.
  ErrOutOfRange = errors.New("out of range")
  // ErrGenerationInvalid marks unusable generator output; nothing was persisted.
  ErrGenerationInvalid = errors.New("generation invalid")
  // ErrDuplicateEffect marks a repeat call caught by an idempotency guard.
  // Callers treat it as a silent success, not a failure.
  ErrDuplicateEffect = errors.New("duplicate effect")
)
