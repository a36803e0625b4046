package repos

import (
  "context"
  "errors"
  "fmt"

  "gorm.io/gorm"

  "github.com/jayp5545/skillbridge-ai/internal/apperr"
)

// translate maps driver-level failures onto the store error taxonomy. Missing
// rows become ErrNotFound; everything else is treated as a transient store
// failure the caller may retry.
func translate(err error) error {
  if err == nil {
    return nil
  }
  if errors.Is(err, gorm.ErrRecordNotFound) {
    return apperr.ErrNotFound
  }
  if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
    return err
  }
  return fmt.Errorf("%w: %v", apperr.ErrStoreUnavailable, err)
}
