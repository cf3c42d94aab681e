package postgres

import (
	"errors"
	"fmt"

	"github.com/lib/pq"

	"spoolman/pkg/platform/sentinel"
)

const foreignKeyViolation pq.ErrorCode = "23503"

// Translate maps constraint violations to sentinel errors. A foreign key
// violation means a referenced row was deleted after the caller checked it.
func Translate(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
		return fmt.Errorf("%w: %s", sentinel.ErrConflict, pqErr.Constraint)
	}
	return err
}
