package repositories

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned by repository lookups when no row matches.
var ErrNotFound = errors.New("record not found")

// IsNotFoundError reports whether err is a repository or GORM not-found
// error, so services can map it to their own sentinel errors.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}
