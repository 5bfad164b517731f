package repositories

import (
	"errors"

	"gorm.io/gorm"
)

// ErrDuplicateKey is returned when an insert violates a unique constraint.
var ErrDuplicateKey = errors.New("duplicate key")

func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func IsDuplicateKeyError(err error) bool {
	return errors.Is(err, ErrDuplicateKey) || errors.Is(err, gorm.ErrDuplicatedKey)
}
