package database

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned when a lookup matches no document.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicateKey is returned when an insert violates a unique index.
	ErrDuplicateKey = errors.New("duplicate key")
)

// Translate maps driver errors onto the package sentinels so callers never
// need to import the driver to classify a failure.
func Translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return errors.Join(ErrDuplicateKey, err)
	default:
		return err
	}
}

// IsTransient reports whether a transaction error is labelled safe to retry.
func IsTransient(err error) bool {
	var se mongo.ServerError
	if errors.As(err, &se) {
		return se.HasErrorLabel("TransientTransactionError")
	}
	return false
}

// IsUnknownCommitResult reports whether a commit may or may not have applied.
// Retrying the commit alone is safe; re-running the transaction is not.
func IsUnknownCommitResult(err error) bool {
	var le mongo.LabeledError
	if errors.As(err, &le) {
		return le.HasErrorLabel("UnknownTransactionCommitResult")
	}
	return false
}
