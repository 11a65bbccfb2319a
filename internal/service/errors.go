package service

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// Errors shared by several services. Handlers map them to HTTP status codes.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("not allowed to perform this action")
	ErrUserNotFound = errors.New("user not found")
)

// isTransient reports store errors worth one more attempt.
func isTransient(err error) bool {
	return mongo.IsNetworkError(err) || mongo.IsTimeout(err)
}
