package core

import "github.com/google/uuid"

// NewID returns a random UUID string. It is the default IDFunc.
func NewID() string {
	return uuid.NewString()
}
