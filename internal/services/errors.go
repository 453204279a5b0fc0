package services

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"book-order-service/internal/auth"
	"book-order-service/internal/domain"
)

var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrPaymentAlreadyConfirmed = errors.New("payment already confirmed for this order")
	ErrInvalidTransition       = domain.ErrInvalidTransition
	ErrNotAuthenticated        = auth.ErrNotAuthenticated
	ErrOperationFailed         = errors.New("operation failed, please try again")
)

// ValidationError carries one message per rejected field, keyed by the
// field's JSON name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "validation failed: " + strings.Join(keys, ", ")
}

func storageError(op string, err error) error {
	log.Printf("%s: store error: %v", op, err)
	return fmt.Errorf("%s: %w: %w", op, ErrOperationFailed, err)
}
