package types

import (
	"errors"
	"fmt"
)

// Error taxonomy shared across the gateways and the engine. Callers
// classify with errors.Is; everything else is treated as transient.
var (
	// ErrRateLimited means the provider signalled throttling. Never
	// retried within the same cycle.
	ErrRateLimited = errors.New("rate limited by provider")

	// ErrEnvRestricted means the order was rejected by a simulated or
	// restricted trading environment. Logged as a skip, not an error.
	ErrEnvRestricted = errors.New("order rejected by environment restriction")

	// ErrNoAccount means no account reference is configured. Aborts
	// the order-submission phase of the current tick only.
	ErrNoAccount = errors.New("account reference missing")
)

// ValidationError marks a single malformed candidate or order that
// should be skipped without aborting the rest of the batch.
type ValidationError struct {
	Code   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %q: %s", e.Code, e.Reason)
}

// ValidateOrder rejects orders the gateway would bounce anyway.
func ValidateOrder(o Order) error {
	if len(o.Code) != 6 {
		return &ValidationError{Code: o.Code, Reason: "stock code must be 6 digits"}
	}
	for _, r := range o.Code {
		if r < '0' || r > '9' {
			return &ValidationError{Code: o.Code, Reason: "stock code must be numeric"}
		}
	}
	if o.Qty <= 0 {
		return &ValidationError{Code: o.Code, Reason: "quantity must be positive"}
	}
	if o.Mode == Limit && o.Price <= 0 {
		return &ValidationError{Code: o.Code, Reason: "limit price must be positive"}
	}
	return nil
}
