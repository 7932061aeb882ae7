package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrAlreadyResolved       = errors.New("activity already resolved")
	ErrNotResolved           = errors.New("activity not resolved")
	ErrNotWinningTicket      = errors.New("not a winning ticket")
	ErrNotOwner              = errors.New("caller does not own ticket")
	ErrNotApproved           = errors.New("market not approved for ticket")
	ErrInsufficientFunds     = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrOrderStale            = errors.New("sell order stale: seller no longer owns ticket")
)

// ErrNoSuchOrder is a NotFound: a token without a live order is
// indistinguishable from one that was never listed.
var ErrNoSuchOrder = fmt.Errorf("no live sell order: %w", ErrNotFound)

// IsConflict reports whether err belongs to the state-conflict family: the
// request was well-formed but the current state of the activity, ticket, or
// order forbids it.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyResolved) ||
		errors.Is(err, ErrNotResolved) ||
		errors.Is(err, ErrNotWinningTicket) ||
		errors.Is(err, ErrOrderStale)
}
