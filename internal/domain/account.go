package domain

// Account is an opaque external identity. The service never interprets its
// contents; equality is the only operation that matters.
type Account string

// PoolAccount is the reserved internal account that holds escrowed pool
// funds and acts as the operator for market-initiated transfers. Bettors
// approve allowances for this account before placing bets or buying tickets.
const PoolAccount Account = "@pool"

// IsZero reports whether the account is the empty identity.
func (a Account) IsZero() bool { return a == "" }
