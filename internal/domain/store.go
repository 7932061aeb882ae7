package domain

import (
	"context"
	"time"
)

// ListOpts provides pagination for list queries.
type ListOpts struct {
	Limit  int
	Offset int
}

// BalanceLedger is the fungible balance collaborator. Allowances follow the
// approve-then-spend pattern: TransferFrom only succeeds when the spender
// holds a sufficient allowance from the source account, and it consumes the
// allowance as it moves funds.
type BalanceLedger interface {
	BalanceOf(account Account) uint64
	Credit(to Account, amount uint64)
	Debit(from Account, amount uint64) error
	Approve(owner, spender Account, amount uint64)
	Allowance(owner, spender Account) uint64
	TransferFrom(spender, from, to Account, amount uint64) error
}

// TicketRegistry is the non-fungible ticket collaborator. Token IDs are
// sequential from 1 across all activities. Per-token approvals gate
// market-initiated transfers and are cleared on every ownership change.
type TicketRegistry interface {
	Mint(owner Account, payload TicketPayload) Ticket
	Burn(tokenID uint64) error
	OwnerOf(tokenID uint64) (Account, error)
	Get(tokenID uint64) (Ticket, error)
	Transfer(tokenID uint64, from, to Account) error
	Approve(caller Account, tokenID uint64, operator Account) error
	IsApproved(tokenID uint64, operator Account) bool
	TokensOf(owner Account) []Ticket
}

// ActivityStore persists activity records.
type ActivityStore interface {
	Upsert(ctx context.Context, a Activity) error
	GetByID(ctx context.Context, id uint64) (Activity, error)
	List(ctx context.Context, opts ListOpts) ([]Activity, error)
}

// TicketStore persists ticket records. Delete removes a burned ticket.
type TicketStore interface {
	Upsert(ctx context.Context, t Ticket) error
	Delete(ctx context.Context, tokenID uint64) error
	GetByID(ctx context.Context, tokenID uint64) (Ticket, error)
	ListByOwner(ctx context.Context, owner Account) ([]Ticket, error)
	ListByActivity(ctx context.Context, activityID uint64) ([]Ticket, error)
	ListAll(ctx context.Context) ([]Ticket, error)
}

// OrderStore persists live sell orders.
type OrderStore interface {
	Upsert(ctx context.Context, o SellOrder) error
	Delete(ctx context.Context, tokenID uint64) error
	GetByTokenID(ctx context.Context, tokenID uint64) (SellOrder, error)
	ListAll(ctx context.Context) ([]SellOrder, error)
}

// BalanceStore persists account balances so the ledger survives restarts.
type BalanceStore interface {
	Upsert(ctx context.Context, account Account, balance uint64) error
	ListAll(ctx context.Context) (map[Account]uint64, error)
}

// JournalEntry is one persisted event row.
type JournalEntry struct {
	ID        string
	Type      EventType
	Payload   []byte
	CreatedAt time.Time
}

// JournalStore persists an append-only event journal. MaxMintedTokenID
// returns the highest token ID ever minted, which can exceed the highest
// live ticket when tickets were burned by claims.
type JournalStore interface {
	Append(ctx context.Context, e Event) error
	ListRecent(ctx context.Context, limit int) ([]JournalEntry, error)
	MaxMintedTokenID(ctx context.Context) (uint64, error)
}

// EventBus publishes core events for live observers and reads them back.
type EventBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	StreamAppend(ctx context.Context, stream string, payload []byte) error
}

// RateLimiter throttles repeated requests per key.
type RateLimiter interface {
	// Allow reports whether a request for key is permitted under a limit of
	// limit requests per window, counting the request when it is.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// ActivityCache caches activity snapshots for the read path.
type ActivityCache interface {
	Get(ctx context.Context, id uint64) (Activity, error)
	Set(ctx context.Context, a Activity) error
	Invalidate(ctx context.Context, id uint64) error
}
