package domain

import "time"

// EventType tags a journal entry and selects the bus channel it is
// published on.
type EventType string

const (
	EventActivityCreated  EventType = "activity_created"
	EventActivityResolved EventType = "activity_resolved"
	EventBetPlaced        EventType = "bet_placed"
	EventWinningsClaimed  EventType = "winnings_claimed"
	EventTicketListed     EventType = "ticket_listed"
	EventTicketUnlisted   EventType = "ticket_unlisted"
	EventTicketSold       EventType = "ticket_sold"
	EventFaucetDrip       EventType = "faucet_drip"
)

// Bus channels. Activity lifecycle and bets are split from marketplace
// traffic so WebSocket clients can subscribe selectively.
const (
	ChannelActivity = "ch:activity"
	ChannelBet      = "ch:bet"
	ChannelMarket   = "ch:market"
	JournalStream   = "stream:journal"
)

// Event is one journaled, observable state change. ID is assigned by the
// journal (a UUID); Payload is one of the *Event structs below.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// Channel returns the pub/sub channel this event type is broadcast on.
func (t EventType) Channel() string {
	switch t {
	case EventBetPlaced:
		return ChannelBet
	case EventTicketListed, EventTicketUnlisted, EventTicketSold:
		return ChannelMarket
	default:
		return ChannelActivity
	}
}

// ActivityCreatedEvent is emitted when the notary opens a new pool.
type ActivityCreatedEvent struct {
	ActivityID uint64 `json:"activity_id"`
	SeedPool   uint64 `json:"seed_pool"`
}

// ActivityResolvedEvent is emitted exactly once per activity.
type ActivityResolvedEvent struct {
	ActivityID    uint64 `json:"activity_id"`
	WinningChoice int    `json:"winning_choice"`
}

// BetPlacedEvent is emitted for every accepted stake.
type BetPlacedEvent struct {
	ActivityID  uint64  `json:"activity_id"`
	Bettor      Account `json:"bettor"`
	ChoiceIndex int     `json:"choice_index"`
	Amount      uint64  `json:"amount"`
	TokenID     uint64  `json:"token_id"`
}

// WinningsClaimedEvent is emitted when a winning ticket is redeemed and
// burned.
type WinningsClaimedEvent struct {
	TokenID uint64  `json:"token_id"`
	Claimer Account `json:"claimer"`
	Payout  uint64  `json:"payout"`
}

// TicketListedEvent is emitted when a ticket is offered for sale.
type TicketListedEvent struct {
	TokenID uint64  `json:"token_id"`
	Seller  Account `json:"seller"`
	Price   uint64  `json:"price"`
}

// TicketUnlistedEvent is emitted when a seller withdraws an order.
type TicketUnlistedEvent struct {
	TokenID uint64  `json:"token_id"`
	Seller  Account `json:"seller"`
}

// TicketSoldEvent is emitted when a buy executes.
type TicketSoldEvent struct {
	TokenID uint64  `json:"token_id"`
	Seller  Account `json:"seller"`
	Buyer   Account `json:"buyer"`
	Price   uint64  `json:"price"`
}

// FaucetDripEvent is emitted when the faucet credits a test balance.
type FaucetDripEvent struct {
	Account Account `json:"account"`
	Amount  uint64  `json:"amount"`
}
