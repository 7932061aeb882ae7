package domain

import "time"

// TicketPayload is the immutable part of a ticket, fixed at mint time.
type TicketPayload struct {
	ActivityID  uint64 `json:"activity_id"`
	ChoiceIndex int    `json:"choice_index"`
	Amount      uint64 `json:"amount"`
}

// Ticket is a uniquely owned, transferable record of one stake on one choice
// in one activity. Only Owner changes after mint; the ticket is burned when
// its winnings are claimed.
type Ticket struct {
	TokenID  uint64        `json:"token_id"`
	Payload  TicketPayload `json:"payload"`
	Owner    Account       `json:"owner"`
	MintedAt time.Time     `json:"minted_at"`
}
