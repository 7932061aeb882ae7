package domain

import "time"

// SellOrder is a live marketplace listing for a ticket. At most one order
// exists per token; absence of an order means the ticket is not for sale.
type SellOrder struct {
	TokenID  uint64    `json:"token_id"`
	Seller   Account   `json:"seller"`
	Price    uint64    `json:"price"`
	ListedAt time.Time `json:"listed_at"`
}
