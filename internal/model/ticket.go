package model

import "time"

// Ticket is the document stored under `ticket-info/<code>`. The code
// itself is the store key and is not repeated in the body. Email and
// memo are fixed at issuance; the remaining fields advance through the
// Issued -> Redeemed -> Shipped lifecycle and never move backwards.
//
// Fields:
//  Email     – purchaser contact, free text.
//  Memo      – free text attached by the issuing shop.
//  OrderID   – order reference, set when the redeemed ticket is shipped.
//  PrizeID   – prize reference, set when the ticket is redeemed.
//  Redeemed  – whether a prize has been claimed against this ticket.
//  Shipped   – whether the assigned prize has been shipped.
//  CreatedAt – issuance timestamp (shared across a batch).
type Ticket struct {
	Email     string    `json:"email"`
	Memo      string    `json:"memo"`
	OrderID   string    `json:"order_id,omitempty"`
	PrizeID   string    `json:"prize_id,omitempty"`
	Redeemed  bool      `json:"redeemed"`
	Shipped   bool      `json:"shipped"`
	CreatedAt time.Time `json:"created_at"`
}

// TicketEntry is a ticket tagged with its store key and a 1-based
// position, as returned by list queries. The position is stable only
// within one query result.
type TicketEntry struct {
	Num  int    `json:"num"`
	Code string `json:"code"`
	Ticket
}
