// Package queue defines message payloads exchanged over the message broker.
package queue

// CodesIssuedEvent is published after a batch of lottery codes has been
// written to the store. It carries enough information for downstream
// consumers to log, notify, or trigger analytics without querying the
// primary store.
type CodesIssuedEvent struct {
	ShopTag  string   `json:"shop_tag"`
	Codes    []string `json:"codes"`
	Email    string   `json:"email"`
	Memo     string   `json:"memo"`
	IssuedAt string   `json:"issued_at"`
}
