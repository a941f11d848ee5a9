// Package store abstracts the document store backing the service. The
// store holds raw JSON document bodies addressed by (collection, key)
// and supports only point operations and lexicographic key ranges: no
// prefix queries, no secondary indexes. Two backends are provided, a
// MySQL-backed one for production and an in-memory one for tests and
// local development.
package store

import (
	"context"
	"errors"
)

// Collection names used by the service. Ticket and prize keys begin
// with the owning shop tag so that one range scan retrieves everything
// belonging to a shop.
const (
	CollectionUsers         = "users"
	CollectionCredentials   = "user-credentials"
	CollectionTickets       = "ticket-info"
	CollectionPrizes        = "prizes"
	CollectionPrizeInfo     = "prize-info"
	CollectionRefreshTokens = "refresh-tokens"
	CollectionIssuanceLog   = "issuance-log"
)

// ErrNotFound is returned by Get when no document exists under the key.
var ErrNotFound = errors.New("document not found")

// ErrKeyExists is returned by Create when the key is already taken.
var ErrKeyExists = errors.New("key already exists")

// KeyedDoc pairs a document body with the store key it was read from.
// Scan returns these in ascending key order.
type KeyedDoc struct {
	Key string
	Doc []byte
}

// OpKind selects the effect of one batched write.
type OpKind int

const (
	OpSet OpKind = iota
	OpDelete
	OpCreate
)

// Op is a single write inside an atomic batch. Doc is ignored for
// OpDelete. OpCreate fails the whole batch with ErrKeyExists when the
// key is already taken, which lets a batch claim a fresh key and write
// its companion records in one atomic step.
type Op struct {
	Kind       OpKind
	Collection string
	Key        string
	Doc        []byte
}

// Store is the document store contract consumed by the repositories.
// Every operation takes a context and may fail with a transient or
// permanent backend error; callers do not retry store failures. The
// only logical retry in the system is the capped collision loop on top
// of Create.
type Store interface {
	// Get returns the document body stored under key, or ErrNotFound.
	Get(ctx context.Context, collection, key string) ([]byte, error)

	// Set stores doc under key, replacing any existing body.
	Set(ctx context.Context, collection, key string, doc []byte) error

	// Create stores doc under key only if the key is absent. It is the
	// atomic claim primitive used by code generation: a concurrent
	// claim of the same key loses with ErrKeyExists instead of
	// silently overwriting.
	Create(ctx context.Context, collection, key string, doc []byte) error

	// Exists reports whether a document is stored under key.
	Exists(ctx context.Context, collection, key string) (bool, error)

	// Delete removes the document under key. Deleting an absent key is
	// a no-op.
	Delete(ctx context.Context, collection, key string) error

	// Add stores doc under a store-assigned unique key and returns
	// that key.
	Add(ctx context.Context, collection string, doc []byte) (string, error)

	// Scan returns every document whose key falls in [start, stop),
	// ascending by key.
	Scan(ctx context.Context, collection, start, stop string) ([]KeyedDoc, error)

	// Apply executes a write batch atomically: either every op takes
	// effect or none does. A conflicting OpCreate aborts the batch
	// with ErrKeyExists.
	Apply(ctx context.Context, ops []Op) error
}
