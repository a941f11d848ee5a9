package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/iliyamo/shop-lottery/internal/keycode"
	"github.com/iliyamo/shop-lottery/internal/metrics"
	"github.com/iliyamo/shop-lottery/internal/model"
	"github.com/iliyamo/shop-lottery/internal/store"
)

// generateRetryCap bounds the collision loop in GenerateCode. Suffixes
// give 2^24 keys per shop tag, so hitting the cap under normal load
// means the tag's space is effectively full.
const generateRetryCap = 20

// Issuance bounds for one request.
const (
	minIssueAmount = 1
	maxIssueAmount = 10
)

// TicketRepo issues and mutates ticket documents. Every ticket key is
// `<shopTag>-<suffix>`, which is what makes the prefix scan in
// ListByShopTag work.
type TicketRepo struct{ Store store.Store }

func NewTicketRepo(s store.Store) *TicketRepo { return &TicketRepo{Store: s} }

// GenerateCode claims a fresh code for the shop and writes t under it.
// Sampling and claiming are one step: the create-if-absent write is
// the claim, so two concurrent generators can never both win the same
// code. Collisions resample up to generateRetryCap times, then fail
// with ErrCodeSpaceExhausted.
func (r *TicketRepo) GenerateCode(ctx context.Context, shopTag string, t model.Ticket) (string, error) {
	doc, err := json.Marshal(t)
	if err != nil {
		return "", errors.Wrap(err, "encode ticket")
	}
	for attempt := 0; attempt < generateRetryCap; attempt++ {
		suffix, err := keycode.NewSuffix()
		if err != nil {
			return "", err
		}
		code := keycode.BuildCode(shopTag, suffix)
		err = r.Store.Create(ctx, store.CollectionTickets, code, doc)
		if err == nil {
			return code, nil
		}
		if !errors.Is(err, store.ErrKeyExists) {
			return "", err
		}
		metrics.CodeCollisions.Inc()
	}
	return "", ErrCodeSpaceExhausted
}

// Issue creates count tickets for the shop with a shared creation
// timestamp and returns them keyed by code. The amount is validated
// before any store access. A mid-batch failure is returned as is;
// tickets written before it stay in the store, so callers must
// re-query rather than blindly retry.
func (r *TicketRepo) Issue(ctx context.Context, shopTag string, count int, email, memo string) (map[string]model.Ticket, error) {
	if count < minIssueAmount || count > maxIssueAmount {
		return nil, ErrAmountRange
	}
	now := time.Now().UTC()
	issued := make(map[string]model.Ticket, count)
	for i := 0; i < count; i++ {
		t := model.Ticket{Email: email, Memo: memo, CreatedAt: now}
		code, err := r.GenerateCode(ctx, shopTag, t)
		if err != nil {
			return nil, err
		}
		issued[code] = t
		metrics.CodesIssued.Inc()
	}
	return issued, nil
}

// ListByShopTag returns the shop's tickets in ascending code order,
// each tagged with its code and a 1-based position. The position is
// stable only within one result.
func (r *TicketRepo) ListByShopTag(ctx context.Context, shopTag string) ([]model.TicketEntry, error) {
	docs, err := store.ScanPrefix(ctx, r.Store, store.CollectionTickets, keycode.TicketPrefix(shopTag))
	if err != nil {
		return nil, err
	}
	entries := make([]model.TicketEntry, 0, len(docs))
	for i, d := range docs {
		var t model.Ticket
		if err := json.Unmarshal(d.Doc, &t); err != nil {
			return nil, errors.Wrapf(err, "decode ticket %s", d.Key)
		}
		entries = append(entries, model.TicketEntry{Num: i + 1, Code: d.Key, Ticket: t})
	}
	return entries, nil
}

// GetByCode fetches one ticket document.
func (r *TicketRepo) GetByCode(ctx context.Context, code string) (model.Ticket, error) {
	raw, err := r.Store.Get(ctx, store.CollectionTickets, code)
	if err != nil {
		return model.Ticket{}, err
	}
	var t model.Ticket
	if err := json.Unmarshal(raw, &t); err != nil {
		return model.Ticket{}, errors.Wrapf(err, "decode ticket %s", code)
	}
	return t, nil
}

// Redeem marks the ticket redeemed and records the chosen prize. The
// prize id must have a public info record. Redeeming twice is
// rejected; the lifecycle never moves backwards.
func (r *TicketRepo) Redeem(ctx context.Context, code, prizeID string) (model.Ticket, error) {
	t, err := r.GetByCode(ctx, code)
	if err != nil {
		return model.Ticket{}, err
	}
	if t.Redeemed {
		return model.Ticket{}, ErrAlreadyRedeemed
	}
	ok, err := r.Store.Exists(ctx, store.CollectionPrizeInfo, prizeID)
	if err != nil {
		return model.Ticket{}, err
	}
	if !ok {
		return model.Ticket{}, ErrUnknownPrize
	}
	t.Redeemed = true
	t.PrizeID = prizeID
	if err := r.put(ctx, code, t); err != nil {
		return model.Ticket{}, err
	}
	return t, nil
}

// Ship marks a redeemed ticket shipped and records the order
// reference. Shipping an unredeemed or already shipped ticket is
// rejected.
func (r *TicketRepo) Ship(ctx context.Context, code, orderID string) (model.Ticket, error) {
	if orderID == "" {
		return model.Ticket{}, ErrOrderIDRequired
	}
	t, err := r.GetByCode(ctx, code)
	if err != nil {
		return model.Ticket{}, err
	}
	if !t.Redeemed {
		return model.Ticket{}, ErrNotRedeemed
	}
	if t.Shipped {
		return model.Ticket{}, ErrAlreadyShipped
	}
	t.Shipped = true
	t.OrderID = orderID
	if err := r.put(ctx, code, t); err != nil {
		return model.Ticket{}, err
	}
	return t, nil
}

func (r *TicketRepo) put(ctx context.Context, code string, t model.Ticket) error {
	doc, err := json.Marshal(t)
	if err != nil {
		return errors.Wrap(err, "encode ticket")
	}
	return r.Store.Set(ctx, store.CollectionTickets, code, doc)
}
