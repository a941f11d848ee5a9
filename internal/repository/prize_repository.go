package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/shop-lottery/internal/keycode"
	"github.com/iliyamo/shop-lottery/internal/metrics"
	"github.com/iliyamo/shop-lottery/internal/model"
	"github.com/iliyamo/shop-lottery/internal/store"
)

// Prize quantity bounds for one record.
const (
	minPrizeQuantity = 0
	maxPrizeQuantity = 999
)

// PrizeRepo manages the two linked halves of each prize: the
// owner-only metadata under `prizes/<id>` and the public display
// record under `prize-info/<id>`. The two are always written and
// deleted together in one batch; the generated id is the sole link.
type PrizeRepo struct{ Store store.Store }

func NewPrizeRepo(s store.Store) *PrizeRepo { return &PrizeRepo{Store: s} }

// Create validates the quantity, claims a fresh prize id and writes
// both records atomically. Prize ids follow the ticket code scheme
// (`<shopTag>-<suffix>`), so a shop's prizes come back from the same
// prefix scan mechanism as its tickets.
func (r *PrizeRepo) Create(ctx context.Context, uid, shopTag, name, description, image string, quantity int) (model.PrizeEntry, error) {
	if quantity < minPrizeQuantity || quantity > maxPrizeQuantity {
		return model.PrizeEntry{}, ErrQuantityRange
	}
	now := time.Now().UTC()
	meta := model.PrizeMeta{CreatorUID: uid, Quantity: quantity, CreatedAt: now}
	info := model.PrizeInfo{Name: name, Description: description, Image: image, LastModified: now}
	metaDoc, err := json.Marshal(meta)
	if err != nil {
		return model.PrizeEntry{}, errors.Wrap(err, "encode prize metadata")
	}
	infoDoc, err := json.Marshal(info)
	if err != nil {
		return model.PrizeEntry{}, errors.Wrap(err, "encode prize info")
	}
	for attempt := 0; attempt < generateRetryCap; attempt++ {
		suffix, err := keycode.NewSuffix()
		if err != nil {
			return model.PrizeEntry{}, err
		}
		id := keycode.BuildCode(shopTag, suffix)
		err = r.Store.Apply(ctx, []store.Op{
			{Kind: store.OpCreate, Collection: store.CollectionPrizes, Key: id, Doc: metaDoc},
			{Kind: store.OpSet, Collection: store.CollectionPrizeInfo, Key: id, Doc: infoDoc},
		})
		if err == nil {
			metrics.PrizesCreated.Inc()
			return model.PrizeEntry{ID: id, Meta: meta, Info: info}, nil
		}
		if !errors.Is(err, store.ErrKeyExists) {
			return model.PrizeEntry{}, err
		}
		metrics.CodeCollisions.Inc()
	}
	return model.PrizeEntry{}, ErrCodeSpaceExhausted
}

// ListByCreator joins metadata and info for every prize the uid
// created under the shop tag, ascending by id with 1-based positions.
// Shop tags are not globally unique, so metadata from a same-tagged
// shop is filtered out by creator. A metadata record whose info half
// is missing is logged and skipped rather than failing the list.
func (r *PrizeRepo) ListByCreator(ctx context.Context, uid, shopTag string) ([]model.PrizeEntry, error) {
	docs, err := store.ScanPrefix(ctx, r.Store, store.CollectionPrizes, keycode.TicketPrefix(shopTag))
	if err != nil {
		return nil, err
	}
	entries := make([]model.PrizeEntry, 0, len(docs))
	for _, d := range docs {
		var meta model.PrizeMeta
		if err := json.Unmarshal(d.Doc, &meta); err != nil {
			return nil, errors.Wrapf(err, "decode prize metadata %s", d.Key)
		}
		if meta.CreatorUID != uid {
			continue
		}
		info, err := r.GetInfo(ctx, d.Key)
		if errors.Is(err, store.ErrNotFound) {
			log.Warn().Str("prize_id", d.Key).Msg("prize metadata without info record, skipping")
			continue
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, model.PrizeEntry{
			Num:  len(entries) + 1,
			ID:   d.Key,
			Meta: meta,
			Info: info,
		})
	}
	return entries, nil
}

// GetInfo fetches the public display record for a prize id.
func (r *PrizeRepo) GetInfo(ctx context.Context, id string) (model.PrizeInfo, error) {
	raw, err := r.Store.Get(ctx, store.CollectionPrizeInfo, id)
	if err != nil {
		return model.PrizeInfo{}, err
	}
	var info model.PrizeInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return model.PrizeInfo{}, errors.Wrapf(err, "decode prize info %s", id)
	}
	return info, nil
}

// Delete removes both halves of a prize in one batch after checking
// the caller owns it. Returns store.ErrNotFound for unknown ids and
// ErrForbidden when uid is not the creator.
func (r *PrizeRepo) Delete(ctx context.Context, uid, id string) error {
	raw, err := r.Store.Get(ctx, store.CollectionPrizes, id)
	if err != nil {
		return err
	}
	var meta model.PrizeMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return errors.Wrapf(err, "decode prize metadata %s", id)
	}
	if meta.CreatorUID != uid {
		return ErrForbidden
	}
	return r.Store.Apply(ctx, []store.Op{
		{Kind: store.OpDelete, Collection: store.CollectionPrizes, Key: id},
		{Kind: store.OpDelete, Collection: store.CollectionPrizeInfo, Key: id},
	})
}
