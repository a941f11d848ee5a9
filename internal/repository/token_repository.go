package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/iliyamo/shop-lottery/internal/model"
	"github.com/iliyamo/shop-lottery/internal/store"
)

// TokenRepo persists refresh-token records in the document store,
// keyed by the token's SHA-256 hash. The raw token never touches the
// store.
type TokenRepo struct{ Store store.Store }

func NewTokenRepo(s store.Store) *TokenRepo { return &TokenRepo{Store: s} }

// StoreRefresh writes a refresh-token record under its hash.
func (r *TokenRepo) StoreRefresh(ctx context.Context, uid, email, tokenHash string, exp time.Time) error {
	rec := model.RefreshToken{
		UID:       uid,
		Email:     email,
		ExpiresAt: exp,
		CreatedAt: time.Now().UTC(),
	}
	doc, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "encode refresh token")
	}
	return r.Store.Set(ctx, store.CollectionRefreshTokens, tokenHash, doc)
}

// ValidateRefresh returns the owning uid and e-mail if a non-revoked,
// non-expired record exists for the hash. Expired and revoked tokens
// report store.ErrNotFound, indistinguishable from absent ones.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (string, string, error) {
	raw, err := r.Store.Get(ctx, store.CollectionRefreshTokens, tokenHash)
	if err != nil {
		return "", "", err
	}
	var rec model.RefreshToken
	if err := json.Unmarshal(raw, &rec); err != nil {
		return "", "", errors.Wrap(err, "decode refresh token")
	}
	if rec.RevokedAt != nil {
		return "", "", store.ErrNotFound
	}
	if time.Now().UTC().After(rec.ExpiresAt) {
		return "", "", store.ErrNotFound
	}
	return rec.UID, rec.Email, nil
}

// RevokeByHash marks the record revoked. Revoking an absent or
// already revoked token is a no-op.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	raw, err := r.Store.Get(ctx, store.CollectionRefreshTokens, tokenHash)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	var rec model.RefreshToken
	if err := json.Unmarshal(raw, &rec); err != nil {
		return errors.Wrap(err, "decode refresh token")
	}
	if rec.RevokedAt != nil {
		return nil
	}
	now := time.Now().UTC()
	rec.RevokedAt = &now
	doc, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "encode refresh token")
	}
	return r.Store.Set(ctx, store.CollectionRefreshTokens, tokenHash, doc)
}
