package repository

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/iliyamo/shop-lottery/internal/keycode"
	"github.com/iliyamo/shop-lottery/internal/model"
	"github.com/iliyamo/shop-lottery/internal/store"
	"github.com/iliyamo/shop-lottery/internal/utils"
)

// UserRepo manages credential documents (keyed by e-mail) and account
// documents (keyed by uid).
type UserRepo struct{ Store store.Store }

func NewUserRepo(s store.Store) *UserRepo { return &UserRepo{Store: s} }

var ErrEmailExists = errors.New("email already exists")

// Create registers a credential document claiming the normalized
// e-mail and returns the new uid. The create-if-absent write is the
// uniqueness check; a taken e-mail reports ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, email, password string, cost int) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return "", err
	}
	cred := model.Credential{
		UID:          uuid.NewString(),
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	doc, err := json.Marshal(cred)
	if err != nil {
		return "", errors.Wrap(err, "encode credential")
	}
	if err := r.Store.Create(ctx, store.CollectionCredentials, email, doc); err != nil {
		if errors.Is(err, store.ErrKeyExists) {
			return "", ErrEmailExists
		}
		return "", err
	}
	return cred.UID, nil
}

// GetByEmail fetches the credential document for a normalized e-mail.
// Returns store.ErrNotFound for unknown addresses.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.Credential, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	raw, err := r.Store.Get(ctx, store.CollectionCredentials, email)
	if err != nil {
		return model.Credential{}, err
	}
	var cred model.Credential
	if err := json.Unmarshal(raw, &cred); err != nil {
		return model.Credential{}, errors.Wrapf(err, "decode credential %s", email)
	}
	return cred, nil
}

// GetByID fetches the account document for a uid.
func (r *UserRepo) GetByID(ctx context.Context, uid string) (model.User, error) {
	raw, err := r.Store.Get(ctx, store.CollectionUsers, uid)
	if err != nil {
		return model.User{}, err
	}
	var u model.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return model.User{}, errors.Wrapf(err, "decode user %s", uid)
	}
	return u, nil
}

// EnsureAccount writes the account document for uid on first call and
// reports whether it created one. The shop tag is derived from the
// e-mail here, once; later calls leave the stored document untouched,
// so the operation is idempotent under retry.
func (r *UserRepo) EnsureAccount(ctx context.Context, uid, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u := model.User{
		Email:     email,
		ShopTag:   keycode.ShopTagFromEmail(email),
		CreatedAt: time.Now().UTC(),
	}
	doc, err := json.Marshal(u)
	if err != nil {
		return false, errors.Wrap(err, "encode user")
	}
	if err := r.Store.Create(ctx, store.CollectionUsers, uid, doc); err != nil {
		if errors.Is(err, store.ErrKeyExists) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ShopTag returns the shop tag stored on the uid's account document,
// or ErrNoShopTag when the account was never bootstrapped.
func (r *UserRepo) ShopTag(ctx context.Context, uid string) (string, error) {
	u, err := r.GetByID(ctx, uid)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrNoShopTag
	}
	if err != nil {
		return "", err
	}
	return u.ShopTag, nil
}
