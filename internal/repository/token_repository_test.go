package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/shop-lottery/internal/store"
)

func TestRefreshTokenRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewTokenRepo(store.NewMemoryStore())
	exp := time.Now().UTC().Add(time.Hour)

	if err := repo.StoreRefresh(ctx, "uid-1", "alice@example.com", "hash-a", exp); err != nil {
		t.Fatalf("StoreRefresh: %v", err)
	}

	uid, email, err := repo.ValidateRefresh(ctx, "hash-a")
	if err != nil {
		t.Fatalf("ValidateRefresh: %v", err)
	}
	if uid != "uid-1" {
		t.Fatalf("uid = %q, want %q", uid, "uid-1")
	}
	if email != "alice@example.com" {
		t.Fatalf("email = %q, want %q", email, "alice@example.com")
	}

	t.Run("unknown hash", func(t *testing.T) {
		_, _, err := repo.ValidateRefresh(ctx, "hash-z")
		if !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("err = %v, want store.ErrNotFound", err)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		if err := repo.StoreRefresh(ctx, "uid-1", "alice@example.com", "hash-old", time.Now().UTC().Add(-time.Minute)); err != nil {
			t.Fatal(err)
		}
		_, _, err := repo.ValidateRefresh(ctx, "hash-old")
		if !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("err = %v, want store.ErrNotFound", err)
		}
	})

	t.Run("revoked token", func(t *testing.T) {
		if err := repo.RevokeByHash(ctx, "hash-a"); err != nil {
			t.Fatalf("RevokeByHash: %v", err)
		}
		_, _, err := repo.ValidateRefresh(ctx, "hash-a")
		if !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("err = %v, want store.ErrNotFound", err)
		}
	})

	t.Run("revoking an absent token is a no-op", func(t *testing.T) {
		if err := repo.RevokeByHash(ctx, "hash-never"); err != nil {
			t.Fatalf("RevokeByHash absent: %v", err)
		}
	})
}
