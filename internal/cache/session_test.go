package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/shop-lottery/internal/repository"
	"github.com/iliyamo/shop-lottery/internal/store"
)

// countingStore counts reads so tests can assert whether the cache or
// the store answered.
type countingStore struct {
	store.Store
	scans int
	gets  int
}

func (c *countingStore) Scan(ctx context.Context, collection, start, stop string) ([]store.KeyedDoc, error) {
	c.scans++
	return c.Store.Scan(ctx, collection, start, stop)
}

func (c *countingStore) Get(ctx context.Context, collection, key string) ([]byte, error) {
	c.gets++
	return c.Store.Get(ctx, collection, key)
}

type fixture struct {
	cs      *countingStore
	users   *repository.UserRepo
	tickets *repository.TicketRepo
	prizes  *repository.PrizeRepo
	mgr     *Manager
}

func newFixture() *fixture {
	cs := &countingStore{Store: store.NewMemoryStore()}
	users := repository.NewUserRepo(cs)
	tickets := repository.NewTicketRepo(cs)
	prizes := repository.NewPrizeRepo(cs)
	return &fixture{
		cs:      cs,
		users:   users,
		tickets: tickets,
		prizes:  prizes,
		mgr:     NewManager(users, tickets, prizes),
	}
}

func TestSessionTicketsCaching(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	if _, err := f.users.EnsureAccount(ctx, "uid-1", "alice@example.com"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.tickets.Issue(ctx, "alice", 2, "buyer@example.com", ""); err != nil {
		t.Fatal(err)
	}

	sess := f.mgr.Session("uid-1")
	entries, err := sess.Tickets(ctx)
	if err != nil {
		t.Fatalf("Tickets: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("listed %d tickets, want 2", len(entries))
	}
	if f.cs.scans != 1 {
		t.Fatalf("scans after first read = %d, want 1", f.cs.scans)
	}

	t.Run("second read is a hit", func(t *testing.T) {
		if _, err := sess.Tickets(ctx); err != nil {
			t.Fatal(err)
		}
		if f.cs.scans != 1 {
			t.Fatalf("scans after second read = %d, want 1", f.cs.scans)
		}
	})

	t.Run("clear forces a re-scan", func(t *testing.T) {
		sess.Clear()
		if _, err := sess.Tickets(ctx); err != nil {
			t.Fatal(err)
		}
		if f.cs.scans != 2 {
			t.Fatalf("scans after clear = %d, want 2", f.cs.scans)
		}
	})
}

// An empty shop must cache its empty list; emptiness is not "not yet
// loaded".
func TestSessionCachesEmptyList(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	if _, err := f.users.EnsureAccount(ctx, "uid-1", "alice@example.com"); err != nil {
		t.Fatal(err)
	}

	sess := f.mgr.Session("uid-1")
	entries, err := sess.Tickets(ctx)
	if err != nil {
		t.Fatalf("Tickets: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("listed %d tickets, want 0", len(entries))
	}
	if f.cs.scans != 1 {
		t.Fatalf("scans = %d, want 1", f.cs.scans)
	}
	if _, err := sess.Tickets(ctx); err != nil {
		t.Fatal(err)
	}
	if f.cs.scans != 1 {
		t.Fatalf("empty result was not cached, scans = %d", f.cs.scans)
	}
}

func TestSessionShopTag(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	sess := f.mgr.Session("uid-1")

	if _, err := sess.ShopTag(ctx); !errors.Is(err, repository.ErrNoShopTag) {
		t.Fatalf("err = %v, want ErrNoShopTag", err)
	}

	if _, err := f.users.EnsureAccount(ctx, "uid-1", "alice@example.com"); err != nil {
		t.Fatal(err)
	}
	tag, err := sess.ShopTag(ctx)
	if err != nil {
		t.Fatalf("ShopTag after bootstrap: %v", err)
	}
	if tag != "alice" {
		t.Fatalf("tag = %q, want %q", tag, "alice")
	}

	gets := f.cs.gets
	if _, err := sess.ShopTag(ctx); err != nil {
		t.Fatal(err)
	}
	if f.cs.gets != gets {
		t.Fatalf("cached tag read hit the store, gets %d -> %d", gets, f.cs.gets)
	}
}

func TestSessionAppendTickets(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	if _, err := f.users.EnsureAccount(ctx, "uid-1", "alice@example.com"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.tickets.Issue(ctx, "alice", 1, "", ""); err != nil {
		t.Fatal(err)
	}

	sess := f.mgr.Session("uid-1")
	if _, err := sess.Tickets(ctx); err != nil {
		t.Fatal(err)
	}
	if f.cs.scans != 1 {
		t.Fatalf("scans = %d, want 1", f.cs.scans)
	}

	issued, err := f.tickets.Issue(ctx, "alice", 2, "", "")
	if err != nil {
		t.Fatal(err)
	}
	sess.AppendTickets(issued)

	entries, err := sess.Tickets(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if f.cs.scans != 1 {
		t.Fatalf("append triggered a scan, scans = %d", f.cs.scans)
	}
	if len(entries) != 3 {
		t.Fatalf("listed %d tickets after append, want 3", len(entries))
	}
	for i, e := range entries {
		if e.Num != i+1 {
			t.Errorf("entry %d has Num %d, numbering must continue", i, e.Num)
		}
	}

	t.Run("append to a cold cache is a no-op", func(t *testing.T) {
		cold := f.mgr.Session("uid-2")
		if _, err := f.users.EnsureAccount(ctx, "uid-2", "bob@example.com"); err != nil {
			t.Fatal(err)
		}
		more, err := f.tickets.Issue(ctx, "bob", 1, "", "")
		if err != nil {
			t.Fatal(err)
		}
		cold.AppendTickets(more)
		entries, err := cold.Tickets(ctx)
		if err != nil {
			t.Fatal(err)
		}
		// The read came from the store, not from a half-built cache.
		if len(entries) != 1 {
			t.Fatalf("listed %d tickets, want 1", len(entries))
		}
	})
}

func TestSessionPrizeFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	if _, err := f.users.EnsureAccount(ctx, "uid-1", "carol@example.com"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.prizes.Create(ctx, "uid-1", "carol", "mug", "", "", 3); err != nil {
		t.Fatal(err)
	}
	doomed, err := f.prizes.Create(ctx, "uid-1", "carol", "poster", "", "", 1)
	if err != nil {
		t.Fatal(err)
	}

	sess := f.mgr.Session("uid-1")
	entries, err := sess.Prizes(ctx)
	if err != nil {
		t.Fatalf("Prizes: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("listed %d prizes, want 2", len(entries))
	}
	scans := f.cs.scans

	t.Run("append keeps the cache warm", func(t *testing.T) {
		entry, err := f.prizes.Create(ctx, "uid-1", "carol", "shirt", "", "", 5)
		if err != nil {
			t.Fatal(err)
		}
		sess.AppendPrizes(entry)
		entries, err := sess.Prizes(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if f.cs.scans != scans {
			t.Fatalf("append triggered a scan")
		}
		if len(entries) != 3 || entries[2].Num != 3 {
			t.Fatalf("entries after append = %d, last Num = %d", len(entries), entries[len(entries)-1].Num)
		}
	})

	t.Run("delete then clear evicts the cached list", func(t *testing.T) {
		if err := f.prizes.Delete(ctx, "uid-1", doomed.ID); err != nil {
			t.Fatal(err)
		}
		sess.Clear()
		entries, err := sess.Prizes(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if f.cs.scans == scans {
			t.Fatal("list after clear did not re-fetch")
		}
		for _, e := range entries {
			if e.ID == doomed.ID {
				t.Fatalf("deleted prize %q still listed", doomed.ID)
			}
		}
		if len(entries) != 2 {
			t.Fatalf("listed %d prizes after delete, want 2", len(entries))
		}
	})
}

func TestManagerSessions(t *testing.T) {
	f := newFixture()

	a1 := f.mgr.Session("uid-a")
	a2 := f.mgr.Session("uid-a")
	if a1 != a2 {
		t.Fatal("same uid produced different sessions")
	}
	b := f.mgr.Session("uid-b")
	if a1 == b {
		t.Fatal("different uids share a session")
	}

	t.Run("janitor drops idle sessions only", func(t *testing.T) {
		a1.LastActivity = time.Now().Add(-2 * time.Hour)
		dropped := f.mgr.CleanUpInactive(time.Hour)
		if dropped != 1 {
			t.Fatalf("dropped = %d, want 1", dropped)
		}
		if f.mgr.Session("uid-b") != b {
			t.Error("active session was dropped")
		}
		if f.mgr.Session("uid-a") == a1 {
			t.Error("idle session survived the sweep")
		}
	})

	t.Run("clear drops the session", func(t *testing.T) {
		f.mgr.Clear("uid-b")
		if f.mgr.Session("uid-b") == b {
			t.Error("cleared session still served")
		}
	})
}
