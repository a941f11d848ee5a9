package store

import (
	"context"
	"testing"

	"github.com/iliyamo/shop-lottery/internal/keycode"
)

func TestScanPrefix(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for _, k := range []string{"abc-111", "abc-222", "abd-333"} {
		if err := s.Set(ctx, "ticket-info", k, []byte(`{}`)); err != nil {
			t.Fatal(err)
		}
	}

	docs, err := ScanPrefix(ctx, s, "ticket-info", "abc")
	if err != nil {
		t.Fatalf("ScanPrefix: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d docs, want 2", len(docs))
	}
	if docs[0].Key != "abc-111" || docs[1].Key != "abc-222" {
		t.Fatalf("keys = [%s %s], want ascending abc-111, abc-222", docs[0].Key, docs[1].Key)
	}

	t.Run("empty prefix rejected", func(t *testing.T) {
		if _, err := ScanPrefix(ctx, s, "ticket-info", ""); err != keycode.ErrEmptyPrefix {
			t.Fatalf("err = %v, want ErrEmptyPrefix", err)
		}
	})

	t.Run("no matches", func(t *testing.T) {
		docs, err := ScanPrefix(ctx, s, "ticket-info", "zzz")
		if err != nil {
			t.Fatalf("ScanPrefix: %v", err)
		}
		if len(docs) != 0 {
			t.Fatalf("got %d docs, want 0", len(docs))
		}
	})

	t.Run("tag prefix of another tag", func(t *testing.T) {
		// Shop "ab" must not see shop "abc"'s tickets when scanning
		// with the separator included.
		if err := s.Set(ctx, "ticket-info", "ab-9A9A9A", []byte(`{}`)); err != nil {
			t.Fatal(err)
		}
		docs, err := ScanPrefix(ctx, s, "ticket-info", keycode.TicketPrefix("ab"))
		if err != nil {
			t.Fatalf("ScanPrefix: %v", err)
		}
		if len(docs) != 1 || docs[0].Key != "ab-9A9A9A" {
			t.Fatalf("docs = %+v, want only ab-9A9A9A", docs)
		}
	})
}
