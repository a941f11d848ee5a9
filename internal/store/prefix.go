package store

import (
	"context"

	"github.com/iliyamo/shop-lottery/internal/keycode"
)

// ScanPrefix retrieves every document whose key starts with prefix,
// ascending by key. The store offers no native "starts with" query, so
// the prefix is translated into a [start, stop) bound pair over the
// lexicographic key order and executed as a plain range scan.
func ScanPrefix(ctx context.Context, s Store, collection, prefix string) ([]KeyedDoc, error) {
	start, stop, err := keycode.PrefixBounds(prefix)
	if err != nil {
		return nil, err
	}
	return s.Scan(ctx, collection, start, stop)
}
