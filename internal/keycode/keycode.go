// Package keycode derives and parses the two-part key scheme
// `<shopTag>-<suffix>` shared by ticket and prize documents. Every
// function here is pure; collision checking against the store is the
// repository layer's job.
package keycode

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"unicode"
)

// ShopTagMaxLen bounds the shop tag derived from an owner's e-mail.
const ShopTagMaxLen = 5

// SuffixLen is the length of the random hex suffix in a ticket code.
const SuffixLen = 6

// Separator joins the shop tag and the suffix inside a code. Shop tags
// are restricted to [a-z0-9] so the separator can never occur inside a
// tag, which keeps prefix range scans exact even when one tag is a
// literal prefix of another (e.g. "ab" vs "abc").
const Separator = "-"

// fallbackTag is used when an e-mail local part contains no usable
// characters at all.
const fallbackTag = "shop"

// ErrEmptyPrefix is returned by PrefixBounds for an empty prefix.
var ErrEmptyPrefix = errors.New("prefix must not be empty")

// ErrPrefixOverflow is returned by PrefixBounds when the last rune of
// the prefix cannot be incremented.
var ErrPrefixOverflow = errors.New("prefix ends at the maximum code point")

// ShopTagFromEmail derives a shop tag from the owner's e-mail address:
// the local part before the first '@', lowercased, restricted to
// [a-z0-9], truncated to ShopTagMaxLen runes. An address whose local
// part filters down to nothing yields the fallback tag "shop".
func ShopTagFromEmail(email string) string {
	local := email
	if i := strings.IndexByte(email, '@'); i >= 0 {
		local = email[:i]
	}
	var b strings.Builder
	for _, r := range strings.ToLower(local) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == ShopTagMaxLen {
				break
			}
		}
	}
	if b.Len() == 0 {
		return fallbackTag
	}
	return b.String()
}

// BuildCode concatenates a shop tag and a suffix into a presentable
// code, e.g. ("alice", "0F3A9C") -> "alice-0F3A9C".
func BuildCode(shopTag, suffix string) string {
	return shopTag + Separator + suffix
}

// SplitCode is the inverse of BuildCode. Because shop tags never
// contain the separator, the first separator always marks the tag
// boundary. ok is false when the code has no separator or an empty
// part.
func SplitCode(code string) (shopTag, suffix string, ok bool) {
	shopTag, suffix, ok = strings.Cut(code, Separator)
	if !ok || shopTag == "" || suffix == "" {
		return "", "", false
	}
	return shopTag, suffix, true
}

// NewSuffix samples three bytes from crypto/rand and renders them as
// six uppercase hexadecimal characters, giving 2^24 possible suffixes
// per shop tag.
func NewSuffix() (string, error) {
	var b [3]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(b[:])), nil
}

// PrefixBounds translates a key prefix into the [start, stop) pair that
// selects exactly the keys beginning with that prefix from a store
// offering only ordered >=/< range queries: start is the prefix itself
// and stop is the prefix with its final rune's code point incremented.
// UTF-8 preserves code point order bytewise, so the pair is valid for
// byte-ordered key comparison as well.
func PrefixBounds(prefix string) (start, stop string, err error) {
	if prefix == "" {
		return "", "", ErrEmptyPrefix
	}
	runes := []rune(prefix)
	last := runes[len(runes)-1]
	if last >= unicode.MaxRune {
		return "", "", ErrPrefixOverflow
	}
	runes[len(runes)-1] = last + 1
	return prefix, string(runes), nil
}

// TicketPrefix returns the scan prefix selecting every ticket code of a
// shop: the tag followed by the separator.
func TicketPrefix(shopTag string) string {
	return shopTag + Separator
}
