package keycode

import (
	"regexp"
	"strings"
	"testing"
)

func TestShopTagFromEmail(t *testing.T) {
	cases := []struct {
		email string
		want  string
	}{
		{"alice@example.com", "alice"},
		{"bob@example.com", "bob"},
		{"charlotte@example.com", "charl"}, // truncated to 5
		{"A.B-C@example.com", "abc"},       // lowercased, separators stripped
		{"x@example.com", "x"},
		{"1234567@example.com", "12345"},
		{"---@example.com", "shop"}, // nothing usable left
		{"no-at-sign", "noats"},
		{"", "shop"},
	}
	for _, tc := range cases {
		if got := ShopTagFromEmail(tc.email); got != tc.want {
			t.Errorf("ShopTagFromEmail(%q) = %q, want %q", tc.email, got, tc.want)
		}
	}
}

func TestShopTagAlphabet(t *testing.T) {
	// Tags must never contain the separator, otherwise prefix scans
	// for one shop could swallow another shop's keys.
	for _, email := range []string{"a-b@x.com", "shop-1@x.com", "über@x.com", "李雷@x.com"} {
		tag := ShopTagFromEmail(email)
		if strings.Contains(tag, Separator) {
			t.Errorf("tag %q for %q contains separator", tag, email)
		}
		if tag == "" {
			t.Errorf("empty tag for %q", email)
		}
	}
}

func TestBuildAndSplitCode(t *testing.T) {
	code := BuildCode("alice", "0F3A9C")
	if code != "alice-0F3A9C" {
		t.Fatalf("BuildCode = %q", code)
	}
	tag, suffix, ok := SplitCode(code)
	if !ok || tag != "alice" || suffix != "0F3A9C" {
		t.Fatalf("SplitCode(%q) = (%q, %q, %v)", code, tag, suffix, ok)
	}

	t.Run("suffix with separators", func(t *testing.T) {
		// Prize keys append a UUID which itself contains dashes; the
		// first separator still marks the tag boundary.
		tag, rest, ok := SplitCode("bob-0d9f2a34-aaaa-bbbb-cccc-001122334455")
		if !ok || tag != "bob" || rest != "0d9f2a34-aaaa-bbbb-cccc-001122334455" {
			t.Fatalf("got (%q, %q, %v)", tag, rest, ok)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		for _, code := range []string{"", "alice", "-0F3A9C", "alice-"} {
			if _, _, ok := SplitCode(code); ok {
				t.Errorf("SplitCode(%q) unexpectedly ok", code)
			}
		}
	})
}

func TestNewSuffix(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9A-F]{6}$`)
	seen := make(map[string]bool)
	for i := 0; i < 64; i++ {
		s, err := NewSuffix()
		if err != nil {
			t.Fatalf("NewSuffix: %v", err)
		}
		if !pattern.MatchString(s) {
			t.Fatalf("suffix %q does not match %v", s, pattern)
		}
		seen[s] = true
	}
	// 64 draws from a 2^24 space colliding down to a single value would
	// mean the generator is broken.
	if len(seen) < 2 {
		t.Fatalf("no variation across %d suffixes", 64)
	}
}

func TestPrefixBounds(t *testing.T) {
	cases := []struct {
		prefix string
		start  string
		stop   string
	}{
		{"abc", "abc", "abd"},
		{"alice-", "alice-", "alice."}, // '-' + 1 == '.'
		{"z", "z", "{"},
		{"a9", "a9", "a:"},
	}
	for _, tc := range cases {
		start, stop, err := PrefixBounds(tc.prefix)
		if err != nil {
			t.Fatalf("PrefixBounds(%q): %v", tc.prefix, err)
		}
		if start != tc.start || stop != tc.stop {
			t.Errorf("PrefixBounds(%q) = (%q, %q), want (%q, %q)",
				tc.prefix, start, stop, tc.start, tc.stop)
		}
	}

	t.Run("ordering property", func(t *testing.T) {
		// Every string beginning with the prefix sorts inside
		// [start, stop); the first key of the successor tag does not.
		start, stop, err := PrefixBounds("abc")
		if err != nil {
			t.Fatal(err)
		}
		for _, k := range []string{"abc", "abc-000000", "abc-FFFFFF", "abczzz"} {
			if k < start || k >= stop {
				t.Errorf("key %q outside [%q, %q)", k, start, stop)
			}
		}
		for _, k := range []string{"abd", "abd-000000", "abe"} {
			if k < stop {
				t.Errorf("key %q unexpectedly inside [%q, %q)", k, start, stop)
			}
		}
	})

	t.Run("errors", func(t *testing.T) {
		if _, _, err := PrefixBounds(""); err != ErrEmptyPrefix {
			t.Errorf("empty prefix: err = %v", err)
		}
		if _, _, err := PrefixBounds("a" + string(rune(0x10FFFF))); err != ErrPrefixOverflow {
			t.Errorf("max rune: err = %v", err)
		}
	})
}

func TestTicketPrefixExcludesNeighbourTags(t *testing.T) {
	// Tag "ab" must not see tag "abc"'s tickets: the separator sorts
	// the two ranges apart.
	start, stop, err := PrefixBounds(TicketPrefix("ab"))
	if err != nil {
		t.Fatal(err)
	}
	inside := "ab-1A2B3C"
	outside := "abc-1A2B3C"
	if inside < start || inside >= stop {
		t.Errorf("own ticket %q outside [%q, %q)", inside, start, stop)
	}
	if outside >= start && outside < stop {
		t.Errorf("foreign ticket %q inside [%q, %q)", outside, start, stop)
	}
}
