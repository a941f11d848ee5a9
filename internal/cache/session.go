// Package cache implements the per-user session cache in front of the
// document store. A session memoizes the caller's shop tag, ticket
// list and prize list so repeated reads within one session do not
// repeat range scans. Each cached field carries an explicit loaded
// flag: a legitimately empty list is cached like any other result
// instead of being mistaken for "not fetched yet".
package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iliyamo/shop-lottery/internal/metrics"
	"github.com/iliyamo/shop-lottery/internal/model"
	"github.com/iliyamo/shop-lottery/internal/repository"
)

// Session holds one user's cached reads. All methods serialize on an
// internal mutex because read-or-populate is not atomic; the mutex is
// per session, so only requests of the same user contend. Returned
// slices are shared with the cache and must not be mutated by callers.
type Session struct {
	mu  sync.Mutex
	uid string

	users   *repository.UserRepo
	tickets *repository.TicketRepo
	prizes  *repository.PrizeRepo

	shopTag   string
	tagLoaded bool

	ticketData    []model.TicketEntry
	ticketsLoaded bool

	prizeData    []model.PrizeEntry
	prizesLoaded bool

	// LastActivity is stamped by the Manager on every lookup and read
	// by its janitor sweep. Guarded by the Manager's lock, not mu.
	LastActivity time.Time
}

// ShopTag returns the caller's shop tag, fetching the account document
// on first use. A missing account surfaces repository.ErrNoShopTag and
// is not cached, so the tag loads normally once the account bootstrap
// has run.
func (s *Session) ShopTag(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shopTagLocked(ctx)
}

func (s *Session) shopTagLocked(ctx context.Context) (string, error) {
	if s.tagLoaded {
		metrics.CacheHits.Inc()
		return s.shopTag, nil
	}
	metrics.CacheMisses.Inc()
	tag, err := s.users.ShopTag(ctx, s.uid)
	if err != nil {
		return "", err
	}
	s.shopTag = tag
	s.tagLoaded = true
	return tag, nil
}

// Tickets returns the shop's ticket list, running the prefix scan only
// when the cache is cold. An empty shop caches its empty list; the
// next call is still a hit.
func (s *Session) Tickets(ctx context.Context) ([]model.TicketEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ticketsLoaded {
		metrics.CacheHits.Inc()
		return s.ticketData, nil
	}
	tag, err := s.shopTagLocked(ctx)
	if err != nil {
		return nil, err
	}
	metrics.CacheMisses.Inc()
	entries, err := s.tickets.ListByShopTag(ctx, tag)
	if err != nil {
		return nil, err
	}
	s.ticketData = entries
	s.ticketsLoaded = true
	return entries, nil
}

// Prizes returns the caller's joined prize list with the same caching
// shape as Tickets.
func (s *Session) Prizes(ctx context.Context) ([]model.PrizeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.prizesLoaded {
		metrics.CacheHits.Inc()
		return s.prizeData, nil
	}
	tag, err := s.shopTagLocked(ctx)
	if err != nil {
		return nil, err
	}
	metrics.CacheMisses.Inc()
	entries, err := s.prizes.ListByCreator(ctx, s.uid, tag)
	if err != nil {
		return nil, err
	}
	s.prizeData = entries
	s.prizesLoaded = true
	return entries, nil
}

// AppendTickets keeps a warm cache current after a known-good issuance
// instead of forcing a re-scan. The batch is appended in ascending
// code order, continuing the list's 1-based numbering; positions drift
// from a fresh scan's ordering, which only ever numbers one result. A
// cold cache is left untouched, the next read fetches everything
// anyway.
func (s *Session) AppendTickets(issued map[string]model.Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ticketsLoaded {
		return
	}
	codes := make([]string, 0, len(issued))
	for code := range issued {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		s.ticketData = append(s.ticketData, model.TicketEntry{
			Num:    len(s.ticketData) + 1,
			Code:   code,
			Ticket: issued[code],
		})
	}
}

// AppendPrizes mirrors AppendTickets for freshly created prizes.
func (s *Session) AppendPrizes(entries ...model.PrizeEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.prizesLoaded {
		return
	}
	for _, e := range entries {
		e.Num = len(s.prizeData) + 1
		s.prizeData = append(s.prizeData, e)
	}
}

// Clear resets every cached field. Call it after any mutation the
// cache cannot reconcile incrementally, such as a prize delete or a
// lifecycle transition, so the next read re-fetches.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shopTag = ""
	s.tagLoaded = false
	s.ticketData = nil
	s.ticketsLoaded = false
	s.prizeData = nil
	s.prizesLoaded = false
}

// Manager owns the sessions of all active users, keyed by uid.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	users   *repository.UserRepo
	tickets *repository.TicketRepo
	prizes  *repository.PrizeRepo
}

// NewManager creates a Manager whose sessions read through the given
// repositories.
func NewManager(users *repository.UserRepo, tickets *repository.TicketRepo, prizes *repository.PrizeRepo) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		users:    users,
		tickets:  tickets,
		prizes:   prizes,
	}
}

// Session returns the uid's session, creating one if it doesn't exist,
// and stamps its activity time.
func (m *Manager) Session(uid string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[uid]
	if !ok {
		s = &Session{
			uid:     uid,
			users:   m.users,
			tickets: m.tickets,
			prizes:  m.prizes,
		}
		m.sessions[uid] = s
	}
	s.LastActivity = time.Now()
	return s
}

// Clear removes all cached data associated with a uid, typically on
// logout.
func (m *Manager) Clear(uid string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, uid)
}

// CleanUpInactive removes sessions idle for longer than olderThan and
// reports how many it dropped.
func (m *Manager) CleanUpInactive(olderThan time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	dropped := 0
	for uid, s := range m.sessions {
		if time.Since(s.LastActivity) > olderThan {
			delete(m.sessions, uid)
			dropped++
		}
	}
	return dropped
}

// Janitor sweeps inactive sessions every interval until ctx is
// cancelled. Run it in its own goroutine.
func (m *Manager) Janitor(ctx context.Context, interval, olderThan time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if dropped := m.CleanUpInactive(olderThan); dropped > 0 {
				log.Debug().Int("dropped", dropped).Msg("session janitor sweep")
			}
		}
	}
}
