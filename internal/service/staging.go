package service

import (
	"sync"
	"time"

	"github.com/escrowhq/escrow_bot/internal/models"
)

type stagingKey struct {
	userID  int64
	tradeID string
}

type stagedDeal struct {
	deal      models.ParsedDeal
	expiresAt time.Time
}

// stagingStore holds crypto deals awaiting a fee selection, keyed by
// (submitter, trade id). Entries are one-shot: Take removes under the lock,
// so of two concurrent selections the first committer wins and the second
// sees a stale entry. A newer submission with the same key supersedes.
type stagingStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	deals map[stagingKey]stagedDeal
}

func newStagingStore(ttl time.Duration) *stagingStore {
	return &stagingStore{
		ttl:   ttl,
		deals: make(map[stagingKey]stagedDeal),
	}
}

func (s *stagingStore) Put(userID int64, deal models.ParsedDeal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for k, v := range s.deals {
		if now.After(v.expiresAt) {
			delete(s.deals, k)
		}
	}

	s.deals[stagingKey{userID: userID, tradeID: deal.TradeID}] = stagedDeal{
		deal:      deal,
		expiresAt: now.Add(s.ttl),
	}
}

func (s *stagingStore) Take(userID int64, tradeID string) (models.ParsedDeal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := stagingKey{userID: userID, tradeID: tradeID}
	staged, ok := s.deals[key]
	if !ok {
		return models.ParsedDeal{}, false
	}
	delete(s.deals, key)
	if time.Now().After(staged.expiresAt) {
		return models.ParsedDeal{}, false
	}
	return staged.deal, true
}
