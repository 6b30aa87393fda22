package service

import (
	"sync"
	"time"

	"go-merchant/internal/models"
)

// SyncStatusStore tracks per-merchant sync state: the in-flight flag, the
// last result, a bounded history and the next scheduled run. It is owned by
// the service graph, not package-level state, so tests get clean instances.
type SyncStatusStore struct {
	mu           sync.Mutex
	historyLimit int
	merchants    map[string]*merchantState
}

type merchantState struct {
	isActive          bool
	lastSync          *models.SyncResult
	nextScheduledSync *time.Time
	history           []models.SyncResult
}

func NewSyncStatusStore(historyLimit int) *SyncStatusStore {
	if historyLimit <= 0 {
		historyLimit = 50
	}
	return &SyncStatusStore{
		historyLimit: historyLimit,
		merchants:    make(map[string]*merchantState),
	}
}

func (s *SyncStatusStore) state(merchantID string) *merchantState {
	st, ok := s.merchants[merchantID]
	if !ok {
		st = &merchantState{}
		s.merchants[merchantID] = st
	}
	return st
}

// TryActivate marks the merchant as syncing. Returns false if a run is
// already in flight; the flag and the check are one critical section so two
// callers can never both win.
func (s *SyncStatusStore) TryActivate(merchantID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(merchantID)
	if st.isActive {
		return false
	}
	st.isActive = true
	return true
}

func (s *SyncStatusStore) Deactivate(merchantID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state(merchantID).isActive = false
}

// RecordResult stores the result as the merchant's lastSync and appends it to
// the bounded history, evicting the oldest entries.
func (s *SyncStatusStore) RecordResult(result *models.SyncResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(result.MerchantID)
	st.lastSync = result
	st.history = append(st.history, *result)
	if len(st.history) > s.historyLimit {
		st.history = st.history[len(st.history)-s.historyLimit:]
	}
}

// LastSync returns the most recent result, or nil if the merchant has never
// synced.
func (s *SyncStatusStore) LastSync(merchantID string) *models.SyncResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.merchants[merchantID]; ok {
		return st.lastSync
	}
	return nil
}

func (s *SyncStatusStore) SetNextScheduled(merchantID string, next *time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state(merchantID).nextScheduledSync = next
}

// Status never errors for an unknown merchant; it returns the "never synced"
// default shape instead.
func (s *SyncStatusStore) Status(merchantID string) models.SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.merchants[merchantID]
	if !ok {
		return models.SyncStatus{}
	}
	return models.SyncStatus{
		IsActive:          st.isActive,
		LastSync:          st.lastSync,
		NextScheduledSync: st.nextScheduledSync,
	}
}

// History returns up to limit results, newest first. limit <= 0 returns all
// retained entries.
func (s *SyncStatusStore) History(merchantID string, limit int) []models.SyncResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.merchants[merchantID]
	if !ok {
		return nil
	}

	n := len(st.history)
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]models.SyncResult, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, st.history[i])
	}
	return out
}

// Statistics aggregates run counts and durations across all merchants. The
// caller fills ScheduledMerchants from the scheduler.
func (s *SyncStatusStore) Statistics() models.SyncStatistics {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats models.SyncStatistics
	var totalDuration int64

	for _, st := range s.merchants {
		if st.isActive {
			stats.ActiveSyncs++
		}
		for _, res := range st.history {
			stats.TotalSyncs++
			totalDuration += res.DurationMs
			if len(res.Errors) == 0 {
				stats.SuccessfulSyncs++
			} else {
				stats.FailedSyncs++
			}
		}
	}

	if stats.TotalSyncs > 0 {
		stats.AverageDurationMs = float64(totalDuration) / float64(stats.TotalSyncs)
	}
	return stats
}
