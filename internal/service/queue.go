package service

import (
	"sync"

	"go-merchant/internal/models"
)

// queuedUpdate wraps an event with its delivery retry counter. The counter
// belongs to the relay, not the event payload.
type queuedUpdate struct {
	update  models.CrossAppUpdate
	retries int
}

// UpdateQueue is the in-memory FIFO buffer of pending cross-app updates.
// Unbounded and not persisted across restarts; see the relay's delivery
// semantics for the accepted loss modes.
type UpdateQueue struct {
	mu    sync.Mutex
	items []queuedUpdate
}

func NewUpdateQueue() *UpdateQueue {
	return &UpdateQueue{}
}

func (q *UpdateQueue) Push(update models.CrossAppUpdate) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = append(q.items, queuedUpdate{update: update})
}

// pushRetry re-appends a failed delivery to the tail; redelivered events may
// therefore run after newer ones.
func (q *UpdateQueue) pushRetry(item queuedUpdate) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = append(q.items, item)
}

// PopBatch removes and returns up to n items in FIFO order.
func (q *UpdateQueue) PopBatch(n int) []queuedUpdate {
	q.mu.Lock()
	defer q.mu.Unlock()

	if n <= 0 || len(q.items) == 0 {
		return nil
	}
	if n > len(q.items) {
		n = len(q.items)
	}

	batch := make([]queuedUpdate, n)
	copy(batch, q.items[:n])
	q.items = q.items[n:]
	return batch
}

func (q *UpdateQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}

func (q *UpdateQueue) PendingForMerchant(merchantID string) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	count := 0
	for _, item := range q.items {
		if item.update.MerchantID == merchantID {
			count++
		}
	}
	return count
}

func (q *UpdateQueue) PendingByType() map[models.UpdateType]int {
	q.mu.Lock()
	defer q.mu.Unlock()

	counts := make(map[models.UpdateType]int)
	for _, item := range q.items {
		counts[item.update.Type]++
	}
	return counts
}
