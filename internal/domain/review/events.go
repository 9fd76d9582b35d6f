package review

import (
	"context"
	"sync"
	"time"
)

const (
	EventReviewSubmitted    = "review.submitted"
	EventReviewAcknowledged = "review.acknowledged"
)

// Event is emitted once per completed transition. The engine has no
// knowledge of how, or whether, subscribers deliver it further.
type Event struct {
	Type         string
	ReviewID     string
	CycleID      string
	EmployeeID   string
	ReviewerID   string
	OverallScore float64
	At           time.Time
}

type Subscriber func(ctx context.Context, event Event)

type Hub struct {
	mu          sync.RWMutex
	subscribers []Subscriber
}

func NewHub() *Hub {
	return &Hub{}
}

func (h *Hub) Subscribe(fn Subscriber) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribers = append(h.subscribers, fn)
}

func (h *Hub) Publish(ctx context.Context, event Event) {
	h.mu.RLock()
	subscribers := make([]Subscriber, len(h.subscribers))
	copy(subscribers, h.subscribers)
	h.mu.RUnlock()

	for _, fn := range subscribers {
		fn(ctx, event)
	}
}
