// Package memory holds an in-memory alert sink for tests and dev mode.
package memory

import (
	"context"
	"fmt"
	"sync"

	"gastos/internal/amqp"
)

type Sink struct {
	mu      sync.Mutex
	records []*amqp.BudgetAlertMessage
}

func New() *Sink {
	return &Sink{}
}

// Append stores the alert and returns a synthetic row reference.
func (s *Sink) Append(_ context.Context, msg *amqp.BudgetAlertMessage) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, msg)
	return fmt.Sprintf("mem:%d", len(s.records)), nil
}

// Records returns a copy of everything appended so far.
func (s *Sink) Records() []*amqp.BudgetAlertMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*amqp.BudgetAlertMessage(nil), s.records...)
}
