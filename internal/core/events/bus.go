// Package events is a small in-process pub/sub bus. Services publish domain
// events (lead created, status changed, payment recorded) and listeners such
// as the reminder job or future integrations subscribe without coupling the
// services to them.
package events

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event names published by the CRM services.
const (
	LeadCreated     = "lead.created"
	LeadAssigned    = "lead.assigned"
	StatusChanged   = "lead.status_changed"
	PaymentRecorded = "lead.payment_recorded"
	MessageSent     = "whatsapp.message_sent"
)

// Event is a domain event with a loosely typed payload.
type Event struct {
	Name        string
	WorkspaceID uuid.UUID
	LeadID      uuid.UUID
	Payload     map[string]interface{}
	OccurredAt  time.Time
}

// Handler receives published events. Handlers run on the publisher's
// goroutine and must not block.
type Handler func(evt Event)

// Bus fans published events out to subscribed handlers.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[string][]Handler),
	}
}

// Subscribe registers a handler for an event name. "*" subscribes to all.
func (b *Bus) Subscribe(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], h)
}

// Publish delivers the event to every matching handler. A panicking handler
// is logged and skipped so one bad listener cannot take down a request.
func (b *Bus) Publish(evt Event) {
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now()
	}

	b.mu.RLock()
	matched := make([]Handler, 0, len(b.handlers[evt.Name])+len(b.handlers["*"]))
	matched = append(matched, b.handlers[evt.Name]...)
	matched = append(matched, b.handlers["*"]...)
	b.mu.RUnlock()

	for _, h := range matched {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("⚠️ event handler panicked on %s: %v", evt.Name, r)
				}
			}()
			h(evt)
		}()
	}
}
