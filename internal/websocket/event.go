package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// TopicData is the shared topic for data-change events; scan progress uses
// per-session topics named by the scan session ID.
const TopicData = "data"

// EventType represents the type of event
type EventType string

const (
	EventTypeCreated   EventType = "created"
	EventTypeUpdated   EventType = "updated"
	EventTypeDeleted   EventType = "deleted"
	EventTypeProgress  EventType = "progress"
	EventTypeCompleted EventType = "completed"
	EventTypeFailed    EventType = "failed"
	EventTypeProcessed EventType = "processed"
	EventTypeImported  EventType = "imported"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeTransaction EntityType = "transaction"
	EntityTypeBudget      EntityType = "budget"
	EntityTypeRecurring   EntityType = "recurring"
	EntityTypeSettings    EntityType = "settings"
	EntityTypeScan        EntityType = "scan"
	EntityTypeBackup      EntityType = "backup"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "transaction.created"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "transaction"
	Payload   interface{} `json:"payload"`   // Full entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ScanProgress carries recognition progress for a scan session
type ScanProgress struct {
	SessionID string `json:"sessionId"`
	Percent   int    `json:"percent"`
	Status    string `json:"status"`
}

// ScanProgressEvent creates a scan.progress event
func ScanProgressEvent(payload ScanProgress) Event {
	return NewEvent(EventTypeProgress, EntityTypeScan, payload)
}

// ScanCompleted creates a scan.completed event
func ScanCompleted(payload interface{}) Event {
	return NewEvent(EventTypeCompleted, EntityTypeScan, payload)
}

// ScanFailed creates a scan.failed event
func ScanFailed(payload interface{}) Event {
	return NewEvent(EventTypeFailed, EntityTypeScan, payload)
}

// TransactionCreated creates a transaction.created event
func TransactionCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeTransaction, payload)
}

// TransactionDeleted creates a transaction.deleted event
func TransactionDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeTransaction, payload)
}

// BudgetCreated creates a budget.created event
func BudgetCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeBudget, payload)
}

// BudgetUpdated creates a budget.updated event
func BudgetUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeBudget, payload)
}

// BudgetDeleted creates a budget.deleted event
func BudgetDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeBudget, payload)
}

// RecurringCreated creates a recurring.created event
func RecurringCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeRecurring, payload)
}

// RecurringUpdated creates a recurring.updated event
func RecurringUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeRecurring, payload)
}

// RecurringDeleted creates a recurring.deleted event
func RecurringDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeRecurring, payload)
}

// RecurringProcessed creates a recurring.processed event after a due run
func RecurringProcessed(payload interface{}) Event {
	return NewEvent(EventTypeProcessed, EntityTypeRecurring, payload)
}

// SettingsUpdated creates a settings.updated event
func SettingsUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeSettings, payload)
}

// BackupImported creates a backup.imported event after a full state replace
func BackupImported(payload interface{}) Event {
	return NewEvent(EventTypeImported, EntityTypeBackup, payload)
}
