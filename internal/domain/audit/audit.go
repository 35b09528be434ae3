package audit

import (
	"time"

	"github.com/google/uuid"
)

// Category groups audit events by the resource they concern.
type Category string

const (
	CategoryQuestion Category = "question"
	CategorySecurity Category = "security"
)

// Action is what happened to the resource.
type Action string

const (
	ActionDraft   Action = "ai_draft"
	ActionAnswer  Action = "answer"
	ActionPublish Action = "publish_ai"
	ActionEdit    Action = "edit"
	ActionClear   Action = "clear_answer"
	ActionDenied  Action = "denied"
)

// Severity of an audit event.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// ResourceQuestion is the resource type recorded for question events.
const ResourceQuestion = "question"

// Event is a single audit log row.
type Event struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Category     Category  `json:"category"`
	Action       Action    `json:"action"`
	Severity     Severity  `json:"severity"`
	ActorID      string    `json:"actor_id"`
	ActorEmail   string    `json:"actor_email"`
	ActorRole    string    `json:"actor_role"`
	ResourceID   string    `json:"resource_id"`
	ResourceType string    `json:"resource_type"`
	Description  string    `json:"description"`
	Metadata     string    `json:"metadata"`
}

// NewEvent creates an info-level event stamped with now.
// PRE: actorID and action are non-empty
// POST: Event has a fresh UUID
func NewEvent(actorID, actorEmail, actorRole string, category Category, action Action, now time.Time) Event {
	return Event{
		ID:         uuid.New().String(),
		Timestamp:  now,
		Category:   category,
		Action:     action,
		Severity:   SeverityInfo,
		ActorID:    actorID,
		ActorEmail: actorEmail,
		ActorRole:  actorRole,
	}
}

// WithSeverity sets the severity level.
func (e Event) WithSeverity(s Severity) Event {
	e.Severity = s
	return e
}

// WithResource sets resource information.
func (e Event) WithResource(resourceType, resourceID string) Event {
	e.ResourceType = resourceType
	e.ResourceID = resourceID
	return e
}

// WithDescription sets the human-readable description.
func (e Event) WithDescription(desc string) Event {
	e.Description = desc
	return e
}

// WithMetadata sets optional JSON metadata.
// PRE: metadata is valid JSON or empty
func (e Event) WithMetadata(metadata string) Event {
	e.Metadata = metadata
	return e
}
