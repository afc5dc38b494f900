// Package queue carries committed registration changes over RabbitMQ so
// off-process consumers (audit log, analytics) can observe them without
// querying the primary database.
package queue

// RegistrationChangedEvent is the broker payload for one committed
// transition. ApprovedCount is the event's count after the transition so
// consumers need no follow-up query.
type RegistrationChangedEvent struct {
	EventID        uint64 `json:"event_id"`
	RegistrationID uint64 `json:"registration_id"`
	ParticipantID  uint64 `json:"participant_id"`
	Status         string `json:"status"`
	ApprovedCount  int    `json:"approved_count"`
	OccurredAt     string `json:"occurred_at"`
}

// registrationQueueName is the durable queue all changes are published to.
const registrationQueueName = "registration.changed"
