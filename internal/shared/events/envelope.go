package events

import "time"

// Envelope is the canonical audit-event shape shared by every module.
// One envelope is appended to the module outbox per successful mutation.
type Envelope struct {
	EventID          string    `json:"event_id"`
	EventType        string    `json:"event_type"`
	SourceModule     string    `json:"source_module"`
	OccurredAt       time.Time `json:"occurred_at"`
	Epoch            uint64    `json:"epoch"`
	SchemaVersion    int       `json:"schema_version"`
	PartitionKeyPath string    `json:"partition_key_path"`
	PartitionKey     string    `json:"partition_key"`
	Data             []byte    `json:"data"`
}
