// Package queue defines message payloads exchanged over the message broker.
package queue

// ParticipantsImportedEvent is published after a bulk import lands
// upstream successfully. It carries enough for downstream consumers to
// log or notify without querying the backend again.
type ParticipantsImportedEvent struct {
	JobID      string `json:"job_id"`
	OperatorID string `json:"operator_id"`
	FileName   string `json:"file_name"`
	Inserted   int    `json:"inserted"`
	ImportedAt string `json:"imported_at"`
}
