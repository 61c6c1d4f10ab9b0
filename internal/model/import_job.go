package model

import "time"

// Import job status values stored in the audit table.
const (
	JobSubmitted = "submitted"
	JobCompleted = "completed"
	JobFailed    = "failed"
)

// ImportJob is one audited bulk-import attempt. The console records a
// row per submission so operators can review what was pushed upstream
// and when; the participants themselves live in the backend only.
//
// Fields:
//  ID           – uuid assigned when the submission starts.
//  OperatorID   – userId claim of the operator who submitted.
//  FileName     – original name of the uploaded CSV.
//  TotalRows    – rows parsed from the file.
//  ValidRows    – rows that passed validation.
//  InvalidRows  – rows that failed validation.
//  SubmittedRows – rows actually selected and sent upstream.
//  Status       – submitted | completed | failed.
//  Error        – upstream failure message, empty on success.
//  CreatedAt    – when the submission started.
//  FinishedAt   – when the upstream call settled (nullable).
type ImportJob struct {
	ID            string     `json:"id"`
	OperatorID    string     `json:"operatorId"`
	FileName      string     `json:"fileName"`
	TotalRows     int        `json:"totalRows"`
	ValidRows     int        `json:"validRows"`
	InvalidRows   int        `json:"invalidRows"`
	SubmittedRows int        `json:"submittedRows"`
	Status        string     `json:"status"`
	Error         string     `json:"error,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	FinishedAt    *time.Time `json:"finishedAt,omitempty"`
}
