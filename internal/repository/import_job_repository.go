// Package repository persists the console's own records. Participants,
// schools and users live in the backend; the only local table is the
// audit log of bulk-import submissions.
package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/quiz-event-console/internal/model"
)

// ImportJobRepo writes and reads the 'import_jobs' audit table.
type ImportJobRepo struct{ DB *sql.DB }

func NewImportJobRepo(db *sql.DB) *ImportJobRepo { return &ImportJobRepo{DB: db} }

// Insert records a submission the moment it starts.
func (r *ImportJobRepo) Insert(ctx context.Context, job model.ImportJob) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO import_jobs
		 (id, operator_id, file_name, total_rows, valid_rows, invalid_rows, submitted_rows, status, created_at)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		job.ID, job.OperatorID, job.FileName,
		job.TotalRows, job.ValidRows, job.InvalidRows, job.SubmittedRows,
		job.Status, job.CreatedAt.UTC())
	return err
}

// Finish marks a job completed or failed once the upstream call
// settles.
func (r *ImportJobRepo) Finish(ctx context.Context, jobID, status, errMsg string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE import_jobs SET status=?, error=?, finished_at=NOW() WHERE id=?",
		status, errMsg, jobID)
	return err
}

// ListByOperator returns the operator's most recent jobs, newest first.
func (r *ImportJobRepo) ListByOperator(ctx context.Context, operatorID string, limit int) ([]model.ImportJob, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, operator_id, file_name, total_rows, valid_rows, invalid_rows, submitted_rows,
		        status, COALESCE(error,''), created_at, finished_at
		 FROM import_jobs WHERE operator_id=? ORDER BY created_at DESC LIMIT ?`,
		operatorID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []model.ImportJob
	for rows.Next() {
		var (
			j        model.ImportJob
			finished sql.NullTime
		)
		if err := rows.Scan(&j.ID, &j.OperatorID, &j.FileName,
			&j.TotalRows, &j.ValidRows, &j.InvalidRows, &j.SubmittedRows,
			&j.Status, &j.Error, &j.CreatedAt, &finished); err != nil {
			return nil, err
		}
		if finished.Valid {
			t := finished.Time.UTC()
			j.FinishedAt = &t
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}
