// Package importer owns the CSV participant import workflow: staging
// parsed rows, validating them in file order, tracking the operator's
// row selection and submitting the selected subset upstream as one
// bulk request.
package importer

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/iliyamo/quiz-event-console/internal/csvutil"
	"github.com/iliyamo/quiz-event-console/internal/model"
)

// State of one staged batch.
type State string

const (
	StateEmpty      State = "empty"
	StateLoaded     State = "loaded"
	StateSubmitting State = "submitting"
)

// ErrNothingSelected is returned by Submit when the selection is empty;
// no request is sent in that case.
var ErrNothingSelected = errors.New("0 records selected")

// Submitter sends selected rows upstream as one bulk-create request.
type Submitter interface {
	BulkInsertParticipants(ctx context.Context, rows []model.Participant) error
}

// Snapshot is a point-in-time copy of a batch for rendering.
type Snapshot struct {
	State        State             `json:"state"`
	FileName     string            `json:"fileName"`
	Rows         []model.StagedRow `json:"rows"`
	Selected     []int             `json:"selected"`
	ValidCount   int               `json:"validCount"`
	InvalidCount int               `json:"invalidCount"`
}

// Batch holds one operator's staged import. All methods are safe for
// concurrent use; the mutex stands in for the original single event
// loop, so a submit in flight blocks selection changes until it
// settles.
type Batch struct {
	mu       sync.Mutex
	state    State
	fileName string
	rows     []model.StagedRow
	selected map[int]bool
}

// NewBatch returns an empty batch.
func NewBatch() *Batch {
	return &Batch{state: StateEmpty, selected: make(map[int]bool)}
}

// Load parses and validates the file, replacing any previous staging.
// Rows are validated in file order against an accumulating duplicate
// set, and exactly the valid rows are auto-selected. A parse failure
// leaves the existing staging untouched.
func (b *Batch) Load(fileName, raw string) error {
	parsed, err := csvutil.Parse(raw)
	if err != nil {
		return err
	}

	var existingEmails, existingPhones []string
	staged := make([]model.StagedRow, 0, len(parsed))
	for _, row := range parsed {
		valid, errs := ValidateRow(row, existingEmails, existingPhones)
		if row.Email != "" {
			existingEmails = append(existingEmails, strings.ToLower(row.Email))
		}
		if row.Phone != "" {
			existingPhones = append(existingPhones, row.Phone)
		}
		staged = append(staged, model.StagedRow{Participant: row, IsValid: valid, ErrorMsgs: errs})
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateLoaded
	b.fileName = fileName
	b.rows = staged
	b.selected = make(map[int]bool)
	for i, r := range staged {
		if r.IsValid {
			b.selected[i] = true
		}
	}
	return nil
}

// ToggleRow flips row i's membership in the selection. Toggling an
// invalid or out-of-range row is a no-op; the returned bool reports
// whether anything changed.
func (b *Batch) ToggleRow(i int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i < 0 || i >= len(b.rows) || !b.rows[i].IsValid {
		return false
	}
	if b.selected[i] {
		delete(b.selected, i)
	} else {
		b.selected[i] = true
	}
	return true
}

// ToggleSelectAll clears the selection when every valid row is already
// selected, and otherwise selects exactly the valid rows.
func (b *Batch) ToggleSelectAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	valid := 0
	for _, r := range b.rows {
		if r.IsValid {
			valid++
		}
	}
	if len(b.selected) == valid {
		b.selected = make(map[int]bool)
		return
	}
	b.selected = make(map[int]bool)
	for i, r := range b.rows {
		if r.IsValid {
			b.selected[i] = true
		}
	}
}

// Submit sends the selected rows upstream. It fails fast when nothing
// is selected. On success all staging is cleared; on failure rows and
// selection stay intact so the operator can retry.
func (b *Batch) Submit(ctx context.Context, dst Submitter) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.selected) == 0 {
		return 0, ErrNothingSelected
	}

	indexes := make([]int, 0, len(b.selected))
	for i := range b.selected {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)
	rows := make([]model.Participant, 0, len(indexes))
	for _, i := range indexes {
		rows = append(rows, b.rows[i].Participant)
	}

	b.state = StateSubmitting
	if err := dst.BulkInsertParticipants(ctx, rows); err != nil {
		b.state = StateLoaded
		return 0, err
	}

	b.reset()
	return len(rows), nil
}

// Discard drops all staged state, as loading a new file would.
func (b *Batch) Discard() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reset()
}

func (b *Batch) reset() {
	b.state = StateEmpty
	b.fileName = ""
	b.rows = nil
	b.selected = make(map[int]bool)
}

// Snapshot copies the batch for rendering and auditing.
func (b *Batch) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	rows := make([]model.StagedRow, len(b.rows))
	copy(rows, b.rows)
	selected := make([]int, 0, len(b.selected))
	for i := range b.selected {
		selected = append(selected, i)
	}
	sort.Ints(selected)

	valid := 0
	for _, r := range b.rows {
		if r.IsValid {
			valid++
		}
	}
	return Snapshot{
		State:        b.state,
		FileName:     b.fileName,
		Rows:         rows,
		Selected:     selected,
		ValidCount:   valid,
		InvalidCount: len(b.rows) - valid,
	}
}
