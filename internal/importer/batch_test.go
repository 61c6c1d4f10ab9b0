package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/iliyamo/quiz-event-console/internal/model"
)

// fakeSubmitter records what Submit hands it and can be primed to fail.
type fakeSubmitter struct {
	rows  []model.Participant
	calls int
	err   error
}

func (f *fakeSubmitter) BulkInsertParticipants(_ context.Context, rows []model.Participant) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.rows = rows
	return nil
}

// testCSV builds a file with n valid rows followed by one invalid row
// (duplicate email of row 0).
func testCSV(n int) string {
	var b strings.Builder
	b.WriteString("name,email,phone,dob,class,school,hometown,fathername,type\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "Player Number%d,p%d@example.com,98765432%02d,2010-01-01,7,Central School,Pune,Father Name%d,individual\n", i, i, i, i)
	}
	b.WriteString("Dupe Player,p0@example.com,9999999999,2010-01-01,7,Central School,Pune,Father Dupe,individual\n")
	return b.String()
}

func loadBatch(t *testing.T, n int) *Batch {
	t.Helper()
	b := NewBatch()
	if err := b.Load("players.csv", testCSV(n)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return b
}

func TestLoadAutoSelectsValidRows(t *testing.T) {
	t.Parallel()

	b := loadBatch(t, 3)
	snap := b.Snapshot()

	if snap.State != StateLoaded || snap.FileName != "players.csv" {
		t.Fatalf("state=%v file=%q", snap.State, snap.FileName)
	}
	if snap.ValidCount != 3 || snap.InvalidCount != 1 {
		t.Fatalf("valid=%d invalid=%d, want 3/1", snap.ValidCount, snap.InvalidCount)
	}
	if len(snap.Selected) != 3 {
		t.Fatalf("selected=%v, want the 3 valid rows", snap.Selected)
	}
	last := snap.Rows[3]
	if last.IsValid || last.ErrorMsgs["email"] != "Email already in use" {
		t.Fatalf("duplicate row should be flagged, got %+v", last)
	}
}

func TestToggleRow(t *testing.T) {
	t.Parallel()

	b := loadBatch(t, 2)

	if !b.ToggleRow(0) {
		t.Fatal("deselecting a valid row should report a change")
	}
	if got := len(b.Snapshot().Selected); got != 1 {
		t.Fatalf("selected=%d after deselect, want 1", got)
	}
	if !b.ToggleRow(0) {
		t.Fatal("reselecting should report a change")
	}

	// Invalid and out-of-range rows stay untouchable.
	if b.ToggleRow(2) {
		t.Error("invalid row must not be selectable")
	}
	if b.ToggleRow(-1) || b.ToggleRow(99) {
		t.Error("out-of-range toggle must be a no-op")
	}
	if got := len(b.Snapshot().Selected); got != 2 {
		t.Fatalf("selected=%d, want 2", got)
	}
}

func TestToggleSelectAll(t *testing.T) {
	t.Parallel()

	b := loadBatch(t, 5)

	// All valid rows selected: toggling clears.
	b.ToggleSelectAll()
	if got := len(b.Snapshot().Selected); got != 0 {
		t.Fatalf("selected=%d after clear, want 0", got)
	}

	// Partial selection: toggling selects exactly the valid rows.
	b.ToggleRow(0)
	b.ToggleRow(2)
	b.ToggleRow(4)
	b.ToggleSelectAll()
	snap := b.Snapshot()
	if len(snap.Selected) != 5 {
		t.Fatalf("selected=%v, want all 5 valid rows", snap.Selected)
	}
	for _, i := range snap.Selected {
		if !snap.Rows[i].IsValid {
			t.Fatalf("row %d selected but invalid", i)
		}
	}
}

func TestSubmitNothingSelected(t *testing.T) {
	t.Parallel()

	b := loadBatch(t, 2)
	b.ToggleSelectAll() // clear

	dst := &fakeSubmitter{}
	if _, err := b.Submit(context.Background(), dst); !errors.Is(err, ErrNothingSelected) {
		t.Fatalf("err = %v, want ErrNothingSelected", err)
	}
	if dst.calls != 0 {
		t.Fatal("no request may be sent for an empty selection")
	}
}

func TestSubmitSuccessClearsStaging(t *testing.T) {
	t.Parallel()

	b := loadBatch(t, 3)
	b.ToggleRow(1) // submit rows 0 and 2 only

	dst := &fakeSubmitter{}
	n, err := b.Submit(context.Background(), dst)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if n != 2 || len(dst.rows) != 2 {
		t.Fatalf("submitted %d rows (%d recorded), want 2", n, len(dst.rows))
	}
	// File order is preserved.
	if dst.rows[0].Email != "p0@example.com" || dst.rows[1].Email != "p2@example.com" {
		t.Fatalf("rows out of order: %q, %q", dst.rows[0].Email, dst.rows[1].Email)
	}

	snap := b.Snapshot()
	if snap.State != StateEmpty || len(snap.Rows) != 0 || len(snap.Selected) != 0 {
		t.Fatalf("staging must clear on success, got %+v", snap)
	}
}

func TestSubmitFailureKeepsStaging(t *testing.T) {
	t.Parallel()

	b := loadBatch(t, 3)
	dst := &fakeSubmitter{err: errors.New("backend down")}

	if _, err := b.Submit(context.Background(), dst); err == nil {
		t.Fatal("expected submit error")
	}

	snap := b.Snapshot()
	if snap.State != StateLoaded {
		t.Fatalf("state = %v after failure, want loaded", snap.State)
	}
	if len(snap.Rows) != 4 || len(snap.Selected) != 3 {
		t.Fatalf("rows=%d selected=%d, staging must survive a failed submit", len(snap.Rows), len(snap.Selected))
	}

	// Retry goes through once the backend recovers.
	dst.err = nil
	if n, err := b.Submit(context.Background(), dst); err != nil || n != 3 {
		t.Fatalf("retry: n=%d err=%v", n, err)
	}
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	b := loadBatch(t, 2)
	b.Discard()
	snap := b.Snapshot()
	if snap.State != StateEmpty || snap.FileName != "" || len(snap.Rows) != 0 {
		t.Fatalf("discard must reset everything, got %+v", snap)
	}
}

func TestStorePerOperator(t *testing.T) {
	t.Parallel()

	s := NewStore()
	a := s.Batch("op-a")
	if s.Batch("op-a") != a {
		t.Fatal("same operator must get the same batch")
	}
	if s.Batch("op-b") == a {
		t.Fatal("operators must not share staging")
	}
	s.Drop("op-a")
	if s.Batch("op-a") == a {
		t.Fatal("dropped operator must get a fresh batch")
	}
}
