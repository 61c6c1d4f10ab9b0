package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/quiz-event-console/internal/csvutil"
	"github.com/iliyamo/quiz-event-console/internal/importer"
	mw "github.com/iliyamo/quiz-event-console/internal/middleware"
	"github.com/iliyamo/quiz-event-console/internal/model"
	"github.com/iliyamo/quiz-event-console/internal/queue"
	"github.com/iliyamo/quiz-event-console/internal/repository"
	"github.com/iliyamo/quiz-event-console/internal/session"
	queue_publisher "github.com/iliyamo/quiz-event-console/internal/service"
	"github.com/iliyamo/quiz-event-console/internal/upstream"
)

// ImportHandler drives the CSV bulk-import workflow: upload a file to
// stage and validate it, adjust the row selection, then submit the
// selected subset upstream as one bulk request.
type ImportHandler struct {
	Staging  *importer.Store
	Upstream *upstream.Registry
	Sessions *session.Manager
	Jobs     *repository.ImportJobRepo
	MaxBytes int64
	Log      zerolog.Logger
}

func NewImportHandler(st *importer.Store, u *upstream.Registry, s *session.Manager,
	jobs *repository.ImportJobRepo, maxBytes int64, log zerolog.Logger) *ImportHandler {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &ImportHandler{Staging: st, Upstream: u, Sessions: s, Jobs: jobs, MaxBytes: maxBytes, Log: log}
}

func (h *ImportHandler) batch(c echo.Context) (*model.Session, *importer.Batch) {
	sess := mw.CurrentSession(c)
	return sess, h.Staging.Batch(sess.UserID)
}

// Upload stages a new CSV file, replacing any previous staging. The
// response is the summary the table view renders: counts plus every
// row with its validity verdict and the auto-selected indices.
func (h *ImportHandler) Upload(c echo.Context) error {
	sess, batch := h.batch(c)

	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file is required"})
	}
	if fh.Size > h.MaxBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "file too large"})
	}
	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot read file"})
	}
	defer src.Close()

	raw, err := io.ReadAll(io.LimitReader(src, h.MaxBytes+1))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot read file"})
	}
	if int64(len(raw)) > h.MaxBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "file too large"})
	}

	if err := batch.Load(fh.Filename, string(raw)); err != nil {
		if errors.Is(err, csvutil.ErrNoData) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "CSV must have header and data rows"})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "could not parse file"})
	}

	h.Log.Info().Str("operator", sess.UserID).Str("file", fh.Filename).Msg("csv staged")
	return c.JSON(http.StatusOK, batch.Snapshot())
}

// Rows returns the current staging snapshot.
func (h *ImportHandler) Rows(c echo.Context) error {
	_, batch := h.batch(c)
	return c.JSON(http.StatusOK, batch.Snapshot())
}

// ToggleRow flips one row's selection. Invalid rows cannot be selected;
// toggling one is a no-op and the unchanged snapshot comes back.
func (h *ImportHandler) ToggleRow(c echo.Context) error {
	_, batch := h.batch(c)
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid row index"})
	}
	batch.ToggleRow(idx)
	return c.JSON(http.StatusOK, batch.Snapshot())
}

// ToggleSelectAll applies the select-all toggle: clear when every valid
// row is selected, otherwise select exactly the valid rows.
func (h *ImportHandler) ToggleSelectAll(c echo.Context) error {
	_, batch := h.batch(c)
	batch.ToggleSelectAll()
	return c.JSON(http.StatusOK, batch.Snapshot())
}

// Discard drops the staged batch without submitting.
func (h *ImportHandler) Discard(c echo.Context) error {
	_, batch := h.batch(c)
	batch.Discard()
	return c.NoContent(http.StatusNoContent)
}

// Submit sends the selected rows upstream as one bulk-insert. An empty
// selection fails fast with no request sent. Success clears the
// staging, records the audit row and publishes the imported event;
// failure leaves rows and selection intact for a retry.
func (h *ImportHandler) Submit(c echo.Context) error {
	sess, batch := h.batch(c)
	snap := batch.Snapshot()

	job := model.ImportJob{
		ID:            uuid.NewString(),
		OperatorID:    sess.UserID,
		FileName:      snap.FileName,
		TotalRows:     len(snap.Rows),
		ValidRows:     snap.ValidCount,
		InvalidRows:   snap.InvalidCount,
		SubmittedRows: len(snap.Selected),
		Status:        model.JobSubmitted,
		CreatedAt:     time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	client := h.Upstream.For(sess.UserID, h.Sessions.TokenStore(sess.UserID))
	inserted, err := batch.Submit(ctx, client)
	if err != nil {
		if errors.Is(err, importer.ErrNothingSelected) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "0 records selected!"})
		}
		h.recordJob(ctx, job, model.JobFailed, err.Error())
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "Bulk insert failed!"})
	}

	h.recordJob(ctx, job, model.JobCompleted, "")
	if err := queue_publisher.PublishParticipantsImported(ctx, queue.ParticipantsImportedEvent{
		JobID:      job.ID,
		OperatorID: job.OperatorID,
		FileName:   job.FileName,
		Inserted:   inserted,
		ImportedAt: time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		h.Log.Warn().Err(err).Msg("imported event not published")
	}

	return c.JSON(http.StatusOK, echo.Map{"inserted": inserted})
}

// recordJob writes the audit row; auditing must never fail an import.
func (h *ImportHandler) recordJob(ctx context.Context, job model.ImportJob, status, errMsg string) {
	if h.Jobs == nil {
		return
	}
	job.Status = status
	job.Error = errMsg
	if err := h.Jobs.Insert(ctx, job); err != nil {
		h.Log.Error().Err(err).Str("job", job.ID).Msg("import job insert failed")
		return
	}
	if err := h.Jobs.Finish(ctx, job.ID, status, errMsg); err != nil {
		h.Log.Error().Err(err).Str("job", job.ID).Msg("import job finish failed")
	}
}

// History lists the operator's recent import jobs.
func (h *ImportHandler) History(c echo.Context) error {
	sess := mw.CurrentSession(c)
	if h.Jobs == nil {
		return c.JSON(http.StatusOK, echo.Map{"jobs": []model.ImportJob{}})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	jobs, err := h.Jobs.ListByOperator(ctx, sess.UserID, 20)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "history unavailable"})
	}
	if jobs == nil {
		jobs = []model.ImportJob{}
	}
	return c.JSON(http.StatusOK, echo.Map{"jobs": jobs})
}
