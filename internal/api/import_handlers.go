package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/software-catalog/internal/auth"
	"github.com/ignite/software-catalog/internal/datanorm"
	"github.com/ignite/software-catalog/internal/pkg/httputil"
	"github.com/ignite/software-catalog/internal/pkg/logger"
	"github.com/ignite/software-catalog/internal/rowsource"
	"github.com/ignite/software-catalog/internal/service/catalogimport"
	"github.com/ignite/software-catalog/internal/storage"
)

// fileImportResponse adds the upload details to the batch response.
type fileImportResponse struct {
	catalogimport.Response
	File       string `json:"file"`
	ArchivedAs string `json:"archivedAs,omitempty"`
}

type demoImportResponse struct {
	catalogimport.Response
	CategoriesCreated   int `json:"categoriesCreated"`
	TargetGroupsCreated int `json:"targetGroupsCreated"`
}

type jobAccepted struct {
	JobID  string `json:"jobId"`
	Status string `json:"status"`
}

// readBody reads at most MaxBodyBytes. It writes 413 and returns false
// when the body is larger.
func (h *Handlers) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.cfg.MaxBodyBytes))
	if err != nil {
		httputil.BodyError(w, err)
		return nil, false
	}
	return body, true
}

// allowRows charges n rows to the actor's import budget. It writes 429 and
// returns false when the budget is spent. Limiter failures let the import
// through.
func (h *Handlers) allowRows(w http.ResponseWriter, r *http.Request, actor string, n int) bool {
	if h.limiter == nil || n == 0 || (h.cfg.MaxRows > 0 && n > h.cfg.MaxRows) {
		return true
	}
	ok, wait, err := h.limiter.Allow(r.Context(), actor, n)
	if err != nil {
		logger.Warn("api: rate limit check failed", "actor", actor, "error", err)
		return true
	}
	if ok {
		return true
	}
	httputil.TooManyRequests(w, wait, "import limit reached")
	return false
}

func wantsAsync(r *http.Request) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get("async"))
	return v
}

// HandleImport imports a JSON array of rows.
//
//	POST /api/import[?async=true]
func (h *Handlers) HandleImport(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	rows, err := catalogimport.DecodeRows(body)
	if err != nil {
		writeError(w, err)
		return
	}
	actor := auth.ActorFromContext(r.Context())
	if !h.allowRows(w, r, actor, len(rows)) {
		return
	}

	if wantsAsync(r) {
		h.enqueue(w, r, rows, actor, 0, nil)
		return
	}

	sum, err := h.importer.Import(r.Context(), catalogimport.Batch{
		Rows:    rows,
		ActorID: actor,
		Source:  catalogimport.SourceJSON,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.OK(w, sum.Response())
}

// HandleImportDemo imports the demo dataset document.
//
//	POST /api/import/demo
func (h *Handlers) HandleImportDemo(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	ds, err := catalogimport.DecodeDemo(body)
	if err != nil {
		writeError(w, err)
		return
	}
	actor := auth.ActorFromContext(r.Context())
	if !h.allowRows(w, r, actor, len(ds.Software)) {
		return
	}
	sum, err := h.importer.ImportDemo(r.Context(), ds, actor)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.OK(w, demoImportResponse{
		Response:            sum.Response(),
		CategoriesCreated:   sum.CategoriesCreated,
		TargetGroupsCreated: sum.TargetGroupsCreated,
	})
}

// HandleImportFile imports an uploaded CSV or XLSX file from the multipart
// field "file". The raw upload is archived before it is parsed.
//
//	POST /api/import/file[?async=true]
func (h *Handlers) HandleImportFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxBodyBytes)
	if err := r.ParseMultipartForm(h.cfg.MaxBodyBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.BodyError(w, err)
			return
		}
		httputil.BadRequest(w, "expected a multipart form with a file field")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.BadRequest(w, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		httputil.BadRequest(w, "could not read uploaded file")
		return
	}

	archived := h.archiveUpload(r, header.Filename, data)

	parsed, err := rowsource.Read(header.Filename, bytes.NewReader(data))
	if err != nil {
		writeError(w, err)
		return
	}
	actor := auth.ActorFromContext(r.Context())
	if !h.allowRows(w, r, actor, len(parsed.Rows)) {
		return
	}

	if wantsAsync(r) {
		h.enqueue(w, r, parsed.Rows, actor, rowsource.HeaderRows, parsed.Lines)
		return
	}

	sum, err := h.importer.Import(r.Context(), catalogimport.Batch{
		Rows:       parsed.Rows,
		ActorID:    actor,
		Source:     catalogimport.SourceFile,
		HeaderRows: rowsource.HeaderRows,
		Lines:      parsed.Lines,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.OK(w, fileImportResponse{
		Response:   sum.Response(),
		File:       header.Filename,
		ArchivedAs: archived,
	})
}

func (h *Handlers) archiveUpload(r *http.Request, filename string, data []byte) string {
	if h.archive == nil {
		return ""
	}
	key := storage.ImportKey(time.Now().UTC(), filename)
	loc, err := h.archive.Put(r.Context(), key, rowsource.ContentType(filename), data)
	if err != nil {
		logger.Warn("api: archiving upload failed", "file", filename, "error", err)
		return ""
	}
	return loc
}

// enqueue checks what the pipeline would reject outright, then hands the
// rows to the async queue.
func (h *Handlers) enqueue(w http.ResponseWriter, r *http.Request, rows []datanorm.Row, actor string, headerRows int, lines []int) {
	if h.queue == nil {
		httputil.Error(w, http.StatusServiceUnavailable, "async import is not configured")
		return
	}
	if len(rows) == 0 {
		writeError(w, catalogimport.ErrNoData)
		return
	}
	if h.cfg.MaxRows > 0 && len(rows) > h.cfg.MaxRows {
		writeError(w, fmt.Errorf("%w: %d rows, limit is %d", catalogimport.ErrTooManyRows, len(rows), h.cfg.MaxRows))
		return
	}
	job, err := h.queue.Enqueue(r.Context(), rows, actor, headerRows, lines)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.JSON(w, http.StatusAccepted, jobAccepted{JobID: job.ID, Status: string(job.Status)})
}

// HandleImportJob reports an async job.
//
//	GET /api/import/jobs/{id}
func (h *Handlers) HandleImportJob(w http.ResponseWriter, r *http.Request) {
	if h.queue == nil {
		httputil.Error(w, http.StatusServiceUnavailable, "async import is not configured")
		return
	}
	job, err := h.queue.GetJob(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.OK(w, job.View())
}
