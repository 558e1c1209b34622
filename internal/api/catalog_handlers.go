package api

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/software-catalog/internal/auth"
	"github.com/ignite/software-catalog/internal/domain"
	"github.com/ignite/software-catalog/internal/pkg/httputil"
	"github.com/ignite/software-catalog/internal/pkg/logger"
	"github.com/ignite/software-catalog/internal/service/catalog"
)

type entryList struct {
	Entries    []domain.CatalogEntry `json:"entries"`
	Pagination pageMeta              `json:"pagination"`
}

// HandleListEntries lists entries.
//
//	GET /api/catalog/entries?search=&categoryId=&page=&limit=
func (h *Handlers) HandleListEntries(w http.ResponseWriter, r *http.Request) {
	p := parsePage(r, 50, 500)
	entries, total, err := h.catalog.ListEntries(r.Context(), catalog.ListFilter{
		Search:     r.URL.Query().Get("search"),
		CategoryID: r.URL.Query().Get("categoryId"),
		Limit:      p.Limit,
		Offset:     p.Offset,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.CatalogEntry{}
	}
	httputil.OK(w, entryList{Entries: entries, Pagination: p.meta(total)})
}

// HandleGetEntry returns one entry.
func (h *Handlers) HandleGetEntry(w http.ResponseWriter, r *http.Request) {
	e, err := h.catalog.GetEntry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.OK(w, e)
}

// HandleDeleteEntry deletes an entry and its links.
func (h *Handlers) HandleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteEntry(r.Context(), chi.URLParam(r, "id"), auth.ActorFromContext(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	httputil.NoContent(w)
}

func (h *Handlers) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if cats == nil {
		cats = []domain.Category{}
	}
	httputil.OK(w, map[string]any{"categories": cats})
}

func (h *Handlers) HandleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var c domain.Category
	if !httputil.Decode(w, r, &c) {
		return
	}
	c.ID = ""
	created, err := h.catalog.CreateCategory(r.Context(), &c, auth.ActorFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.Created(w, created)
}

func (h *Handlers) HandleListTargetGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.catalog.ListTargetGroups(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if groups == nil {
		groups = []domain.TargetGroup{}
	}
	httputil.OK(w, map[string]any{"targetGroups": groups})
}

func (h *Handlers) HandleCreateTargetGroup(w http.ResponseWriter, r *http.Request) {
	var g domain.TargetGroup
	if !httputil.Decode(w, r, &g) {
		return
	}
	g.ID = ""
	created, err := h.catalog.CreateTargetGroup(r.Context(), &g, auth.ActorFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.Created(w, created)
}

// HandleExport streams the catalog as an XLSX workbook that can be edited
// and uploaded to /api/import/file again.
//
//	GET /api/catalog/export.xlsx
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	n, err := h.catalog.ExportXLSX(r.Context(), &buf)
	if err != nil {
		writeError(w, err)
		return
	}
	name := fmt.Sprintf("katalog-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.Warn("api: export write failed", "error", err)
		return
	}
	logger.Info("api: catalog exported", "entries", n, "actor", auth.ActorFromContext(r.Context()))
}
