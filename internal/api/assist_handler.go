package api

import (
	"net/http"

	"github.com/ignite/software-catalog/internal/assist"
	"github.com/ignite/software-catalog/internal/pkg/httputil"
)

// HandleDraftDescription suggests description text for a product.
//
//	POST /api/assist/description
func (h *Handlers) HandleDraftDescription(w http.ResponseWriter, r *http.Request) {
	if h.drafter == nil {
		writeError(w, assist.ErrDisabled)
		return
	}
	var req assist.DraftRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	draft, err := h.drafter.DraftDescription(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.OK(w, draft)
}
