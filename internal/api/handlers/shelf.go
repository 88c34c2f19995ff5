package handlers

import (
	"net/http"

	"github.com/baharkarakas/librarium/internal/access"
	"github.com/baharkarakas/librarium/internal/api/httpx"
	"github.com/baharkarakas/librarium/internal/query"
	"github.com/baharkarakas/librarium/internal/services"
)

type ShelfHandler struct {
	Shelf *services.ShelfService
}

// Browse is the public listing; List requires bookshelf.can_view.
func (h *ShelfHandler) Browse(w http.ResponseWriter, r *http.Request) {
	q, err := query.ParseShelfQuery(r.URL.Query())
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	books, err := h.Shelf.Browse(r.Context(), q)
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, books)
}

func (h *ShelfHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := query.ParseShelfQuery(r.URL.Query())
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	books, err := h.Shelf.List(r.Context(), access.FromContext(r.Context()), q)
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, books)
}

func (h *ShelfHandler) Create(w http.ResponseWriter, r *http.Request) {
	p := access.FromContext(r.Context())
	var in services.ShelfInput
	if err := httpx.DecodeAfter(r, access.RequirePermission(p, access.PermShelfCreate), &in); err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	b, err := h.Shelf.Create(r.Context(), p, in)
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, b)
}

func (h *ShelfHandler) Edit(w http.ResponseWriter, r *http.Request) {
	p := access.FromContext(r.Context())
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	var in services.ShelfInput
	if err := httpx.DecodeAfter(r, access.RequirePermission(p, access.PermShelfEdit), &in); err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	b, err := h.Shelf.Update(r.Context(), p, id, in)
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, b)
}

func (h *ShelfHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	if err := h.Shelf.Delete(r.Context(), access.FromContext(r.Context()), id); err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
