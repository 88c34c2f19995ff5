package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/librarium/internal/access"
	"github.com/baharkarakas/librarium/internal/api/httpx"
	"github.com/baharkarakas/librarium/internal/errs"
	"github.com/baharkarakas/librarium/internal/query"
	"github.com/baharkarakas/librarium/internal/services"
)

const (
	msgBookCreated      = "Book created successfully"
	msgBookCreateFailed = "Failed to create book"
	msgBookUpdated      = "Book updated successfully"
	msgBookUpdateFailed = "Failed to update book"
)

type BookHandler struct {
	Books   *services.BookService
	Authors *services.AuthorService
}

func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := query.ParseBookQuery(r.URL.Query())
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	books, err := h.Books.List(r.Context(), q)
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, books)
}

func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	b, err := h.Books.Get(r.Context(), id)
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, b)
}

func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	p := access.FromContext(r.Context())
	var in services.BookInput
	if err := httpx.DecodeAfter(r, access.RequireAuthenticated(p), &in); err != nil {
		httpx.WriteResult(w, r, msgBookCreateFailed, err)
		return
	}
	b, err := h.Books.Create(r.Context(), p, in)
	if err != nil {
		httpx.WriteResult(w, r, msgBookCreateFailed, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, httpx.Result{Message: msgBookCreated, Data: b})
}

type bookUpdateReq struct {
	services.BookInput
	ID *int64 `json:"id"`
}

// Update serves PUT (every field required) and PATCH (merge).
func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	p := access.FromContext(r.Context())
	var req bookUpdateReq
	if err := httpx.DecodeAfter(r, access.RequireAuthenticated(p), &req); err != nil {
		httpx.WriteResult(w, r, msgBookUpdateFailed, err)
		return
	}
	id, err := bookID(r, p, req.ID)
	if err != nil {
		httpx.WriteResult(w, r, msgBookUpdateFailed, err)
		return
	}
	b, err := h.Books.Update(r.Context(), p, id, req.BookInput, r.Method == http.MethodPatch)
	if err != nil {
		httpx.WriteResult(w, r, msgBookUpdateFailed, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, httpx.Result{Message: msgBookUpdated, Data: b})
}

func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p := access.FromContext(r.Context())
	id, err := bookID(r, p, nil)
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	if err := h.Books.Delete(r.Context(), p, id); err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// bookID takes the id from the path, then ?id=, then the body. Anonymous
// callers are turned away before a missing id is reported.
func bookID(r *http.Request, p access.Principal, body *int64) (int64, error) {
	if chi.URLParam(r, "id") != "" {
		return httpx.IDParam(r, "id")
	}
	if err := access.RequireAuthenticated(p); err != nil {
		return 0, err
	}
	if raw := r.URL.Query().Get("id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, errs.InvalidField("id", "Enter a number.")
		}
		return id, nil
	}
	if body != nil {
		return *body, nil
	}
	return 0, errs.InvalidField("id", "required")
}

func (h *BookHandler) ListAuthors(w http.ResponseWriter, r *http.Request) {
	authors, err := h.Authors.List(r.Context())
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authors)
}

func (h *BookHandler) GetAuthor(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	a, err := h.Authors.Get(r.Context(), id)
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, a)
}

func (h *BookHandler) CreateAuthor(w http.ResponseWriter, r *http.Request) {
	p := access.FromContext(r.Context())
	var in services.AuthorInput
	if err := httpx.DecodeAfter(r, access.RequireAuthenticated(p), &in); err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	a, err := h.Authors.Create(r.Context(), p, in)
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, a)
}

func (h *BookHandler) DeleteAuthor(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	if err := h.Authors.Delete(r.Context(), access.FromContext(r.Context()), id); err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
