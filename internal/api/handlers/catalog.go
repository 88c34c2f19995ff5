package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/librarium/internal/access"
	"github.com/baharkarakas/librarium/internal/api/httpx"
	"github.com/baharkarakas/librarium/internal/errs"
	"github.com/baharkarakas/librarium/internal/models"
	"github.com/baharkarakas/librarium/internal/services"
	"github.com/baharkarakas/librarium/internal/validate"
)

type CatalogHandler struct {
	Catalog *services.CatalogService
}

func (h *CatalogHandler) Books(w http.ResponseWriter, r *http.Request) {
	books, err := h.Catalog.ListBooks(r.Context())
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, books)
}

func (h *CatalogHandler) BooksByAuthor(w http.ResponseWriter, r *http.Request) {
	books, err := h.Catalog.BooksByAuthor(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, books)
}

func (h *CatalogHandler) Libraries(w http.ResponseWriter, r *http.Request) {
	libs, err := h.Catalog.ListLibraries(r.Context())
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, libs)
}

func (h *CatalogHandler) Library(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	d, err := h.Catalog.Library(r.Context(), id)
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, d)
}

func (h *CatalogHandler) LibraryBooks(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	books, err := h.Catalog.BooksInLibrary(r.Context(), id)
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, books)
}

func (h *CatalogHandler) CreateLibrary(w http.ResponseWriter, r *http.Request) {
	p := access.FromContext(r.Context())
	var in services.LibraryInput
	if err := httpx.DecodeAfter(r, access.RequireRole(p, models.RoleAdmin, models.RoleLibrarian), &in); err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	l, err := h.Catalog.CreateLibrary(r.Context(), p, in)
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, l)
}

func (h *CatalogHandler) DeleteLibrary(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	if err := h.Catalog.DeleteLibrary(r.Context(), access.FromContext(r.Context()), id); err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type libraryBookReq struct {
	BookID *int64 `json:"book"`
}

func (h *CatalogHandler) AddBookToLibrary(w http.ResponseWriter, r *http.Request) {
	p := access.FromContext(r.Context())
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	var req libraryBookReq
	if err := httpx.DecodeAfter(r, access.RequireRole(p, models.RoleAdmin, models.RoleLibrarian), &req); err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	if req.BookID == nil {
		httpx.WriteErr(w, r, errs.InvalidField("book", validate.MsgRequired))
		return
	}
	l, err := h.Catalog.AddBookToLibrary(r.Context(), p, id, *req.BookID)
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, l)
}

func (h *CatalogHandler) RemoveBookFromLibrary(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	bookID, err := httpx.IDParam(r, "bookID")
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	if err := h.Catalog.RemoveBookFromLibrary(r.Context(), access.FromContext(r.Context()), id, bookID); err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) AssignLibrarian(w http.ResponseWriter, r *http.Request) {
	p := access.FromContext(r.Context())
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	var in services.LibrarianInput
	if err := httpx.DecodeAfter(r, access.RequireRole(p, models.RoleAdmin), &in); err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	l, err := h.Catalog.AssignLibrarian(r.Context(), p, id, in)
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, l)
}

func (h *CatalogHandler) Librarian(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	l, err := h.Catalog.LibrarianFor(r.Context(), id)
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, l)
}

func (h *CatalogHandler) RemoveLibrarian(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	if err := h.Catalog.RemoveLibrarian(r.Context(), access.FromContext(r.Context()), id); err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) LibrarianByID(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	l, err := h.Catalog.Librarian(r.Context(), id)
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, l)
}

func (h *CatalogHandler) AddBook(w http.ResponseWriter, r *http.Request) {
	p := access.FromContext(r.Context())
	var in services.BookInput
	if err := httpx.DecodeAfter(r, access.RequirePermission(p, access.PermAddBook), &in); err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	b, err := h.Catalog.AddBook(r.Context(), p, in)
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, b)
}

func (h *CatalogHandler) EditBook(w http.ResponseWriter, r *http.Request) {
	p := access.FromContext(r.Context())
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	var in services.BookInput
	if err := httpx.DecodeAfter(r, access.RequirePermission(p, access.PermChangeBook), &in); err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	b, err := h.Catalog.EditBook(r.Context(), p, id, in)
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, b)
}

func (h *CatalogHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	if err := h.Catalog.DeleteBook(r.Context(), access.FromContext(r.Context()), id); err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RoleView serves the landing page reserved for role.
func (h *CatalogHandler) RoleView(role models.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := h.Catalog.View(access.FromContext(r.Context()), role)
		if err != nil {
			httpx.WriteErr(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, v)
	}
}
