package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/librarium/internal/access"
	"github.com/baharkarakas/librarium/internal/api/httpx"
	"github.com/baharkarakas/librarium/internal/query"
	"github.com/baharkarakas/librarium/internal/services"
)

type BlogHandler struct {
	Posts    *services.PostService
	Comments *services.CommentService
	Tags     *services.TagService
}

// ListPosts also serves /search/: both read q or search.
func (h *BlogHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	q, err := query.ParsePostQuery(r.URL.Query())
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	page, err := h.Posts.List(r.Context(), q)
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, page)
}

func (h *BlogHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	p, err := h.Posts.Get(r.Context(), id)
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *BlogHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	p := access.FromContext(r.Context())
	var in services.PostInput
	if err := httpx.DecodeAfter(r, access.RequireAuthenticated(p), &in); err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	post, err := h.Posts.Create(r.Context(), p, in)
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, post)
}

func (h *BlogHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	p := access.FromContext(r.Context())
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	var in services.PostInput
	if err := httpx.DecodeAfter(r, access.RequireAuthenticated(p), &in); err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	post, err := h.Posts.Update(r.Context(), p, id, in)
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, post)
}

func (h *BlogHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	if err := h.Posts.Delete(r.Context(), access.FromContext(r.Context()), id); err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BlogHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	p := access.FromContext(r.Context())
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	var in services.CommentInput
	if err := httpx.DecodeAfter(r, access.RequireAuthenticated(p), &in); err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	c, err := h.Comments.Create(r.Context(), p, id, in)
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, c)
}

func (h *BlogHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	p := access.FromContext(r.Context())
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	var in services.CommentInput
	if err := httpx.DecodeAfter(r, access.RequireAuthenticated(p), &in); err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	c, err := h.Comments.Update(r.Context(), p, id, in)
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, c)
}

func (h *BlogHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	if err := h.Comments.Delete(r.Context(), access.FromContext(r.Context()), id); err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BlogHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.Tags.List(r.Context())
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tags)
}

func (h *BlogHandler) PostsByTag(w http.ResponseWriter, r *http.Request) {
	q, err := query.ParsePostQuery(r.URL.Query())
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	page, err := h.Tags.Posts(r.Context(), chi.URLParam(r, "name"), q)
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, page)
}
