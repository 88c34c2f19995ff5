package handlers

import (
	"io"
	"net/http"

	"github.com/baharkarakas/librarium/internal/access"
	"github.com/baharkarakas/librarium/internal/api/httpx"
	"github.com/baharkarakas/librarium/internal/errs"
	"github.com/baharkarakas/librarium/internal/services"
	"github.com/baharkarakas/librarium/internal/validate"
)

// AccountHandler serves the caller's profile and the superuser account admin.
type AccountHandler struct {
	Users         *services.UserService
	PhotoMaxBytes int64
}

func (h *AccountHandler) Profile(w http.ResponseWriter, r *http.Request) {
	u, err := h.Users.Profile(r.Context(), access.FromContext(r.Context()))
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	p := access.FromContext(r.Context())
	var in services.ProfileInput
	if err := httpx.DecodeAfter(r, access.RequireAuthenticated(p), &in); err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	u, err := h.Users.UpdateProfile(r.Context(), p, in)
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

// UploadPhoto reads the multipart "photo" part. One byte past the limit is
// read so the service can reject oversized files.
func (h *AccountHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	p := access.FromContext(r.Context())
	if err := access.RequireAuthenticated(p); err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	if err := r.ParseMultipartForm(h.PhotoMaxBytes + 1); err != nil {
		httpx.WriteErr(w, r, errs.InvalidField("photo", "expected a multipart upload"))
		return
	}
	f, _, err := r.FormFile("photo")
	if err != nil {
		httpx.WriteErr(w, r, errs.InvalidField("photo", validate.MsgRequired))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.PhotoMaxBytes+1))
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	u, err := h.Users.UploadPhoto(r.Context(), p, data)
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

type roleReq struct {
	Role string `json:"role"`
}

func (h *AccountHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	p := access.FromContext(r.Context())
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	var req roleReq
	if err := httpx.DecodeAfter(r, access.RequireSuperuser(p), &req); err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	u, err := h.Users.SetRole(r.Context(), p, id, req.Role)
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

func (h *AccountHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	if err := h.Users.Delete(r.Context(), access.FromContext(r.Context()), id); err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type permReq struct {
	Perm string `json:"perm"`
}

type permResp struct {
	UserID      int64    `json:"user"`
	Permissions []string `json:"permissions"`
}

func (h *AccountHandler) Grant(w http.ResponseWriter, r *http.Request) {
	h.permission(w, r, true)
}

// Revoke reads the codename from ?perm= or the body.
func (h *AccountHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	h.permission(w, r, false)
}

func (h *AccountHandler) permission(w http.ResponseWriter, r *http.Request, grant bool) {
	p := access.FromContext(r.Context())
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	req := permReq{Perm: r.URL.Query().Get("perm")}
	if req.Perm == "" {
		if err := httpx.DecodeAfter(r, access.RequireSuperuser(p), &req); err != nil {
			httpx.WriteErr(w, r, err)
			return
		}
	}
	var perms []string
	if grant {
		perms, err = h.Users.Grant(r.Context(), p, id, req.Perm)
	} else {
		perms, err = h.Users.Revoke(r.Context(), p, id, req.Perm)
	}
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, permResp{UserID: id, Permissions: perms})
}
