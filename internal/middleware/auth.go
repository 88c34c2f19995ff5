package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/baharkarakas/librarium/internal/access"
	"github.com/baharkarakas/librarium/internal/api/httpx"
	"github.com/baharkarakas/librarium/internal/auth"
	"github.com/baharkarakas/librarium/internal/errs"
	repo "github.com/baharkarakas/librarium/internal/repository"
)

// PrincipalLoader resolves a user id into the acting principal.
type PrincipalLoader interface {
	Principal(ctx context.Context, userID int64) (access.Principal, error)
}

type AuthMiddleware struct {
	TM     *auth.TokenManager
	Users  PrincipalLoader
	AppEnv string
}

func NewAuthMiddleware(tm *auth.TokenManager, users PrincipalLoader, appEnv string) *AuthMiddleware {
	return &AuthMiddleware{TM: tm, Users: users, AppEnv: appEnv}
}

// Auth attaches the caller's principal to the request context. A request
// without an Authorization header proceeds anonymously; a bad token is a 401.
//
// DEV: Bearer dev-<user id> | PROD/DEV: Bearer <JWT(access)>
func (m *AuthMiddleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ah := r.Header.Get("Authorization")
		if ah == "" {
			next.ServeHTTP(w, r.WithContext(access.WithPrincipal(r.Context(), access.Anonymous())))
			return
		}
		if !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
			httpx.WriteErr(w, r, errs.Unauthorized("missing bearer token"))
			return
		}
		token := strings.TrimSpace(ah[len("Bearer "):])

		uid, err := m.userID(token)
		if err != nil {
			httpx.WriteErr(w, r, errs.Unauthorized("invalid access token"))
			return
		}
		p, err := m.Users.Principal(r.Context(), uid)
		if errors.Is(err, repo.ErrNotFound) {
			httpx.WriteErr(w, r, errs.Unauthorized("user no longer exists"))
			return
		}
		if err != nil {
			httpx.WriteErr(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(access.WithPrincipal(r.Context(), p)))
	})
}

func (m *AuthMiddleware) userID(token string) (int64, error) {
	if m.AppEnv == "dev" && strings.HasPrefix(token, "dev-") {
		return strconv.ParseInt(strings.TrimPrefix(token, "dev-"), 10, 64)
	}
	claims, err := m.TM.ParseAccess(token)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}
