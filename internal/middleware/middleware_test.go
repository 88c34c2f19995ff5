package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/librarium/internal/access"
	"github.com/baharkarakas/librarium/internal/auth"
	"github.com/baharkarakas/librarium/internal/models"
	repo "github.com/baharkarakas/librarium/internal/repository"
)

type stubUsers map[int64]models.User

func (s stubUsers) Principal(_ context.Context, id int64) (access.Principal, error) {
	u, ok := s[id]
	if !ok {
		return access.Principal{}, repo.ErrNotFound
	}
	return access.NewPrincipal(u, nil), nil
}

func whoAmI(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte(access.FromContext(r.Context()).Username))
}

func TestRateLimiterPerClient(t *testing.T) {
	h := NewRateLimiter(1, 2).Handler(http.HandlerFunc(whoAmI))
	hit := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}
	assert.Equal(t, http.StatusOK, hit("10.0.0.1:1000"))
	assert.Equal(t, http.StatusOK, hit("10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, hit("10.0.0.1:1002"))
	assert.Equal(t, http.StatusOK, hit("10.0.0.2:1000"), "other clients keep their budget")
}

func TestRateLimiterDisabled(t *testing.T) {
	h := NewRateLimiter(0, 0).Handler(http.HandlerFunc(whoAmI))
	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	tm := auth.NewTokenManager("a", "r", "librarium", time.Minute, time.Hour)
	users := stubUsers{7: {ID: 7, Username: "alice"}}
	h := NewAuthMiddleware(tm, users, "dev").Auth(http.HandlerFunc(whoAmI))

	serve := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := serve("")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())

	pair, err := tm.GeneratePair(7, "alice")
	require.NoError(t, err)
	rec = serve("Bearer " + pair.AccessToken)
	assert.Equal(t, "alice", rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, serve("Bearer "+pair.RefreshToken).Code)
	assert.Equal(t, http.StatusUnauthorized, serve("Basic abc").Code)
	assert.Equal(t, "alice", serve("Bearer dev-7").Body.String())
	assert.Equal(t, http.StatusUnauthorized, serve("Bearer dev-8").Code, "unknown user")
}

func TestRequestIDReusesIncoming(t *testing.T) {
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(RequestIDFrom(r.Context())))
	}))

	const id = "3f2b8c1e-8d4a-4c8e-9b1a-2f6d7e8a9b0c"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, id)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, id, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "not a uuid")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEqual(t, "not a uuid", rec.Body.String())
	assert.Equal(t, rec.Body.String(), rec.Header().Get(RequestIDHeader))
}

func TestRecoverRendersInternalError(t *testing.T) {
	h := Recover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal_error")
}
