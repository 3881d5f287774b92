package auth

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "coinquest/pkg/domain"
	dErrors "coinquest/pkg/domain-errors"
	"coinquest/pkg/requestcontext"
)

type stubResolver struct {
	principal requestcontext.Principal
	err       error
	gotToken  string
}

func (s *stubResolver) ResolvePrincipal(_ context.Context, token string) (requestcontext.Principal, error) {
	s.gotToken = token
	return s.principal, s.err
}

func serve(t *testing.T, resolver PrincipalResolver, header string) (*httptest.ResponseRecorder, id.UserID) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var seen id.UserID
	h := RequireAuth(resolver, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestcontext.UserID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec, seen
}

func TestRequireAuth(t *testing.T) {
	userID := id.UserID(uuid.New())

	t.Run("missing header is 401 with challenge", func(t *testing.T) {
		rec, _ := serve(t, &stubResolver{}, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
	})

	t.Run("non bearer scheme is rejected", func(t *testing.T) {
		rec, _ := serve(t, &stubResolver{}, "Basic dXNlcjpwYXNz")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("resolver failure is passed through", func(t *testing.T) {
		resolver := &stubResolver{err: dErrors.New(dErrors.CodeUnauthorized, "Could not validate credentials")}
		rec, _ := serve(t, resolver, "Bearer abc")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "abc", resolver.gotToken)

		var body map[string]string
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "Could not validate credentials", body["detail"])
	})

	t.Run("inactive user is 400", func(t *testing.T) {
		resolver := &stubResolver{err: dErrors.New(dErrors.CodeBadRequest, "Inactive user")}
		rec, _ := serve(t, resolver, "Bearer abc")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, rec.Header().Get("WWW-Authenticate"))
	})

	t.Run("valid token reaches handler with principal", func(t *testing.T) {
		resolver := &stubResolver{principal: requestcontext.Principal{UserID: userID}}
		rec, seen := serve(t, resolver, "Bearer good-token")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, userID, seen)
	})
}
