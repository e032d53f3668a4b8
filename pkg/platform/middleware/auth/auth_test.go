package auth

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	id "demandas/pkg/domain"
	"demandas/pkg/requestcontext"
)

type stubValidator struct {
	claims *JWTClaims
	err    error
}

func (v stubValidator) ValidateToken(string) (*JWTClaims, error) {
	return v.claims, v.err
}

func serve(validator JWTValidator, header string) (*httptest.ResponseRecorder, id.AnalystID) {
	var seen id.AnalystID
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestcontext.AnalystID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	req := httptest.NewRequest(http.MethodGet, "/forms", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	RequireAuth(validator, logger)(next).ServeHTTP(w, req)
	return w, seen
}

func TestRequireAuth(t *testing.T) {
	analyst := uuid.New()

	t.Run("valid token sets analyst", func(t *testing.T) {
		w, seen := serve(stubValidator{claims: &JWTClaims{AnalystID: analyst.String()}}, "Bearer abc")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, id.AnalystID(analyst), seen)
	})

	t.Run("missing header", func(t *testing.T) {
		w, _ := serve(stubValidator{}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"unauthorized","error_description":"Missing or invalid Authorization header"}`, w.Body.String())
	})

	t.Run("invalid token", func(t *testing.T) {
		w, _ := serve(stubValidator{err: errors.New("bad signature")}, "Bearer abc")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("claim without analyst id", func(t *testing.T) {
		w, _ := serve(stubValidator{claims: &JWTClaims{AnalystID: "not-a-uuid"}}, "Bearer abc")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
