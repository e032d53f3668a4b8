package main

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"demandas/internal/platform/config"
	authmw "demandas/pkg/platform/middleware/auth"
	"demandas/pkg/testutil"
)

type stubRoutes struct{}

func (stubRoutes) Register(r chi.Router) {
	r.Post("/forms", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
}

type rejectAll struct{}

func (rejectAll) ValidateToken(string) (*authmw.JWTClaims, error) {
	return nil, assert.AnError
}

func TestRouter(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Config{Server: config.Server{RequestTimeout: time.Second}}
	router := newRouter(cfg, log, &infra{log: log}, rejectAll{}, stubRoutes{})

	t.Run("health is public", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/health"))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "status", "ok")
		assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	})

	t.Run("metrics are public", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
		testutil.AssertStatusOK(t, rr)
	})

	t.Run("forms require a token", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/forms", map[string]string{}))
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})
}
