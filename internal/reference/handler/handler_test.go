package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"demandas/internal/reference"
	"demandas/pkg/testutil"
)

func newRouter() http.Handler {
	r := chi.NewRouter()
	New(reference.New(nil), slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	return r
}

func get(t *testing.T, router http.Handler, path string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	w := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, path))
	return w, testutil.DecodeFields(t, w)
}

func TestHandlePool(t *testing.T) {
	router := newRouter()

	t.Run("filters with the accent-insensitive matcher", func(t *testing.T) {
		w, body := get(t, router, "/reference/pools/court?q=11%20goiania")
		require.Equal(t, http.StatusOK, w.Code)

		var items []map[string]any
		require.NoError(t, json.Unmarshal(body["items"], &items))
		require.Len(t, items, 1)
		assert.Equal(t, "11ª Promotoria de Justiça de Goiânia", items[0]["display_name"])
	})

	t.Run("unknown pool is not found", func(t *testing.T) {
		w, _ := get(t, router, "/reference/pools/unknown")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandleSubjects(t *testing.T) {
	router := newRouter()

	w, body := get(t, router, "/reference/document-types/Of%C3%ADcio/subjects")
	require.Equal(t, http.StatusOK, w.Code)
	var subjects []string
	require.NoError(t, json.Unmarshal(body["subjects"], &subjects))
	assert.Len(t, subjects, 5)
}

func TestHandleAddressing(t *testing.T) {
	router := newRouter()

	t.Run("lists addressing of a recipient", func(t *testing.T) {
		w, body := get(t, router, "/reference/recipients/1/addressing")
		require.Equal(t, http.StatusOK, w.Code)
		var items []map[string]any
		require.NoError(t, json.Unmarshal(body["items"], &items))
		assert.Len(t, items, 2)
	})

	t.Run("rejects a malformed id", func(t *testing.T) {
		w, _ := get(t, router, "/reference/recipients/abc/addressing")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleBootstrap(t *testing.T) {
	w, body := get(t, newRouter(), "/reference/bootstrap")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, body, "document_types")
	assert.Contains(t, body, "pools")
}
