package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hackmatch/internal/domain"
	"hackmatch/internal/embedding/local"
	"hackmatch/internal/service"
	"hackmatch/internal/store/memory"
)

func newTestServer(t *testing.T) (*Server, *memory.Store, *service.Service) {
	t.Helper()
	st := memory.New()
	svc := service.New(nil, nil, local.New(8), st, 0, nil)
	require.NoError(t, svc.EnsureIndex(context.Background()))
	return New(svc, nil), st, svc
}

func seed(t *testing.T, st *memory.Store, svc *service.Service, title, hackathon, summary string) {
	t.Helper()
	_, err := st.InsertProject(context.Background(), &domain.Project{
		Title: title, HackathonTitle: hackathon, Summary: summary,
	})
	require.NoError(t, err)
	_, err = svc.Backfill(context.Background(), service.BackfillOptions{})
	require.NoError(t, err)
}

func TestSearchEndpoint(t *testing.T) {
	srv, st, svc := newTestServer(t)
	seed(t, st, svc, "Plant Pal", "H1", "plant watering robot")
	seed(t, st, svc, "Signly", "H2", "sign language tutor")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?q=plant+watering+robot&k=5&hackathon=H1", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var results []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "Plant Pal", results[0]["title"])
	assert.Equal(t, "H1", results[0]["hackathon_title"])
	assert.NotEmpty(t, results[0]["id"])
	assert.Contains(t, results[0], "score")
}

func TestSearchEndpoint_Validation(t *testing.T) {
	srv, _, _ := newTestServer(t)

	for _, target := range []string{"/api/v1/search", "/api/v1/search?q=x&k=0", "/api/v1/search?q=x&k=nope"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestBackfillEndpoint(t *testing.T) {
	srv, st, _ := newTestServer(t)
	_, err := st.InsertProject(context.Background(), &domain.Project{Title: "t", Summary: "s"})
	require.NoError(t, err)
	_, err = st.InsertProject(context.Background(), &domain.Project{Title: "empty"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/backfill", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var summary service.BackfillSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, service.BackfillSummary{Updated: 1, SkippedNoText: 1}, summary)
}

func TestAnalyzeEndpoint_RequiresURL(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", nil)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
