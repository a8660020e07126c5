package actions

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/relloyd/makedw/constants"
	"github.com/relloyd/makedw/logger"
	"github.com/relloyd/makedw/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const generateBody = `{
  "config": {"scdType": "Type 2", "backdateHistTo": "2020-01-01"},
  "tables": [
    {"name": "Customer", "columns": [
      {"name": "CustomerId", "type": "int", "primaryKey": true},
      {"name": "Name", "type": "nvarchar(50)", "nullable": true}
    ]},
    {"name": "NoKey", "columns": [{"name": "Note", "type": "nvarchar(10)", "nullable": true}]}
  ]
}`

func newTestRouter(t *testing.T) (http.Handler, chan string, *SafeMapReports) {
	t.Helper()
	r, err := render.NewRenderer()
	require.NoError(t, err)
	stop := make(chan string, 1)
	runs := NewSafeMapReports()
	return newRouter(logger.Discard(), stop, r, runs), stop, runs
}

func TestHandlerHealth(t *testing.T) {
	h, _, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestHandlerStop(t *testing.T) {
	h, stop, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stop", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "stop", <-stop)
}

func TestHandlerGenerate(t *testing.T) {
	h, _, runs := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(generateBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := struct {
		Status string `json:"status"`
		Report struct {
			RunID     string         `json:"runId"`
			Generated []string       `json:"generated"`
			Failed    []TableFailure `json:"failed"`
		} `json:"report"`
		Units []ResponseUnit `json:"units"`
	}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status) // NoKey failed
	assert.Equal(t, []string{"Customer"}, resp.Report.Generated)
	require.Len(t, resp.Report.Failed, 1)
	assert.Equal(t, "NoKey", resp.Report.Failed[0].Table)
	require.Len(t, resp.Units, 1)
	assert.Equal(t, "Customer", resp.Units[0].Table)
	require.Len(t, resp.Units[0].Artifacts, 6)
	assert.True(t, strings.HasPrefix(resp.Units[0].Artifacts[4].SQL, "--Type 2 SCD"))
	assert.Contains(t, resp.Units[0].Artifacts[3].SQL, "2020-01-01 00:00:00")

	_, ok := runs.Load(resp.Report.RunID)
	assert.True(t, ok)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs/"+resp.Report.RunID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), resp.Report.RunID)
}

func TestHandlerGenerateRejectsBadRequests(t *testing.T) {
	h, _, _ := newTestRouter(t)
	for name, body := range map[string]string{
		"bad json":         `{"tables": [`,
		"bad scd type":     `{"config": {"scdType": "Type 3"}, "tables": []}`,
		"period selection": `{"config": {"tables": {"T": {"scdColumns": ["ValidTo"]}}}, "tables": []}`,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"status": "error"`)
		})
	}
}

func TestHandlerUnknownRun(t *testing.T) {
	h, _, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerGenerateRejectsOversizedBody(t *testing.T) {
	h, _, runs := newTestRouter(t)
	body := `{"tables": [], "pad": "` + strings.Repeat("x", constants.WebMaxRequestBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "error reading request")
	assert.Empty(t, runs.IDs())
}

func TestSafeMapReportsEvictsOldest(t *testing.T) {
	runs := NewSafeMapReports()
	runs.Limit = 3
	for i := 0; i < 5; i++ {
		runs.Store(&Report{RunID: fmt.Sprintf("run%v", i)})
	}
	assert.Equal(t, []string{"run2", "run3", "run4"}, runs.IDs())
	_, ok := runs.Load("run0")
	assert.False(t, ok)
	r, ok := runs.Load("run4")
	require.True(t, ok)
	assert.Equal(t, "run4", r.RunID)

	// Storing a held run again does not evict anything.
	runs.Store(&Report{RunID: "run3"})
	assert.Len(t, runs.IDs(), 3)
	assert.Equal(t, constants.WebMaxStoredRuns, NewSafeMapReports().Limit)
}
