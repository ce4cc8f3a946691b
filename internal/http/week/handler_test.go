package week_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/tassioalves/controle-financeiro-semanal/internal/http"
	weekhandler "github.com/tassioalves/controle-financeiro-semanal/internal/http/week"
	"github.com/tassioalves/controle-financeiro-semanal/internal/importer"
	"github.com/tassioalves/controle-financeiro-semanal/internal/kv"
	"github.com/tassioalves/controle-financeiro-semanal/internal/week"
)

var wednesday = time.Date(2024, time.June, 5, 10, 0, 0, 0, time.Local)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	ledger := week.New(kv.NewMemory(), week.WithClock(func() time.Time { return wednesday }))
	handler := weekhandler.NewHandler(ledger, importer.NewService())

	srv := httptest.NewServer(apphttp.New(handler))
	t.Cleanup(srv.Close)

	return srv
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	t.Cleanup(func() { resp.Body.Close() })

	return resp
}

func decode(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func TestAPI_TransactionLifecycle(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/api/v1/transactions",
		`{"description":"Mercado","amount":"42.50","date":"2024-06-05"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		ID          string `json:"id"`
		Amount      string `json:"amount"`
		AmountCents int64  `json:"amount_cents"`
		WeekID      string `json:"week_id"`
	}

	decode(t, resp, &created)
	assert.Equal(t, "42.50", created.Amount)
	assert.Equal(t, int64(4250), created.AmountCents)
	assert.NotEmpty(t, created.WeekID)

	resp = do(t, http.MethodGet, srv.URL+"/api/v1/transactions/current", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []json.RawMessage

	decode(t, resp, &list)
	assert.Len(t, list, 1)

	resp = do(t, http.MethodDelete, srv.URL+"/api/v1/transactions/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodDelete, srv.URL+"/api/v1/transactions/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_ValidationErrors(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/api/v1/transactions",
		`{"description":"Mercado","amount":"dez","date":"2024-06-05"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodPost, srv.URL+"/api/v1/transactions",
		`{"description":"","amount":"10.00","date":"2024-06-05"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_CloseWeek(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/api/v1/transactions",
		`{"description":"Mercado","amount":"42.50","date":"2024-06-05"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = do(t, http.MethodPost, srv.URL+"/api/v1/weeks/close", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cur struct {
		StartDate string `json:"start_date"`
		Closed    bool   `json:"closed"`
	}

	decode(t, resp, &cur)
	assert.Equal(t, "2024-06-05", cur.StartDate)
	assert.False(t, cur.Closed)

	resp = do(t, http.MethodPost, srv.URL+"/api/v1/weeks/close", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/api/v1/weeks/history?limit=10", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var history []struct {
		Total  string `json:"total"`
		Closed bool   `json:"closed"`
	}

	decode(t, resp, &history)
	require.Len(t, history, 1)
	assert.True(t, history[0].Closed)
	assert.Equal(t, "42.50", history[0].Total)
}

func TestAPI_Limit(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, http.MethodPut, srv.URL+"/api/v1/limit", `{"limit":"200.00"}`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	for _, amount := range []string{"80.00", "130.00"} {
		resp = do(t, http.MethodPost, srv.URL+"/api/v1/transactions",
			`{"description":"spend","amount":"`+amount+`","date":"2024-06-05"}`)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp = do(t, http.MethodGet, srv.URL+"/api/v1/limit/usage", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var usage struct {
		Limit        *string  `json:"limit"`
		Total        string   `json:"total"`
		Exceeded     bool     `json:"exceeded"`
		UsagePercent *float64 `json:"usage_percent"`
	}

	decode(t, resp, &usage)
	require.NotNil(t, usage.Limit)
	assert.Equal(t, "200.00", *usage.Limit)
	assert.Equal(t, "210.00", usage.Total)
	assert.True(t, usage.Exceeded)
	require.NotNil(t, usage.UsagePercent)
	assert.InDelta(t, 100, *usage.UsagePercent, 0.001)

	resp = do(t, http.MethodPut, srv.URL+"/api/v1/limit", `{"limit":null}`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/api/v1/limit/usage", "")
	decode(t, resp, &usage)
	assert.Nil(t, usage.Limit)
	assert.False(t, usage.Exceeded)
	assert.Nil(t, usage.UsagePercent)
}

func TestAPI_Schedule(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, http.MethodPut, srv.URL+"/api/v1/schedule", `{"enabled":true,"weekday":0,"hour":18}`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/api/v1/schedule", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var sched struct {
		Enabled bool `json:"enabled"`
		Weekday int  `json:"weekday"`
		Hour    int  `json:"hour"`
	}

	decode(t, resp, &sched)
	assert.True(t, sched.Enabled)
	assert.Equal(t, 0, sched.Weekday)
	assert.Equal(t, 18, sched.Hour)

	resp = do(t, http.MethodPut, srv.URL+"/api/v1/schedule", `{"enabled":true,"weekday":9,"hour":18}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_Import(t *testing.T) {
	srv := newTestServer(t)

	csv := "Data;Descrição;Valor\n2024-06-05;Mercado;42,50\n2024-05-29;Farmácia;10,00\n"

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/import", strings.NewReader(csv))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "text/csv")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Imported int `json:"imported"`
		Failed   []struct {
			Row int `json:"row"`
		} `json:"failed"`
	}

	decode(t, resp, &result)
	assert.Equal(t, 2, result.Imported)
	assert.Empty(t, result.Failed)
}
