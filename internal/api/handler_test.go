package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/auth"
	"ledger/internal/cache"
	"ledger/internal/core"
	"ledger/internal/services"
	"ledger/internal/storage"
)

type fakeRecorder struct {
	recordErr error
	listErr   error
	lists     int
}

func (f *fakeRecorder) Record(context.Context, core.Transaction) (string, error) {
	return "id-1", f.recordErr
}

func (f *fakeRecorder) List(context.Context) ([]storage.StoredTransaction, error) {
	f.lists++
	return nil, f.listErr
}

type testEnv struct {
	handler http.Handler
	token   string
	repo    *storage.SQLiteRepository
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(context.Background(), filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	tokens, err := auth.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)
	token, err := tokens.Issue("tester")
	require.NoError(t, err)

	svc := services.NewTransactionService(repo, nil, nil)
	h := NewTransactionHandler(svc, cache.NewLRU[[]TransactionResponse](4, time.Minute), nil)
	return testEnv{handler: NewRouter(h, tokens, repo, nil), token: token, repo: repo}
}

func (e testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.token)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func TestCreateThenList(t *testing.T) {
	env := newTestEnv(t)

	// Prime the list cache so the create has something to invalidate.
	rec := env.do(t, http.MethodGet, "/transactions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = env.do(t, http.MethodPost, "/transactions",
		`{"date":"05/03/2024","description":"Salary","amount":1500.50,"type":"income"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created CreateTransactionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, StatusRecorded, created.Status)

	rec = env.do(t, http.MethodGet, "/transactions", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var list []TransactionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
	assert.Equal(t, "2024-03-05", list[0].Date)
	assert.Equal(t, "Salary", list[0].Description)
	assert.Equal(t, json.Number("1500.5"), list[0].Amount)
	assert.Equal(t, "income", list[0].Type)
	assert.Equal(t, storage.SyncPending, list[0].SyncStatus)
}

func TestCreateRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"date":`},
		{"bad date", `{"date":"31/02/2024","description":"x","amount":1,"type":"expense"}`},
		{"negative amount", `{"date":"01/02/2024","description":"x","amount":-1,"type":"expense"}`},
		{"empty description", `{"date":"01/02/2024","description":"  ","amount":1,"type":"expense"}`},
		{"exponent amount", `{"date":"01/02/2024","description":"x","amount":1e50000000,"type":"income"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/transactions", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, http.StatusBadRequest, resp.Status)
			assert.NotEmpty(t, resp.RequestID)
		})
	}

	stored, err := env.repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestTransactionsRequireToken(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/transactions", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/transactions", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthzIsPublic(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestListCachedUntilCreate(t *testing.T) {
	f := &fakeRecorder{}
	h := NewTransactionHandler(f, cache.NewLRU[[]TransactionResponse](4, time.Minute), nil)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ListTransactions(rec, httptest.NewRequest(http.MethodGet, "/transactions", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, 1, f.lists)

	rec := httptest.NewRecorder()
	h.CreateTransaction(rec, httptest.NewRequest(http.MethodPost, "/transactions",
		strings.NewReader(`{"date":"01/01/2024","description":"a","amount":"2","type":"expense"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	h.ListTransactions(rec, httptest.NewRequest(http.MethodGet, "/transactions", nil))
	assert.Equal(t, 2, f.lists)
}

func TestServiceErrorsAre500(t *testing.T) {
	f := &fakeRecorder{recordErr: errors.New("disk full"), listErr: errors.New("disk full")}
	h := NewTransactionHandler(f, nil, nil)

	rec := httptest.NewRecorder()
	h.CreateTransaction(rec, httptest.NewRequest(http.MethodPost, "/transactions",
		strings.NewReader(`{"date":"01/01/2024","description":"a","amount":2,"type":"expense"}`)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk full")

	rec = httptest.NewRecorder()
	h.ListTransactions(rec, httptest.NewRequest(http.MethodGet, "/transactions", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
