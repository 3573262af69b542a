package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"banktrack/models"
	"banktrack/pkg/ledger"
	"banktrack/store"

	"github.com/gin-gonic/gin"
)

// helper to perform requests with auth token
func performRequest(r http.Handler, method, path string, body io.Reader, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewReader(data)
}

// setupTestServer runs the full HTTP surface over the in-memory store, so
// the suite needs no database.
func setupTestServer(t *testing.T) (*gin.Engine, *store.Memory) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	st := store.NewMemory()
	a := &app{
		identity:  ledger.NewIdentity(st, 0),
		banks:     ledger.NewRegistry(st),
		accounts:  ledger.NewAccounts(st),
		netWorth:  ledger.NewNetWorth(st),
		history:   ledger.NewHistory(st),
		timeout:   5 * time.Second,
		jwtSecret: []byte("test-secret"),
	}
	r := gin.New()
	a.setupRoutes(r)
	return r, st
}

func registerAndLogin(t *testing.T, r http.Handler, email string) (string, uint) {
	t.Helper()
	resp := performRequest(r, http.MethodPost, "/register", jsonBody(t, map[string]string{
		"first_name": "Test", "last_name": "User", "email": email, "password": "secret1",
	}), "")
	if resp.Code != http.StatusOK {
		t.Fatalf("register failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodPost, "/login", jsonBody(t, map[string]string{
		"email": email, "password": "secret1",
	}), "")
	if resp.Code != http.StatusOK {
		t.Fatalf("login failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var loginResp struct {
		Token  string `json:"token"`
		UserID uint   `json:"user_id"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &loginResp); err != nil || loginResp.Token == "" {
		t.Fatalf("bad login response: %s", resp.Body.String())
	}
	return loginResp.Token, loginResp.UserID
}

func TestFullFlow(t *testing.T) {
	r, st := setupTestServer(t)
	token, userID := registerAndLogin(t, r, "user1@example.com")

	// duplicate registration is a conflict
	resp := performRequest(r, http.MethodPost, "/register", jsonBody(t, map[string]string{
		"first_name": "Test", "last_name": "User", "email": "user1@example.com", "password": "secret1",
	}), "")
	if resp.Code != http.StatusConflict {
		t.Fatalf("duplicate register: expected 409, got %d body=%s", resp.Code, resp.Body.String())
	}

	// register a bank twice; listing shows one entry
	for i := 0; i < 2; i++ {
		resp = performRequest(r, http.MethodPost, "/banks", jsonBody(t, map[string]string{"name": "Chase"}), token)
		if resp.Code != http.StatusOK {
			t.Fatalf("create bank (attempt %d) failed status=%d body=%s", i+1, resp.Code, resp.Body.String())
		}
	}
	resp = performRequest(r, http.MethodGet, "/banks", nil, token)
	if resp.Code != http.StatusOK {
		t.Fatalf("list banks failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var banks []models.Bank
	if err := json.Unmarshal(resp.Body.Bytes(), &banks); err != nil {
		t.Fatalf("bad banks payload: %s", resp.Body.String())
	}
	if len(banks) != 1 || banks[0].Name != "Chase" {
		t.Fatalf("expected exactly one Chase entry, got %v", banks)
	}

	// open checking + savings, then inspect balances
	resp = performRequest(r, http.MethodPost, "/accounts", jsonBody(t, map[string]any{
		"bank": "Chase", "type": "checking", "opening_balance": 10_000,
	}), token)
	if resp.Code != http.StatusOK {
		t.Fatalf("open checking failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodPost, "/accounts", jsonBody(t, map[string]any{
		"bank": "Chase", "type": "savings", "opening_balance": 5_000,
	}), token)
	if resp.Code != http.StatusOK {
		t.Fatalf("open savings failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// duplicate account type at the same bank conflicts
	resp = performRequest(r, http.MethodPost, "/accounts", jsonBody(t, map[string]any{
		"bank": "Chase", "type": "checking", "opening_balance": 1,
	}), token)
	if resp.Code != http.StatusConflict {
		t.Fatalf("duplicate account: expected 409, got %d", resp.Code)
	}

	// unknown bank is a 404
	resp = performRequest(r, http.MethodPost, "/accounts", jsonBody(t, map[string]any{
		"bank": "Nowhere", "type": "checking", "opening_balance": 1,
	}), token)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("unknown bank: expected 404, got %d", resp.Code)
	}

	resp = performRequest(r, http.MethodGet, "/accounts/Chase/checking/balance", nil, token)
	if resp.Code != http.StatusOK {
		t.Fatalf("balance failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var balResp struct {
		Balance int64 `json:"balance"`
	}
	_ = json.Unmarshal(resp.Body.Bytes(), &balResp)
	if balResp.Balance != 10_000 {
		t.Fatalf("checking balance = %d, want 10000", balResp.Balance)
	}

	resp = performRequest(r, http.MethodGet, "/networth", nil, token)
	if resp.Code != http.StatusOK {
		t.Fatalf("networth failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var nwResp struct {
		NetWorth int64 `json:"net_worth"`
	}
	_ = json.Unmarshal(resp.Body.Bytes(), &nwResp)
	if nwResp.NetWorth != 15_000 {
		t.Fatalf("net worth = %d, want 15000", nwResp.NetWorth)
	}

	resp = performRequest(r, http.MethodGet, "/banks/Chase/balance", nil, token)
	if resp.Code != http.StatusOK {
		t.Fatalf("bank balance failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// seed two history rows through the store and query them back
	for i, at := range []time.Time{
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local),
		time.Date(2024, 3, 20, 10, 0, 0, 0, time.Local),
	} {
		txn := models.Transaction{
			UserID: userID, BankName: "Chase", AccountType: models.Checking,
			At: at, Summary: fmt.Sprintf("txn-%d", i), Kind: "purchase", Amount: -100,
		}
		if err := st.InsertTransaction(context.Background(), &txn); err != nil {
			t.Fatalf("seed transaction: %v", err)
		}
	}
	resp = performRequest(r, http.MethodGet, "/accounts/Chase/checking/transactions?limit=5", nil, token)
	if resp.Code != http.StatusOK {
		t.Fatalf("recent failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var txns []models.Transaction
	_ = json.Unmarshal(resp.Body.Bytes(), &txns)
	if len(txns) != 2 || txns[0].Summary != "txn-1" {
		t.Fatalf("recent transactions wrong: %v", txns)
	}

	resp = performRequest(r, http.MethodGet, "/accounts/Chase/checking/transactions/monthly?date=2024-03-15", nil, token)
	if resp.Code != http.StatusOK {
		t.Fatalf("monthly failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	txns = nil
	_ = json.Unmarshal(resp.Body.Bytes(), &txns)
	if len(txns) != 2 {
		t.Fatalf("expected both March transactions, got %v", txns)
	}

	// history scoped to an account that does not exist is a 404
	resp = performRequest(r, http.MethodGet, "/accounts/Nowhere/checking/transactions", nil, token)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("missing scope: expected 404, got %d", resp.Code)
	}

	// unauthorized access to a protected endpoint is a 401
	resp = performRequest(r, http.MethodGet, "/networth", nil, "")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.Code)
	}

	// deleting the user cascades; the token is now useless for data access
	resp = performRequest(r, http.MethodDelete, "/me", nil, token)
	if resp.Code != http.StatusOK {
		t.Fatalf("delete me failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodGet, "/accounts/Chase/checking/transactions", nil, token)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("history after delete: expected 404, got %d", resp.Code)
	}
	resp = performRequest(r, http.MethodPost, "/login", jsonBody(t, map[string]string{
		"email": "user1@example.com", "password": "secret1",
	}), "")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("login after delete: expected 401, got %d", resp.Code)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	r, _ := setupTestServer(t)
	registerAndLogin(t, r, "user2@example.com")

	resp := performRequest(r, http.MethodPost, "/login", jsonBody(t, map[string]string{
		"email": "user2@example.com", "password": "wrong",
	}), "")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", resp.Code, resp.Body.String())
	}
}

func TestAccountTypeValidation(t *testing.T) {
	r, _ := setupTestServer(t)
	token, _ := registerAndLogin(t, r, "user3@example.com")

	resp := performRequest(r, http.MethodPost, "/banks", jsonBody(t, map[string]string{"name": "Chase"}), token)
	if resp.Code != http.StatusOK {
		t.Fatalf("create bank failed: %d", resp.Code)
	}
	resp = performRequest(r, http.MethodPost, "/accounts", jsonBody(t, map[string]any{
		"bank": "Chase", "type": "offshore", "opening_balance": 1,
	}), token)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("unknown type: expected 400, got %d", resp.Code)
	}
}
