package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chefserge/chefsite-go/internal/config"
)

func TestHealthz(t *testing.T) {
	h := NewHealthHandler(testDB(t), &config.Config{})

	rec := httptest.NewRecorder()
	h.Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assertStatus(t, rec.Code, http.StatusOK)
	if got := rec.Body.String(); got != "ok" {
		t.Errorf("body = %q; want %q", got, "ok")
	}
}

func TestHealthConnected(t *testing.T) {
	h := NewHealthHandler(testDB(t), &config.Config{})

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assertStatus(t, rec.Code, http.StatusOK)

	var resp struct {
		Status      string `json:"status"`
		Database    string `json:"database"`
		DatabaseURL string `json:"database_url"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Status != "ok" || resp.Database != "connected" {
		t.Errorf("response = %+v; want ok/connected", resp)
	}
	if resp.DatabaseURL != "sqlite" {
		t.Errorf("database_url = %q; want sqlite", resp.DatabaseURL)
	}
}

func TestHealthDisconnected(t *testing.T) {
	db := testDB(t)
	h := NewHealthHandler(db, &config.Config{})
	_ = db.Close()

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assertStatus(t, rec.Code, http.StatusInternalServerError)

	var resp struct {
		Status   string `json:"status"`
		Database string `json:"database"`
		Error    string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Status != "error" || resp.Database != "disconnected" || resp.Error == "" {
		t.Errorf("response = %+v; want error/disconnected with a message", resp)
	}
}
