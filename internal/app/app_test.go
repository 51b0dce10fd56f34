package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"pokeguess/internal/config"
)

func testConfig(t *testing.T, redisAddr string) *config.Config {
	t.Helper()
	up := config.DefaultUpstreamConfig()
	up.BaseURL = "http://127.0.0.1:1"
	return &config.Config{
		Port:       8080,
		RedisURI:   "redis://" + redisAddr,
		JWTSecret:  "secret",
		TokenTTL:   time.Hour,
		Ledger:     config.LedgerSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "ledger.db"),
		Upstream:   up,
		Queue: config.QueueConfig{
			Target:         10,
			MaxFailures:    1,
			BackoffInitial: time.Millisecond,
			BackoffMax:     time.Millisecond,
			MaxSyncRefills: 1,
			RefillTimeout:  time.Second,
		},
	}
}

func TestNew_SQLiteLedger(t *testing.T) {
	mr := miniredis.RunT(t)
	a, err := New(context.Background(), testConfig(t, mr.Addr()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("health = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest("POST", "/v1/auth/guest", strings.NewReader(`{"nickname":"ash"}`)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("guest = %d %s", rec.Code, rec.Body.String())
	}
}

func TestNew_RedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	if _, err := New(context.Background(), testConfig(t, addr)); err == nil {
		t.Fatal("expected error with redis down")
	}
}

func TestOpenLedger_Unknown(t *testing.T) {
	cfg := testConfig(t, "")
	cfg.Ledger = "cassandra"
	if _, _, err := openLedger(context.Background(), cfg); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
