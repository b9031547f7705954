package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/marketlens/marketlens/internal/core"
)

func TestNew_RequiresURL(t *testing.T) {
	if _, err := New("", nil); err == nil {
		t.Error("expected error for empty url")
	}
}

func TestSendSignals(t *testing.T) {
	var received map[string]any
	var gotHeader string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Api-Key")
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &received); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	wh, err := New(srv.URL, map[string]string{"X-Api-Key": "secret"})
	if err != nil {
		t.Fatal(err)
	}

	signals := []core.Signal{{
		ID:         "s1",
		Symbol:     "AAPL",
		SignalDate: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		Type:       core.SignalBuy,
		EntryPrice: 103,
	}}
	if err := wh.SendSignals(context.Background(), signals); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if received["type"] != "signals" {
		t.Errorf("type = %v, want signals", received["type"])
	}
	if received["count"] != float64(1) {
		t.Errorf("count = %v, want 1", received["count"])
	}
	if gotHeader != "secret" {
		t.Errorf("custom header = %q, want secret", gotHeader)
	}
}

func TestSendSignals_EmptyBatchSkipsRequest(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	wh, err := New(srv.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := wh.SendSignals(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Error("empty batch must not post")
	}
}

func TestSend_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	wh, err := New(srv.URL, nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := wh.SendTransitions(context.Background(), []core.Transition{{SignalID: "s1"}}); err == nil {
		t.Error("expected error on 500 response")
	}
}
