package supabase_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/boddenberg/pennybank-bfa-go/internal/domain"
	"github.com/boddenberg/pennybank-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/pennybank-bfa-go/internal/infra/supabase"

	"go.uber.org/zap"
)

func newClient(t *testing.T, handler http.HandlerFunc) *supabase.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return supabase.NewClient(http.DefaultClient, srv.URL, "anon", "service",
		resilience.NewCircuitBreaker("supabase", zap.NewNop()),
		resilience.Config{MaxRetries: 1, InitialBackoff: time.Millisecond}, zap.NewNop())
}

func TestClient_FetchProfile(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") != "anon" || r.Header.Get("Authorization") != "Bearer service" {
			t.Errorf("missing auth headers")
		}
		if !strings.HasPrefix(r.URL.Path, "/rest/v1/user_profile") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`[{"display_name":"Jennifer Lopez","account_type_name":"Personal Account"}]`))
	})

	p, err := c.FetchProfile(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.DisplayName != "Jennifer Lopez" {
		t.Errorf("unexpected profile %+v", p)
	}
}

func TestClient_FetchProfile_Empty(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	_, err := c.FetchProfile(context.Background())
	var nf *domain.ErrNotFound
	if !errors.As(err, &nf) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestClient_FetchTotalBalance(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"total":12765.00,"currency":"USD"}]`))
	})

	b, err := c.FetchTotalBalance(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !b.Equal(domain.MustParseMoneyAmount("12765", "USD")) {
		t.Errorf("unexpected balance %v", b)
	}
}

func TestClient_FetchRecent(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "1" {
			t.Errorf("expected limit=1, got %q", got)
		}
		w.Write([]byte(`[{"id":"tx-1","title":"Figma","occurred_at":"2024-03-05T09:30:00Z","category":"Subscriptions","direction":"outgoing","amount":250,"currency":"USD"}]`))
	})

	txs, err := c.FetchRecent(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txs) != 1 || txs[0].Direction != domain.DirectionOutgoing || !txs[0].Amount.Equal(domain.MustParseMoneyAmount("250", "USD")) {
		t.Errorf("unexpected transactions %+v", txs)
	}
}

func TestClient_ServerError(t *testing.T) {
	var calls atomic.Int32
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.FetchRecent(context.Background(), 10)

	var srcErr *domain.SourceError
	if !errors.As(err, &srcErr) || srcErr.Source != domain.SourceTransactions {
		t.Fatalf("expected transactions SourceError, got %v", err)
	}
	var ext *domain.ErrExternalService
	if !errors.As(err, &ext) {
		t.Errorf("expected ErrExternalService, got %v", err)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("expected 1 call plus 1 retry, got %d", n)
	}
}
