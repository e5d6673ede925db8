package handler_test

import (
	"net/http"
	"testing"

	"github.com/boddenberg/pennybank-bfa-go/internal/domain"
	"github.com/boddenberg/pennybank-bfa-go/internal/infra/fixture"
	"github.com/boddenberg/pennybank-bfa-go/internal/presenter"
)

type scanResult struct {
	Accepted bool                `json:"accepted"`
	State    presenter.ScanState `json:"state"`
}

func createSession(t *testing.T, srv *testServer) string {
	t.Helper()
	rec := srv.do(t, http.MethodPost, "/v1/sessions", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	id := decode[map[string]string](t, rec)["session_id"]
	if id == "" {
		t.Fatal("expected session id")
	}
	return id
}

func TestSession_HomeFlow(t *testing.T) {
	srv := newTestServer(t, nil)
	id := createSession(t, srv)
	base := "/v1/sessions/" + id

	home := decode[presenter.HomeState](t, srv.do(t, http.MethodGet, base+"/home?wait=true", nil))
	if home.GreetingTitle != "Hi, Jennifer Lopez" || home.BalanceText != "$12,765.00" {
		t.Errorf("unexpected home %+v", home)
	}
	want := []string{"-$250.00", "+$580.00", "-$99.00"}
	if len(home.Transactions) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(home.Transactions))
	}
	for i, w := range want {
		if home.Transactions[i].AmountText != w {
			t.Errorf("row %d: expected %s, got %s", i, w, home.Transactions[i].AmountText)
		}
	}

	home = decode[presenter.HomeState](t, srv.do(t, http.MethodPost, base+"/home/balance-visibility", nil))
	if !home.IsBalanceHidden || home.BalanceText != presenter.MaskedBalance {
		t.Errorf("expected masked balance, got %+v", home)
	}
	home = decode[presenter.HomeState](t, srv.do(t, http.MethodPost, base+"/home/balance-visibility", nil))
	if home.IsBalanceHidden || home.BalanceText != "$12,765.00" {
		t.Errorf("expected visible balance, got %+v", home)
	}

	profile := decode[presenter.ProfileState](t, srv.do(t, http.MethodGet, base+"/profile?wait=true", nil))
	if profile.DisplayName != "Jennifer Lopez" || len(profile.MenuItems) != 5 {
		t.Errorf("unexpected profile %+v", profile)
	}

	if rec := srv.do(t, http.MethodDelete, base, nil); rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if rec := srv.do(t, http.MethodGet, base+"/home", nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after close, got %d", rec.Code)
	}

	snap := decode[domain.DashboardMetrics](t, srv.do(t, http.MethodGet, "/v1/metrics/dashboard", nil))
	if snap.ActiveSessions != 0 || snap.TotalAggregations != 1 {
		t.Errorf("unexpected metrics %+v", snap)
	}
}

func TestSession_HomeFallback(t *testing.T) {
	srv := newTestServer(t, nil, fixture.WithFailures(domain.SourceBalance))
	id := createSession(t, srv)

	home := decode[presenter.HomeState](t, srv.do(t, http.MethodGet, "/v1/sessions/"+id+"/home?wait=true", nil))
	if home.Phase != presenter.PhaseFailed || home.GreetingTitle != "Hi" || home.BalanceText != presenter.Placeholder || len(home.Transactions) != 0 {
		t.Errorf("unexpected fallback %+v", home)
	}
}

func TestSession_ScanFlow(t *testing.T) {
	srv := newTestServer(t, nil)
	base := "/v1/sessions/" + createSession(t, srv) + "/scan"

	res := decode[scanResult](t, srv.do(t, http.MethodPost, base, map[string]string{"code": presenter.MemberCode}))
	if !res.Accepted || res.State.ScannedCode == nil || res.State.ScannedCode.Kind != presenter.CodeKindMember {
		t.Errorf("unexpected scan %+v", res)
	}

	res = decode[scanResult](t, srv.do(t, http.MethodPost, base, map[string]string{"code": "https://example.com"}))
	if res.Accepted {
		t.Error("expected second code ignored")
	}

	state := decode[presenter.ScanState](t, srv.do(t, http.MethodDelete, base, nil))
	if !state.IsScanningEnabled || state.ScannedCode != nil {
		t.Errorf("expected dismissed state, got %+v", state)
	}

	state = decode[presenter.ScanState](t, srv.do(t, http.MethodPost, base+"/report", map[string]string{"reason": "no_code"}))
	if state.ErrorMessage != presenter.MessageNoCode {
		t.Errorf("unexpected message %q", state.ErrorMessage)
	}
	state = decode[presenter.ScanState](t, srv.do(t, http.MethodPost, base+"/report", map[string]string{"reason": ""}))
	if state.ErrorMessage != "" {
		t.Errorf("expected cleared message, got %q", state.ErrorMessage)
	}

	if rec := srv.do(t, http.MethodPost, base+"/report", map[string]string{"reason": "blurry"}); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if rec := srv.do(t, http.MethodPost, base, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty body, got %d", rec.Code)
	}

	state = decode[presenter.ScanState](t, srv.do(t, http.MethodGet, base, nil))
	if !state.IsScanningEnabled {
		t.Errorf("unexpected state %+v", state)
	}
}

func TestSession_Unknown(t *testing.T) {
	srv := newTestServer(t, nil)

	for _, path := range []string{"/v1/sessions/nope/home", "/v1/sessions/nope/profile", "/v1/sessions/nope/scan"} {
		if rec := srv.do(t, http.MethodGet, path, nil); rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", path, rec.Code)
		}
	}
	if rec := srv.do(t, http.MethodDelete, "/v1/sessions/nope", nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
