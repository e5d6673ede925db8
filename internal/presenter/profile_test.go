package presenter_test

import (
	"context"
	"errors"
	"testing"

	"github.com/boddenberg/pennybank-bfa-go/internal/domain"
	"github.com/boddenberg/pennybank-bfa-go/internal/infra/observability"
	"github.com/boddenberg/pennybank-bfa-go/internal/presenter"

	"go.uber.org/zap"
)

func TestProfile_Activate(t *testing.T) {
	src := staticProfile{profile: domain.UserProfile{DisplayName: "Jennifer Lopez", AccountTypeName: "Personal Account"}}
	p := presenter.NewProfilePresenter(presenter.ProfileFromSource(src), observability.NewMetrics(), zap.NewNop())

	if s := p.CurrentDisplayState(); s.DisplayName != presenter.Placeholder || len(s.MenuItems) != 0 {
		t.Errorf("unexpected initial state %+v", s)
	}

	p.Activate(context.Background())
	waitDone(t, p.Done())

	s := p.CurrentDisplayState()
	if s.Phase != presenter.PhaseLoaded {
		t.Fatalf("expected loaded, got %s", s.Phase)
	}
	if s.Title != "Profile" || s.DisplayName != "Jennifer Lopez" || s.AccountTypeName != "Personal Account" {
		t.Errorf("unexpected state %+v", s)
	}

	ids := make([]string, 0, len(s.MenuItems))
	for _, item := range s.MenuItems {
		ids = append(ids, item.ID)
	}
	want := []string{"member_id", "settings", "privacy", "help", "logout"}
	if len(ids) != len(want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("menu item %d: expected %s, got %s", i, want[i], ids[i])
		}
	}
	last := s.MenuItems[len(s.MenuItems)-1]
	if !last.IsDestructive {
		t.Error("expected logout to be destructive")
	}
	for _, item := range s.MenuItems[:len(s.MenuItems)-1] {
		if item.IsDestructive {
			t.Errorf("expected %s not destructive", item.ID)
		}
	}
}

func TestProfile_Activate_Fallback(t *testing.T) {
	src := staticProfile{err: errors.New("profile down")}
	p := presenter.NewProfilePresenter(presenter.ProfileFromSource(src), observability.NewMetrics(), zap.NewNop())

	p.Activate(context.Background())
	waitDone(t, p.Done())

	s := p.CurrentDisplayState()
	if s.Phase != presenter.PhaseFailed {
		t.Errorf("expected failed, got %s", s.Phase)
	}
	if s.DisplayName != presenter.Placeholder || s.AccountTypeName != "" {
		t.Errorf("unexpected fallback %+v", s)
	}
	if len(s.MenuItems) != 5 {
		t.Errorf("expected the menu regardless of failure, got %d items", len(s.MenuItems))
	}
}

func TestProfile_CloseBeforeActivate(t *testing.T) {
	src := staticProfile{profile: domain.UserProfile{DisplayName: "Jennifer Lopez"}}
	p := presenter.NewProfilePresenter(presenter.ProfileFromSource(src), observability.NewMetrics(), zap.NewNop())

	p.Close()
	p.Activate(context.Background())
	waitDone(t, p.Done())

	if s := p.CurrentDisplayState(); s.Phase != presenter.PhaseClosed || s.DisplayName != presenter.Placeholder {
		t.Errorf("expected no load after close, got %+v", s)
	}
}
