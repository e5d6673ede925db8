package presenter

import (
	"context"

	"github.com/boddenberg/pennybank-bfa-go/internal/domain"
	"github.com/boddenberg/pennybank-bfa-go/internal/infra/observability"
	"github.com/boddenberg/pennybank-bfa-go/internal/port"

	"go.uber.org/zap"
)

const screenProfile = "profile"

// MenuItem is one entry of the profile menu.
type MenuItem struct {
	ID            string `json:"id"`
	Icon          string `json:"icon"`
	Title         string `json:"title"`
	IsDestructive bool   `json:"is_destructive"`
}

// ProfileState is the display state of the profile screen.
type ProfileState struct {
	Phase           Phase      `json:"phase"`
	Title           string     `json:"title"`
	DisplayName     string     `json:"display_name"`
	AccountTypeName string     `json:"account_type_name"`
	MenuItems       []MenuItem `json:"menu_items"`
}

func profileMenu() []MenuItem {
	return []MenuItem{
		{ID: "member_id", Icon: "qrcode", Title: "Member ID"},
		{ID: "settings", Icon: "gearshape", Title: "Settings"},
		{ID: "privacy", Icon: "lock", Title: "Privacy & Security"},
		{ID: "help", Icon: "questionmark.circle", Title: "Help Center"},
		{ID: "logout", Icon: "rectangle.portrait.and.arrow.right", Title: "Log Out", IsDestructive: true},
	}
}

// ProfilePresenter owns the profile screen state.
type ProfilePresenter struct {
	lifecycle

	profiles port.ProfileGetter
	metrics  *observability.Metrics
	logger   *zap.Logger

	state ProfileState
}

// NewProfilePresenter creates the profile screen state container.
func NewProfilePresenter(profiles port.ProfileGetter, metrics *observability.Metrics, logger *zap.Logger) *ProfilePresenter {
	return &ProfilePresenter{
		lifecycle: lifecycle{phase: PhaseIdle},
		profiles:  profiles,
		metrics:   metrics,
		logger:    logger,
		state: ProfileState{
			Title:       "Profile",
			DisplayName: Placeholder,
			MenuItems:   []MenuItem{},
		},
	}
}

// Activate loads the profile once in the background, like HomePresenter.Activate.
func (p *ProfilePresenter) Activate(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	loadCtx, task, ok := p.startLocked(ctx)
	if !ok {
		return
	}
	go p.load(loadCtx, task)
}

func (p *ProfilePresenter) load(ctx context.Context, task *loadTask) {
	defer finish(task)

	profile, err := p.profiles.GetUserProfile(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.settledLocked(ctx) {
		return
	}

	if err != nil {
		p.logger.Warn("profile unavailable, showing fallback", zap.Error(err))
		p.metrics.IncrPresenterLoad(screenProfile, OutcomeFallback)
		p.phase = PhaseFailed
		p.state.DisplayName = Placeholder
		p.state.AccountTypeName = ""
	} else {
		p.metrics.IncrPresenterLoad(screenProfile, observability.OutcomeSuccess)
		p.phase = PhaseLoaded
		p.state.DisplayName = profile.DisplayName
		p.state.AccountTypeName = profile.AccountTypeName
	}
	p.state.MenuItems = profileMenu()
}

// CurrentDisplayState returns a copy of the display state.
func (p *ProfilePresenter) CurrentDisplayState() ProfileState {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.state
	s.Phase = p.phase
	s.MenuItems = append(make([]MenuItem, 0, len(p.state.MenuItems)), p.state.MenuItems...)
	return s
}

var _ port.ProfileGetter = profileGetterFunc(nil)

// profileGetterFunc adapts a plain ProfileSource for screens that need no cache.
type profileGetterFunc func(ctx context.Context) (domain.UserProfile, error)

func (f profileGetterFunc) GetUserProfile(ctx context.Context) (domain.UserProfile, error) {
	return f(ctx)
}

// ProfileFromSource exposes a ProfileSource as a ProfileGetter.
func ProfileFromSource(src port.ProfileSource) port.ProfileGetter {
	return profileGetterFunc(src.FetchProfile)
}
