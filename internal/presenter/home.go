package presenter

import (
	"context"
	"errors"

	"github.com/boddenberg/pennybank-bfa-go/internal/domain"
	"github.com/boddenberg/pennybank-bfa-go/internal/infra/observability"
	"github.com/boddenberg/pennybank-bfa-go/internal/port"

	"go.uber.org/zap"
)

const (
	// MaskedBalance replaces the balance while it is hidden.
	MaskedBalance = "••••••"
	// Placeholder stands in for values that are not available.
	Placeholder = "—"
	// OutcomeFallback labels loads that ended in the fallback state.
	OutcomeFallback = "fallback"

	screenHome = "home"
)

// RowKind tells the UI how to colour a transaction row.
type RowKind string

const (
	RowKindCredit RowKind = "credit"
	RowKindDebit  RowKind = "debit"
)

// TransactionRow is one display-ready transaction.
type TransactionRow struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Subtitle   string  `json:"subtitle"`
	Category   string  `json:"category"`
	Amount     string  `json:"amount"`
	Currency   string  `json:"currency"`
	AmountText string  `json:"amount_text"`
	Kind       RowKind `json:"kind"`
}

// HomeState is the display state of the home dashboard.
type HomeState struct {
	Phase             Phase            `json:"phase"`
	GreetingTitle     string           `json:"greeting_title"`
	GreetingSubtitle  string           `json:"greeting_subtitle"`
	IsBalanceHidden   bool             `json:"is_balance_hidden"`
	BalanceText       string           `json:"balance_text"`
	TransactionsTitle string           `json:"transactions_title"`
	Transactions      []TransactionRow `json:"transactions"`
}

// HomePresenter owns the home screen state. It triggers at most one
// aggregation per lifetime and swallows aggregation failures into a fallback
// state.
type HomePresenter struct {
	lifecycle

	dashboard port.DashboardFetcher
	formatter *Formatter
	limit     int
	metrics   *observability.Metrics
	logger    *zap.Logger

	state         HomeState
	latestBalance *domain.MoneyAmount
}

// NewHomePresenter creates the home screen state container.
func NewHomePresenter(
	dashboard port.DashboardFetcher,
	formatter *Formatter,
	limit int,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *HomePresenter {
	return &HomePresenter{
		lifecycle: lifecycle{phase: PhaseIdle},
		dashboard: dashboard,
		formatter: formatter,
		limit:     limit,
		metrics:   metrics,
		logger:    logger,
		state: HomeState{
			GreetingTitle:     formatter.Hello(Placeholder),
			BalanceText:       Placeholder,
			TransactionsTitle: "Transactions",
			Transactions:      []TransactionRow{},
		},
	}
}

// Activate starts the dashboard load in the background. It is a no-op when
// the screen already loaded, is loading or was closed. ctx contributes values
// such as trace context; its cancellation does not stop the load.
func (p *HomePresenter) Activate(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	loadCtx, task, ok := p.startLocked(ctx)
	if !ok {
		return
	}
	go p.load(loadCtx, task)
}

func (p *HomePresenter) load(ctx context.Context, task *loadTask) {
	defer finish(task)

	dash, err := p.dashboard.FetchDashboard(ctx, p.limit)

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.settledLocked(ctx) {
		p.logger.Debug("home load dropped after teardown")
		return
	}

	if err != nil {
		var aggErr *domain.AggregationError
		fields := []zap.Field{zap.Error(err)}
		if errors.As(err, &aggErr) {
			sources := make([]string, 0, len(aggErr.Failures))
			for _, s := range aggErr.Sources() {
				sources = append(sources, string(s))
			}
			fields = append(fields, zap.Strings("failed_sources", sources))
		}
		p.logger.Warn("home dashboard unavailable, showing fallback", fields...)
		p.metrics.IncrPresenterLoad(screenHome, OutcomeFallback)
		p.applyFallbackLocked()
		return
	}

	p.metrics.IncrPresenterLoad(screenHome, observability.OutcomeSuccess)
	p.applyDashboardLocked(dash)
}

func (p *HomePresenter) applyDashboardLocked(dash *domain.Dashboard) {
	balance := dash.TotalBalance
	p.latestBalance = &balance

	rows := make([]TransactionRow, 0, len(dash.RecentTransactions))
	for _, tx := range dash.RecentTransactions {
		rows = append(rows, p.row(tx))
	}

	p.phase = PhaseLoaded
	p.state.GreetingTitle = p.formatter.Hello(dash.UserProfile.DisplayName)
	p.state.GreetingSubtitle = p.formatter.Greeting()
	p.state.BalanceText = p.balanceTextLocked(balance)
	p.state.Transactions = rows
}

func (p *HomePresenter) applyFallbackLocked() {
	p.phase = PhaseFailed
	p.state.GreetingTitle = p.formatter.Hello("")
	p.state.GreetingSubtitle = p.formatter.Greeting()
	p.state.BalanceText = Placeholder
	p.state.Transactions = []TransactionRow{}
}

func (p *HomePresenter) row(tx domain.Transaction) TransactionRow {
	amount := p.formatter.FormatMoney(tx.Amount)
	row := TransactionRow{
		ID:       tx.ID,
		Title:    tx.Title,
		Subtitle: p.formatter.FormatTimestamp(tx.Timestamp),
		Category: tx.Category,
		Amount:   tx.Signed().String(),
		Currency: tx.Amount.Currency,
	}
	if tx.Direction == domain.DirectionIncoming {
		row.AmountText = "+" + amount
		row.Kind = RowKindCredit
	} else {
		row.AmountText = "-" + amount
		row.Kind = RowKindDebit
	}
	return row
}

func (p *HomePresenter) balanceTextLocked(balance domain.MoneyAmount) string {
	if p.state.IsBalanceHidden {
		return MaskedBalance
	}
	return p.formatter.FormatMoney(balance)
}

// ToggleBalanceVisibility flips the masked flag and re-derives the balance
// text from the last retrieved amount. Without one the placeholder stays.
func (p *HomePresenter) ToggleBalanceVisibility() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state.IsBalanceHidden = !p.state.IsBalanceHidden
	if p.latestBalance != nil {
		p.state.BalanceText = p.balanceTextLocked(*p.latestBalance)
	}
}

// Balance returns the last retrieved balance, unaffected by masking.
func (p *HomePresenter) Balance() (domain.MoneyAmount, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.latestBalance == nil {
		return domain.MoneyAmount{}, false
	}
	return *p.latestBalance, true
}

// CurrentDisplayState returns a copy of the display state.
func (p *HomePresenter) CurrentDisplayState() HomeState {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.state
	s.Phase = p.phase
	s.Transactions = append([]TransactionRow(nil), p.state.Transactions...)
	if s.Transactions == nil {
		s.Transactions = []TransactionRow{}
	}
	return s
}
