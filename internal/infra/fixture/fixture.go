// Package fixture serves dashboard data from a YAML document. It backs local
// development and demos, and can inject failures and latency per source.
package fixture

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/boddenberg/pennybank-bfa-go/internal/domain"
	"github.com/boddenberg/pennybank-bfa-go/internal/port"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultDocument []byte

// ErrInjected is returned by sources listed under failures.
var ErrInjected = errors.New("injected fixture failure")

var (
	_ port.ProfileSource     = (*Source)(nil)
	_ port.BalanceSource     = (*Source)(nil)
	_ port.TransactionSource = (*Source)(nil)
)

type document struct {
	Profile struct {
		DisplayName     string `yaml:"display_name"`
		AccountTypeName string `yaml:"account_type_name"`
	} `yaml:"profile"`
	Balance struct {
		Value    string `yaml:"value"`
		Currency string `yaml:"currency"`
	} `yaml:"balance"`
	Transactions []struct {
		ID        string        `yaml:"id"`
		Title     string        `yaml:"title"`
		Category  string        `yaml:"category"`
		Direction string        `yaml:"direction"`
		Amount    string        `yaml:"amount"`
		Currency  string        `yaml:"currency"`
		Age       time.Duration `yaml:"age"`
	} `yaml:"transactions"`
	Failures []domain.SourceName `yaml:"failures"`
	Latency  time.Duration       `yaml:"latency"`
}

type entry struct {
	tx  domain.Transaction
	age time.Duration
}

// Source implements the three dashboard sources over a parsed document.
// Transaction timestamps are computed from the clock on every fetch.
type Source struct {
	profile  domain.UserProfile
	balance  domain.MoneyAmount
	entries  []entry
	failures map[domain.SourceName]bool
	latency  time.Duration
	now      func() time.Time
}

// Option configures a Source.
type Option func(*Source)

// WithClock sets the clock transaction ages are measured from.
func WithClock(now func() time.Time) Option {
	return func(s *Source) { s.now = now }
}

// WithFailures makes the named sources fail with ErrInjected, in addition to
// those listed in the document.
func WithFailures(sources ...domain.SourceName) Option {
	return func(s *Source) {
		for _, name := range sources {
			s.failures[name] = true
		}
	}
}

// WithLatency overrides the document's per-fetch latency.
func WithLatency(d time.Duration) Option {
	return func(s *Source) { s.latency = d }
}

// Default returns the embedded demo account.
func Default(opts ...Option) (*Source, error) {
	return Parse(defaultDocument, opts...)
}

// Load reads a fixture document from path. An empty path loads the default.
func Load(path string, opts ...Option) (*Source, error) {
	if path == "" {
		return Default(opts...)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return Parse(data, opts...)
}

// Parse decodes and validates a fixture document. Transactions without an id
// get a random one, fixed for the Source's lifetime.
func Parse(data []byte, opts ...Option) (*Source, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}

	balance, err := domain.ParseMoneyAmount(doc.Balance.Value, doc.Balance.Currency)
	if err != nil {
		return nil, fmt.Errorf("fixture balance: %w", err)
	}

	s := &Source{
		profile: domain.UserProfile{
			DisplayName:     doc.Profile.DisplayName,
			AccountTypeName: doc.Profile.AccountTypeName,
		},
		balance:  balance,
		entries:  make([]entry, 0, len(doc.Transactions)),
		failures: make(map[domain.SourceName]bool, len(doc.Failures)),
		latency:  doc.Latency,
		now:      time.Now,
	}

	for i, t := range doc.Transactions {
		amount, err := domain.ParseMoneyAmount(t.Amount, t.Currency)
		if err != nil {
			return nil, fmt.Errorf("fixture transaction %d: %w", i, err)
		}
		tx := domain.Transaction{
			ID:        t.ID,
			Title:     t.Title,
			Category:  t.Category,
			Direction: domain.Direction(t.Direction),
			Amount:    amount,
		}
		if tx.ID == "" {
			tx.ID = uuid.NewString()
		}
		if err := tx.Validate(); err != nil {
			return nil, fmt.Errorf("fixture transaction %d: %w", i, err)
		}
		s.entries = append(s.entries, entry{tx: tx, age: t.Age})
	}

	for _, name := range doc.Failures {
		switch name {
		case domain.SourceProfile, domain.SourceBalance, domain.SourceTransactions:
			s.failures[name] = true
		default:
			return nil, &domain.ErrValidation{Field: "failures", Message: "unknown source " + string(name)}
		}
	}

	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// FetchProfile returns the document's profile.
func (s *Source) FetchProfile(ctx context.Context) (domain.UserProfile, error) {
	if err := s.simulate(ctx, domain.SourceProfile); err != nil {
		return domain.UserProfile{}, err
	}
	return s.profile, nil
}

// FetchTotalBalance returns the document's balance.
func (s *Source) FetchTotalBalance(ctx context.Context) (domain.MoneyAmount, error) {
	if err := s.simulate(ctx, domain.SourceBalance); err != nil {
		return domain.MoneyAmount{}, err
	}
	return s.balance, nil
}

// FetchRecent returns the first limit transactions, newest first as listed.
func (s *Source) FetchRecent(ctx context.Context, limit int) ([]domain.Transaction, error) {
	if err := s.simulate(ctx, domain.SourceTransactions); err != nil {
		return nil, err
	}

	n := min(max(limit, 0), len(s.entries))
	now := s.now()
	out := make([]domain.Transaction, 0, n)
	for _, e := range s.entries[:n] {
		tx := e.tx
		tx.Timestamp = now.Add(-e.age)
		out = append(out, tx)
	}
	return out, nil
}

func (s *Source) simulate(ctx context.Context, source domain.SourceName) error {
	if s.latency > 0 {
		timer := time.NewTimer(s.latency)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if s.failures[source] {
		return &domain.ErrExternalService{Service: "fixture/" + string(source), Err: ErrInjected}
	}
	return nil
}
