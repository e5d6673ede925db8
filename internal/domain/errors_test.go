package domain_test

import (
	"context"
	"errors"
	"testing"

	"github.com/boddenberg/pennybank-bfa-go/internal/domain"
)

func TestAggregationError_UnwrapsEveryFailure(t *testing.T) {
	errBalance := errors.New("ledger offline")
	aggErr := &domain.AggregationError{Failures: []*domain.SourceError{
		{Source: domain.SourceBalance, Err: errBalance},
		{Source: domain.SourceTransactions, Err: context.DeadlineExceeded},
	}}

	var err error = aggErr
	if !errors.Is(err, errBalance) {
		t.Error("expected errors.Is to find the balance cause")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("expected errors.Is to find the transactions cause")
	}

	var srcErr *domain.SourceError
	if !errors.As(err, &srcErr) {
		t.Fatal("expected errors.As to find a SourceError")
	}

	if !aggErr.Failed(domain.SourceBalance) || aggErr.Failed(domain.SourceProfile) {
		t.Errorf("unexpected Failed result for %v", aggErr.Sources())
	}
	if got := aggErr.Sources(); len(got) != 2 || got[0] != domain.SourceBalance {
		t.Errorf("unexpected sources %v", got)
	}
}

func TestAggregationError_Message(t *testing.T) {
	err := &domain.AggregationError{Failures: []*domain.SourceError{
		{Source: domain.SourceProfile, Err: errors.New("boom")},
	}}
	want := "dashboard aggregation failed: source profile: boom"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}
