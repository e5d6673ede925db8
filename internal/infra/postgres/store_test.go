package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/boddenberg/pennybank-bfa-go/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ============================================================
// Fakes
// ============================================================

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(r.values, dest)
}

type fakeRows struct {
	rows   [][]any
	pos    int
	err    error
	closed bool
}

func (r *fakeRows) Close()                                       { r.closed = true }
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return r.rows[r.pos-1], nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	return assign(r.rows[r.pos-1], dest)
}

func assign(values, dest []any) error {
	if len(values) != len(dest) {
		return fmt.Errorf("scan: %d values into %d targets", len(values), len(dest))
	}
	for i, v := range values {
		switch d := dest[i].(type) {
		case *string:
			*d = v.(string)
		case *time.Time:
			*d = v.(time.Time)
		default:
			return fmt.Errorf("scan: unsupported target %T", d)
		}
	}
	return nil
}

type fakeDB struct {
	row      fakeRow
	rows     *fakeRows
	queryErr error
	lastSQL  string
	lastArgs []any
}

func (db *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	db.lastSQL, db.lastArgs = sql, args
	return db.row
}

func (db *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	db.lastSQL, db.lastArgs = sql, args
	if db.queryErr != nil {
		return nil, db.queryErr
	}
	return db.rows, nil
}

// ============================================================
// Tests
// ============================================================

func TestStore_FetchProfile(t *testing.T) {
	db := &fakeDB{row: fakeRow{values: []any{"Jennifer Lopez", "Personal Account"}}}

	p, err := NewStore(db).FetchProfile(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.DisplayName != "Jennifer Lopez" || p.AccountTypeName != "Personal Account" {
		t.Errorf("unexpected profile %+v", p)
	}
}

func TestStore_FetchProfile_NoRows(t *testing.T) {
	db := &fakeDB{row: fakeRow{err: pgx.ErrNoRows}}

	_, err := NewStore(db).FetchProfile(context.Background())

	var srcErr *domain.SourceError
	if !errors.As(err, &srcErr) || srcErr.Source != domain.SourceProfile {
		t.Fatalf("expected profile SourceError, got %v", err)
	}
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_FetchTotalBalance(t *testing.T) {
	db := &fakeDB{row: fakeRow{values: []any{"12765.0000", "usd"}}}

	b, err := NewStore(db).FetchTotalBalance(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !b.Equal(domain.MustParseMoneyAmount("12765", "USD")) {
		t.Errorf("unexpected balance %v", b)
	}
}

func TestStore_FetchTotalBalance_BadNumeric(t *testing.T) {
	db := &fakeDB{row: fakeRow{values: []any{"NaN", "USD"}}}

	_, err := NewStore(db).FetchTotalBalance(context.Background())

	var valErr *domain.ErrValidation
	if !errors.As(err, &valErr) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestStore_FetchRecent(t *testing.T) {
	at := time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC)
	rows := &fakeRows{rows: [][]any{
		{"tx-1", "Figma", at, "Subscriptions", "outgoing", "250.00", "USD"},
		{"tx-2", "Receive from Alex", at.Add(-24 * time.Hour), "Money In", "incoming", "580.00", "USD"},
	}}
	db := &fakeDB{rows: rows}

	txs, err := NewStore(db).FetchRecent(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(txs))
	}
	if txs[1].Direction != domain.DirectionIncoming || !txs[1].Timestamp.Equal(at.Add(-24*time.Hour)) {
		t.Errorf("unexpected row %+v", txs[1])
	}
	if len(db.lastArgs) != 1 || db.lastArgs[0] != 2 {
		t.Errorf("expected limit argument 2, got %v", db.lastArgs)
	}
	if !rows.closed {
		t.Error("expected rows closed")
	}
}

func TestStore_FetchRecent_Errors(t *testing.T) {
	t.Run("query", func(t *testing.T) {
		db := &fakeDB{queryErr: errors.New("connection refused")}
		_, err := NewStore(db).FetchRecent(context.Background(), 10)

		var extErr *domain.ErrExternalService
		if !errors.As(err, &extErr) {
			t.Errorf("expected ErrExternalService, got %v", err)
		}
	})

	t.Run("iteration", func(t *testing.T) {
		db := &fakeDB{rows: &fakeRows{err: errors.New("conn reset")}}
		_, err := NewStore(db).FetchRecent(context.Background(), 10)

		var srcErr *domain.SourceError
		if !errors.As(err, &srcErr) || srcErr.Source != domain.SourceTransactions {
			t.Errorf("expected transactions SourceError, got %v", err)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		db := &fakeDB{queryErr: context.Canceled}
		_, err := NewStore(db).FetchRecent(context.Background(), 10)

		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected cancellation, got %v", err)
		}
	})
}
