package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/senticheck/senticheck/internal/models"
)

// fakeBatchTx stands in for the outer batch transaction; savepoints opened
// on it report back which records committed and which rolled back.
type fakeBatchTx struct {
	pgx.Tx

	failIDs    map[int64]bool
	committed  []int64
	rolledBack []int64
}

func (f *fakeBatchTx) Begin(context.Context) (pgx.Tx, error) {
	return &fakeSavepoint{parent: f}, nil
}

type fakeSavepoint struct {
	pgx.Tx

	parent *fakeBatchTx
	id     int64
}

func (sp *fakeSavepoint) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	sp.id = args[0].(int64)
	if sp.parent.failIDs[sp.id] {
		return errRow{errors.New("null value in column violates not-null constraint")}
	}
	return idRow{sp.id}
}

func (sp *fakeSavepoint) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (sp *fakeSavepoint) Commit(context.Context) error {
	sp.parent.committed = append(sp.parent.committed, sp.id)
	return nil
}

func (sp *fakeSavepoint) Rollback(context.Context) error {
	sp.parent.rolledBack = append(sp.parent.rolledBack, sp.id)
	return nil
}

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

type idRow struct{ id int64 }

func (r idRow) Scan(dest ...any) error {
	*(dest[0].(*int64)) = r.id
	return nil
}

func sentimentRecords(ids ...int64) []models.SentimentRecord {
	records := make([]models.SentimentRecord, 0, len(ids))
	for _, id := range ids {
		r := models.SentimentRecord{CleanedPostID: id}
		r.SentimentLabel = models.SentimentPositive
		r.ConfidenceScore = 0.9
		records = append(records, r)
	}
	return records
}

func TestStoreSentimentRecordsIsolatesBadRecord(t *testing.T) {
	tx := &fakeBatchTx{failIDs: map[int64]bool{3: true}}

	stored, err := storeSentimentRecords(context.Background(), tx, sentimentRecords(1, 2, 3, 4, 5))
	if err != nil {
		t.Fatalf("one bad record must not fail the batch: %v", err)
	}
	if stored != 4 {
		t.Fatalf("stored = %d, want 4", stored)
	}

	if len(tx.rolledBack) != 1 || tx.rolledBack[0] != 3 {
		t.Errorf("rolled back = %v, want only record 3", tx.rolledBack)
	}
	for _, id := range []int64{1, 2, 4, 5} {
		found := false
		for _, committed := range tx.committed {
			if committed == id {
				found = true
			}
		}
		if !found {
			t.Errorf("record %d was not committed", id)
		}
	}
}

func TestStoreSentimentRecordsAllGood(t *testing.T) {
	tx := &fakeBatchTx{}

	stored, err := storeSentimentRecords(context.Background(), tx, sentimentRecords(10, 11))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored != 2 {
		t.Errorf("stored = %d, want 2", stored)
	}
	if len(tx.rolledBack) != 0 {
		t.Errorf("nothing should roll back, got %v", tx.rolledBack)
	}
}

func TestStoreSentimentRecordsAllBad(t *testing.T) {
	tx := &fakeBatchTx{failIDs: map[int64]bool{1: true, 2: true}}

	stored, err := storeSentimentRecords(context.Background(), tx, sentimentRecords(1, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored != 0 {
		t.Errorf("stored = %d, want 0", stored)
	}
	if len(tx.rolledBack) != 2 {
		t.Errorf("rolled back = %v, want both records", tx.rolledBack)
	}
}
