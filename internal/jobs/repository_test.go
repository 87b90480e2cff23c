package jobs

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"

	"github.com/fathomline/taxa/internal/classify"
)

// stubConn serves the two statements the transition path issues: the
// conditional UPDATE and the follow-up status lookup.
type stubConn struct {
	affected int64
	status   string // "" means the job row is absent
}

func (c *stubConn) Prepare(query string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported")
}

func (c *stubConn) Close() error { return nil }

func (c *stubConn) Begin() (driver.Tx, error) {
	return nil, errors.New("transactions not supported")
}

func (c *stubConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	return driver.RowsAffected(c.affected), nil
}

func (c *stubConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	rows := &stubRows{}
	if c.status != "" {
		rows.values = [][]driver.Value{{c.status}}
	}
	return rows, nil
}

type stubRows struct {
	values [][]driver.Value
}

func (r *stubRows) Columns() []string { return []string{"status"} }

func (r *stubRows) Close() error { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if len(r.values) == 0 {
		return io.EOF
	}
	copy(dest, r.values[0])
	r.values = r.values[1:]
	return nil
}

type stubDriver struct {
	conn *stubConn
}

func (d *stubDriver) Open(name string) (driver.Conn, error) { return d.conn, nil }

var stubDriverSeq atomic.Int64

func newStubRepo(t *testing.T, conn *stubConn) *repo {
	t.Helper()

	name := fmt.Sprintf("jobs-stub-%d", stubDriverSeq.Add(1))
	sql.Register(name, &stubDriver{conn: conn})

	db, err := sql.Open(name, "")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	return &repo{
		db:     db,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestMarkProcessingClaims(t *testing.T) {
	r := newStubRepo(t, &stubConn{affected: 1})

	if err := r.MarkProcessing(context.Background(), uuid.New()); err != nil {
		t.Errorf("MarkProcessing() = %v, want claim to succeed", err)
	}
}

func TestMarkProcessingLostSwap(t *testing.T) {
	tests := []struct {
		name   string
		status string
	}{
		{"already claimed", "processing"},
		{"already completed", "completed"},
		{"already failed", "failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newStubRepo(t, &stubConn{affected: 0, status: tt.status})

			err := r.MarkProcessing(context.Background(), uuid.New())
			if !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("MarkProcessing() = %v, want ErrInvalidTransition", err)
			}
			if !strings.Contains(err.Error(), tt.status+" -> processing") {
				t.Errorf("error = %q, want the lost transition named", err)
			}
		})
	}
}

func TestMarkProcessingAbsentRow(t *testing.T) {
	r := newStubRepo(t, &stubConn{affected: 0})

	if err := r.MarkProcessing(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkProcessing() = %v, want ErrNotFound", err)
	}
}

func TestCompleteRejectsTerminalJob(t *testing.T) {
	r := newStubRepo(t, &stubConn{affected: 0, status: "failed"})

	err := r.Complete(context.Background(), uuid.New(), &classify.Result{}, 100)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Complete() = %v, want ErrInvalidTransition", err)
	}
}

func TestFailRejectsTerminalJob(t *testing.T) {
	r := newStubRepo(t, &stubConn{affected: 0, status: "completed"})

	err := r.Fail(context.Background(), uuid.New(), "EXTRACTION_FAILED", "no text")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fail() = %v, want ErrInvalidTransition", err)
	}
}

func TestReleaseRequiresProcessing(t *testing.T) {
	r := newStubRepo(t, &stubConn{affected: 0, status: "pending"})

	err := r.Release(context.Background(), uuid.New())
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Release() = %v, want ErrInvalidTransition", err)
	}
}
