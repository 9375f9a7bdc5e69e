package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"io"
	"strings"
	"testing"

	"github.com/amitkrsingh19/parking-services/internal/model"
)

// A minimal recording driver: every statement (plus BEGIN/COMMIT/
// ROLLBACK markers) is appended to the current recorder, SELECTs answer
// a single zero count and INSERTs report one affected row.  Enough to
// observe the SQL a repo method issues without a live database.

type queryRecorder struct{ queries []string }

func (r *queryRecorder) index(substr string) int {
	for i, q := range r.queries {
		if strings.Contains(q, substr) {
			return i
		}
	}
	return -1
}

var activeRecorder *queryRecorder

type recordingDriver struct{}

func (recordingDriver) Open(string) (driver.Conn, error) {
	return &recordingConn{rec: activeRecorder}, nil
}

type recordingConn struct{ rec *queryRecorder }

func (c *recordingConn) Prepare(string) (driver.Stmt, error) { return nil, driver.ErrSkip }
func (c *recordingConn) Close() error                        { return nil }

func (c *recordingConn) Begin() (driver.Tx, error) {
	c.rec.queries = append(c.rec.queries, "BEGIN")
	return recordingTx{rec: c.rec}, nil
}

func (c *recordingConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	c.rec.queries = append(c.rec.queries, query)
	return &zeroCountRows{}, nil
}

func (c *recordingConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.rec.queries = append(c.rec.queries, query)
	return insertedRow{}, nil
}

type recordingTx struct{ rec *queryRecorder }

func (t recordingTx) Commit() error {
	t.rec.queries = append(t.rec.queries, "COMMIT")
	return nil
}

func (t recordingTx) Rollback() error {
	t.rec.queries = append(t.rec.queries, "ROLLBACK")
	return nil
}

type zeroCountRows struct{ done bool }

func (r *zeroCountRows) Columns() []string { return []string{"count"} }
func (r *zeroCountRows) Close() error      { return nil }
func (r *zeroCountRows) Next(dest []driver.Value) error {
	if r.done {
		return io.EOF
	}
	r.done = true
	dest[0] = int64(0)
	return nil
}

type insertedRow struct{}

func (insertedRow) LastInsertId() (int64, error) { return 1, nil }
func (insertedRow) RowsAffected() (int64, error) { return 1, nil }

func init() { sql.Register("recording", recordingDriver{}) }

// Create must take locking reads on both uniqueness checks inside the
// insert's transaction; plain snapshot reads would let two concurrent
// registrations both pass and both insert.
func TestStationCreateChecksLockInsideTx(t *testing.T) {
	rec := &queryRecorder{}
	activeRecorder = rec
	db, err := sql.Open("recording", "")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	repo := NewStationRepo(db)
	st := &model.Station{Name: "North Lot", Location: "Oslo", Capacity: 20, OwnerID: 3}
	if err := repo.Create(context.Background(), st); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if st.ID != 1 {
		t.Errorf("ID = %d, want 1", st.ID)
	}

	siteCheck := rec.index("WHERE name=? AND location=?")
	ownerCheck := rec.index("WHERE owner_id=?")
	begin := rec.index("BEGIN")
	insert := rec.index("INSERT INTO stations")
	commit := rec.index("COMMIT")
	for name, i := range map[string]int{"site check": siteCheck, "owner check": ownerCheck, "BEGIN": begin, "INSERT": insert, "COMMIT": commit} {
		if i < 0 {
			t.Fatalf("%s not issued; queries: %q", name, rec.queries)
		}
	}
	for _, i := range []int{siteCheck, ownerCheck} {
		if !strings.HasSuffix(rec.queries[i], "FOR UPDATE") {
			t.Errorf("check is not a locking read: %q", rec.queries[i])
		}
	}
	if !(begin < siteCheck && siteCheck < insert && begin < ownerCheck && ownerCheck < insert && insert < commit) {
		t.Errorf("statement order: %q", rec.queries)
	}
}
